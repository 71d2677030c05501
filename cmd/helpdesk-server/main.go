package main

import (
	"log"

	"helpdesk-backend/internal/api"
	"helpdesk-backend/internal/api/router"
	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/env"
	internaljwt "helpdesk-backend/internal/jwt"
	"helpdesk-backend/internal/queue"
	"helpdesk-backend/internal/registry"
	messagesvc "helpdesk-backend/internal/service/message"
	"helpdesk-backend/internal/websocket"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	env.Require()

	internaljwt.SetSecret([]byte(env.MustGet(env.UserSecretKey)))
	internaljwt.SetRedisClient(internaljwt.NewRedisClientFromEnv())

	queueManager := queue.NewRequestQueueManager(100, 10)

	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	// The registry is process local, so the websocket sessions and the bot
	// ingress endpoints must live in the same binary.
	reg := registry.New()
	messageService := messagesvc.New(db, reg)
	wsHandler := websocket.NewHandler(reg, messageService)

	server := api.NewAPIServer(
		env.GetOrDefault(env.ListenAddr, ":8080"),
		queueManager,
		db,
		reg,
		wsHandler,
		router.UtilsRoutes("/api/v1"),
		router.AuthRoutes("/api/v1"),
		router.TicketRoutes("/api/v1"),
		router.MessageRoutes("/api/v1"),
		router.SchedulerRoutes("/api/v1"),
	)

	server.Run()
}
