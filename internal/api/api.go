package api

import (
	"fmt"
	"net/http"

	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/queue"
	"helpdesk-backend/internal/registry"
	"helpdesk-backend/internal/websocket"

	"github.com/prometheus/client_golang/prometheus"
)

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	db                  *database.Database
	registry            *registry.Registry
	wsHandler           *websocket.Handler
	routeRegistrars     []RouteRegistrar
	metrics             *metrics
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, db *database.Database, reg *registry.Registry, wsHandler *websocket.Handler, registrars ...RouteRegistrar) *APIServer {
	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		db:                  db,
		registry:            reg,
		wsHandler:           wsHandler,
		routeRegistrars:     registrars,
		metrics:             newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm),
	}
}

func (s *APIServer) Run() {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	fmt.Printf("Server listening on http://localhost%s\n", s.listenAddr)

	if err := http.ListenAndServe(s.listenAddr, s.metrics.instrument(mux)); err != nil {
		fmt.Printf("server stopped: %v\n", err)
	}
}

func (s *APIServer) Database() *database.Database {
	return s.db
}

func (s *APIServer) Registry() *registry.Registry {
	return s.registry
}

func (s *APIServer) WSHandler() *websocket.Handler {
	return s.wsHandler
}
