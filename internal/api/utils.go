package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"helpdesk-backend/internal/api/middleware"
	"helpdesk-backend/internal/env"
	"helpdesk-backend/internal/queue"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *APIServer) corsConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowedOrigins: []string{
			"http://localhost:3000",
			env.GetOrDefault(env.WebUrl, "http://localhost:3000"),
		},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "OPTIONS", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Authorization", "X-Bot-Key"},
		AllowCredentials: true,
	}
}

// MakeHTTPHandleFunc runs f through the request queue so concurrency stays
// bounded by the worker count, then translates returned errors into JSON
// responses. Auth middlewares run before the job is enqueued.
func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)

		job := queue.Job{
			Fn: func() error {
				return f(w, r)
			},
			Errc: errc,
		}

		s.requestQueueManager.EnqueueJob(job)

		if err := <-errc; err != nil {
			writeError(w, err)
		}
	}

	return s.chain(baseHandler, authMiddleware)
}

// MakeWebsocketHandleFunc runs f on the request goroutine instead of the
// queue. Upgraded connections live as long as the client stays on; parking
// them on queue workers would starve the pool.
func (s *APIServer) MakeWebsocketHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			writeError(w, err)
		}
	}

	return s.chain(baseHandler, authMiddleware)
}

func (s *APIServer) chain(baseHandler http.HandlerFunc, authMiddleware []middleware.Middleware) http.HandlerFunc {
	middlewares := []middleware.Middleware{
		middleware.CORS(s.corsConfig()),
		middleware.Logging(),
	}

	finalHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		if len(authMiddleware) > 0 {
			authHandler := baseHandler
			for _, m := range authMiddleware {
				authHandler = m(authHandler)
			}
			authHandler(w, r)
		} else {
			baseHandler(w, r)
		}
	}

	return middleware.Chain(finalHandler, middlewares...)
}

func writeError(w http.ResponseWriter, err error) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.ErrorLog != nil {
			log.Printf("handler error: %v", httpErr.ErrorLog)
		}
		WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message})
		return
	}

	log.Printf("handler error: %v", err)
	WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error"})
}
