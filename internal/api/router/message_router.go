package router

import (
	"net/http"

	"helpdesk-backend/internal/api"
	"helpdesk-backend/internal/api/endpoints"
	"helpdesk-backend/internal/api/middleware"
)

func MessageRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		messageEndpoints := endpoints.NewMessageEndpoints(s.Database(), s.Registry())

		mux.HandleFunc(prefix+"/messages", s.MakeHTTPHandleFunc(messageEndpoints.Messages, middleware.ValidateStaffJWT))
		mux.HandleFunc(prefix+"/messages/notify", s.MakeHTTPHandleFunc(messageEndpoints.Notify, middleware.ValidateBotKey))
		mux.HandleFunc(prefix+"/messages/inbound", s.MakeHTTPHandleFunc(messageEndpoints.Inbound, middleware.ValidateBotKey))
	}
}
