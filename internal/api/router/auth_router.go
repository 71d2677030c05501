package router

import (
	"net/http"

	"helpdesk-backend/internal/api"
	"helpdesk-backend/internal/api/endpoints"
)

func AuthRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		authEndpoints := endpoints.NewAuthEndpoints(s.Database())
		mux.HandleFunc(prefix+"/auth/registration", s.MakeHTTPHandleFunc(authEndpoints.Registration))
		mux.HandleFunc(prefix+"/auth/login", s.MakeHTTPHandleFunc(authEndpoints.Login))
		mux.HandleFunc(prefix+"/auth/refresh", s.MakeHTTPHandleFunc(authEndpoints.Refresh))
	}
}
