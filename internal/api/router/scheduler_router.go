package router

import (
	"net/http"

	"helpdesk-backend/internal/api"
	"helpdesk-backend/internal/api/endpoints"
	"helpdesk-backend/internal/api/middleware"
)

func SchedulerRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		schedulerEndpoints := endpoints.NewSchedulerEndpoints(s.Database())

		// Rules are a staff opt-in: the caller authenticates with their own
		// token and becomes the rule's assignee.
		mux.HandleFunc(prefix+"/scheduler", s.MakeHTTPHandleFunc(schedulerEndpoints.Rules, middleware.ValidateStaffJWT))
	}
}
