package router

import (
	"net/http"

	"helpdesk-backend/internal/api"
	"helpdesk-backend/internal/api/endpoints"
	"helpdesk-backend/internal/api/middleware"
)

func TicketRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		ticketEndpoints := endpoints.NewTicketEndpoints(s.Database(), s.WSHandler(), prefix)

		mux.HandleFunc(prefix+"/tickets", s.MakeHTTPHandleFunc(ticketEndpoints.Tickets, middleware.ValidateStaffJWT))
		mux.HandleFunc(prefix+"/tickets/", s.MakeHTTPHandleFunc(ticketEndpoints.Ticket, middleware.ValidateStaffJWT))

		// Longest pattern wins, so the websocket prefix shadows the detail
		// route for its subtree. Authentication happens in-band after the
		// upgrade, not here.
		mux.HandleFunc(prefix+"/tickets/ws/", s.MakeWebsocketHandleFunc(ticketEndpoints.Websocket))
	}
}
