package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/dto"
	ticketsvc "helpdesk-backend/internal/service/ticket"
	"helpdesk-backend/internal/websocket"
)

type TicketEndpoints interface {
	Tickets(http.ResponseWriter, *http.Request) error
	Ticket(http.ResponseWriter, *http.Request) error
	Websocket(http.ResponseWriter, *http.Request) error
}

type TicketPaths struct {
	DetailPrefix    string
	WebsocketPrefix string
}

type ticketEndpoints struct {
	service *ticketsvc.Service
	handler *websocket.Handler
	paths   TicketPaths
}

func NewTicketEndpoints(db *database.Database, handler *websocket.Handler, prefix string) TicketEndpoints {
	base := strings.TrimRight(prefix, "/")
	return NewTicketEndpointsWithService(ticketsvc.New(db), handler, TicketPaths{
		DetailPrefix:    base + "/tickets/",
		WebsocketPrefix: base + "/tickets/ws/",
	})
}

func NewTicketEndpointsWithService(service *ticketsvc.Service, handler *websocket.Handler, paths TicketPaths) TicketEndpoints {
	return &ticketEndpoints{
		service: service,
		handler: handler,
		paths:   paths,
	}
}

func (h *ticketEndpoints) Tickets(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleList,
	})
}

func (h *ticketEndpoints) Ticket(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:   h.handleGet,
		http.MethodPatch: h.handleUpdate,
	})
}

// Websocket hands the request over to the session handler. Once the upgrade
// succeeds all errors travel in-band on the socket, so nothing is returned
// past this point.
func (h *ticketEndpoints) Websocket(w http.ResponseWriter, r *http.Request) error {
	if h.handler == nil {
		return &HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "Websocket not available",
			ErrorLog:   fmt.Errorf("websocket handler missing"),
		}
	}

	ticketID, err := extractID(r.URL.Path, h.paths.WebsocketPrefix)
	if err != nil {
		return err
	}

	h.handler.ServeTicket(w, r, ticketID)
	return nil
}

func (h *ticketEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	params := ticketsvc.ListParams{}

	query := r.URL.Query()
	if raw := query.Get("status"); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			return &HTTPError{
				StatusCode: http.StatusBadRequest,
				Message:    "Invalid status filter",
				ErrorLog:   fmt.Errorf("parse status filter %q: %w", raw, err),
			}
		}
		params.StatusID = status
	}
	if raw := query.Get("assignee"); raw != "" {
		assignee, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return &HTTPError{
				StatusCode: http.StatusBadRequest,
				Message:    "Invalid assignee filter",
				ErrorLog:   fmt.Errorf("parse assignee filter %q: %w", raw, err),
			}
		}
		params.AssigneeID = assignee
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return &HTTPError{
				StatusCode: http.StatusBadRequest,
				Message:    "Invalid limit",
				ErrorLog:   fmt.Errorf("parse limit %q: %w", raw, err),
			}
		}
		params.Limit = limit
	}

	tickets, err := h.service.List(r.Context(), params)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.TicketListResponse{Tickets: toTicketsResponse(tickets)})
}

func (h *ticketEndpoints) handleGet(w http.ResponseWriter, r *http.Request) error {
	ticketID, err := extractID(r.URL.Path, h.paths.DetailPrefix)
	if err != nil {
		return err
	}

	detail, err := h.service.Get(r.Context(), ticketID)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.TicketDetailResponse{
		Ticket:   toTicketResponse(detail.Ticket),
		Messages: toMessagesResponse(detail.Messages),
	})
}

func (h *ticketEndpoints) handleUpdate(w http.ResponseWriter, r *http.Request) error {
	ticketID, err := extractID(r.URL.Path, h.paths.DetailPrefix)
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode ticket update request: %w", err),
		}
	}

	updated, err := h.service.Update(r.Context(), ticketID, ticketsvc.UpdateParams{
		StatusID:   req.StatusID,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toTicketResponse(updated))
}

func (h *ticketEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*ticketsvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("ticket service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case ticketsvc.ErrorCodeValidation:
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: svcErr.Message, ErrorLog: errorLog}
	case ticketsvc.ErrorCodeNotFound:
		return &HTTPError{StatusCode: http.StatusNotFound, Message: svcErr.Message, ErrorLog: errorLog}
	case ticketsvc.ErrorCodeConflict:
		return &HTTPError{StatusCode: http.StatusConflict, Message: svcErr.Message, ErrorLog: errorLog}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: errorLog}
	}
}

// extractID pulls the numeric id out of a path like <prefix><id>.
func extractID(path, prefix string) (int64, error) {
	raw := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("no id in path %q", path),
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid id",
			ErrorLog:   fmt.Errorf("parse id %q: %w", raw, err),
		}
	}

	return id, nil
}
