package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"helpdesk-backend/internal/api/middleware"
	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/dto"
	"helpdesk-backend/internal/model"
	"helpdesk-backend/internal/registry"
	"helpdesk-backend/internal/relay"
	messagesvc "helpdesk-backend/internal/service/message"
)

type MessageEndpoints interface {
	Messages(http.ResponseWriter, *http.Request) error
	Notify(http.ResponseWriter, *http.Request) error
	Inbound(http.ResponseWriter, *http.Request) error
}

type messageEndpoints struct {
	service  *messagesvc.Service
	notifier *relay.Relay
}

func NewMessageEndpoints(db *database.Database, reg *registry.Registry) MessageEndpoints {
	return &messageEndpoints{
		service:  messagesvc.New(db, reg),
		notifier: relay.New(reg),
	}
}

func NewMessageEndpointsWithService(service *messagesvc.Service, notifier *relay.Relay) MessageEndpoints {
	return &messageEndpoints{
		service:  service,
		notifier: notifier,
	}
}

func (h *messageEndpoints) Messages(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handlePost,
	})
}

func (h *messageEndpoints) Notify(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleNotify,
	})
}

func (h *messageEndpoints) Inbound(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleInbound,
	})
}

func (h *messageEndpoints) handlePost(w http.ResponseWriter, r *http.Request) error {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("post message without principal in context"),
		}
	}

	var req dto.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode post message request: %w", err),
		}
	}

	msg, err := h.service.PostStaffMessage(r.Context(), req.TicketID, req.Content, principal.UserID)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toMessageResponse(msg))
}

// handleNotify pushes a line onto the ticket's live connection if one is
// open. Delivery is best effort; the bot gets a 200 either way and only the
// delivered flag tells the outcomes apart.
func (h *messageEndpoints) handleNotify(w http.ResponseWriter, r *http.Request) error {
	var req dto.NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode notify request: %w", err),
		}
	}

	if req.TicketID <= 0 || strings.TrimSpace(req.Content) == "" {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Ticket id and content are required",
			ErrorLog:   fmt.Errorf("notify request missing ticket id or content"),
		}
	}
	if utf8.RuneCountInString(req.Content) > model.MaxMessageLength {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Content exceeds the platform limit",
			ErrorLog:   fmt.Errorf("notify content too long"),
		}
	}

	delivered := h.notifier.Notify(req.TicketID, req.Content)
	return WriteJSON(w, http.StatusOK, dto.NotifyResponse{Delivered: delivered})
}

func (h *messageEndpoints) handleInbound(w http.ResponseWriter, r *http.Request) error {
	var req dto.InboundMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode inbound message request: %w", err),
		}
	}

	if req.ChatID <= 0 {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Chat id is required",
			ErrorLog:   fmt.Errorf("inbound request missing chat id"),
		}
	}

	result, err := h.service.RecordInbound(r.Context(), req.ChatID, req.Content)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, dto.InboundMessageResponse{
		Ticket:  toTicketResponse(result.Ticket),
		Message: toMessageResponse(result.Message),
	})
}

func (h *messageEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*messagesvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("message service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case messagesvc.ErrorCodeValidation:
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: svcErr.Message, ErrorLog: errorLog}
	case messagesvc.ErrorCodeForbidden:
		return &HTTPError{StatusCode: http.StatusForbidden, Message: svcErr.Message, ErrorLog: errorLog}
	case messagesvc.ErrorCodeNotFound:
		return &HTTPError{StatusCode: http.StatusNotFound, Message: svcErr.Message, ErrorLog: errorLog}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: errorLog}
	}
}
