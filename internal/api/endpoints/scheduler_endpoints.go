package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"helpdesk-backend/internal/api/middleware"
	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/dto"
	schedulersvc "helpdesk-backend/internal/service/scheduler"
)

type SchedulerEndpoints interface {
	Rules(http.ResponseWriter, *http.Request) error
}

type schedulerEndpoints struct {
	service *schedulersvc.Service
}

func NewSchedulerEndpoints(db *database.Database) SchedulerEndpoints {
	return &schedulerEndpoints{
		service: schedulersvc.New(db),
	}
}

func NewSchedulerEndpointsWithService(service *schedulersvc.Service) SchedulerEndpoints {
	return &schedulerEndpoints{service: service}
}

func (h *schedulerEndpoints) Rules(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost:   h.handleCreate,
		http.MethodDelete: h.handleDelete,
	})
}

// handleCreate binds the new rule to the caller: a staff member opts in to
// auto-assignment for a chat, never on behalf of someone else.
func (h *schedulerEndpoints) handleCreate(w http.ResponseWriter, r *http.Request) error {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("create rule without principal in context"),
		}
	}

	var req dto.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode create rule request: %w", err),
		}
	}

	rule, err := h.service.Create(r.Context(), req.ChatID, principal.UserID)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toRuleResponse(rule))
}

func (h *schedulerEndpoints) handleDelete(w http.ResponseWriter, r *http.Request) error {
	raw := r.URL.Query().Get("chatId")
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || chatID <= 0 {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid chat id",
			ErrorLog:   fmt.Errorf("parse chat id %q: %v", raw, err),
		}
	}

	if err := h.service.Delete(r.Context(), chatID); err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Rule deleted"})
}

func (h *schedulerEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*schedulersvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("scheduler service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case schedulersvc.ErrorCodeValidation:
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: svcErr.Message, ErrorLog: errorLog}
	case schedulersvc.ErrorCodeNotFound:
		return &HTTPError{StatusCode: http.StatusNotFound, Message: svcErr.Message, ErrorLog: errorLog}
	case schedulersvc.ErrorCodeConflict:
		return &HTTPError{StatusCode: http.StatusConflict, Message: svcErr.Message, ErrorLog: errorLog}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: errorLog}
	}
}
