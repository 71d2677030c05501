// Package ticket owns the ticket lifecycle: creation for inbound chat
// traffic, the claim transition that gates staff posting, and the invariant
// that an in-work ticket always has an assignee.
package ticket

import (
	"context"
	"errors"
	"time"

	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/model"
	"helpdesk-backend/internal/service/scheduler"
)

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeNotFound   ErrorCode = "not_found"
	ErrorCodeConflict   ErrorCode = "conflict"
	ErrorCodeInternal   ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// RuleSource resolves the default assignee for a chat at ticket creation.
// Satisfied by *scheduler.Service.
type RuleSource interface {
	Lookup(ctx context.Context, chatID int64) (model.AssignmentRuleItem, bool, error)
}

type UpdateParams struct {
	StatusID   *int
	AssigneeID *int64
}

type TicketDetail struct {
	Ticket   model.TicketItem
	Messages []model.MessageItem
}

type ListParams struct {
	StatusID   int
	AssigneeID int64
	Limit      int
}

type Service struct {
	repo  Repository
	rules RuleSource
	now   func() time.Time
}

func New(db *database.Database) *Service {
	return &Service{
		repo:  NewDynamoRepository(db),
		rules: scheduler.New(db),
		now:   time.Now,
	}
}

func NewWithRepository(repo Repository, rules RuleSource, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:  repo,
		rules: rules,
		now:   now,
	}
}

// GetOrCreateForChat returns the chat's open or in-work ticket, creating a
// fresh open one when none exists. A matching assignment rule presets the
// assignee, but the ticket stays open: assignment alone does not claim.
func (s *Service) GetOrCreateForChat(ctx context.Context, chatID int64) (model.TicketItem, error) {
	if chatID == 0 {
		return model.TicketItem{}, newError(ErrorCodeValidation, "chat id is required", nil)
	}

	ticket, err := s.repo.FindActiveTicketByChat(ctx, chatID)
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.TicketItem{}, newError(ErrorCodeInternal, "failed to look up ticket", err)
	}

	var assigneeID int64
	if s.rules != nil {
		rule, found, err := s.rules.Lookup(ctx, chatID)
		if err != nil {
			return model.TicketItem{}, newError(ErrorCodeInternal, "failed to consult assignment rules", err)
		}
		if found {
			assigneeID = rule.AssigneeID
		}
	}

	ticketID, err := s.repo.NextTicketID(ctx)
	if err != nil {
		return model.TicketItem{}, newError(ErrorCodeInternal, "failed to allocate ticket id", err)
	}

	now := s.now().UTC().Format(time.RFC3339)
	ticket = model.TicketItem{
		TicketID:   ticketID,
		ChatID:     chatID,
		AssigneeID: assigneeID,
		StatusID:   model.StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return model.TicketItem{}, newError(ErrorCodeInternal, "failed to create ticket", err)
	}
	return ticket, nil
}

func (s *Service) Get(ctx context.Context, ticketID int64) (TicketDetail, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TicketDetail{}, newError(ErrorCodeNotFound, "ticket not found", err)
		}
		return TicketDetail{}, newError(ErrorCodeInternal, "failed to fetch ticket", err)
	}

	messages, err := s.repo.ListMessages(ctx, ticketID, 0)
	if err != nil {
		return TicketDetail{}, newError(ErrorCodeInternal, "failed to fetch messages", err)
	}

	return TicketDetail{
		Ticket:   ticket,
		Messages: messages,
	}, nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]model.TicketItem, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	tickets, err := s.repo.ListTickets(ctx, params.StatusID, params.AssigneeID, limit)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list tickets", err)
	}
	return tickets, nil
}

// Update patches status and/or assignee. Claiming (status in-work) requires
// an assignee once the patch is applied; the repository's conditional write
// keeps two concurrent claims from both succeeding.
func (s *Service) Update(ctx context.Context, ticketID int64, params UpdateParams) (model.TicketItem, error) {
	if params.StatusID == nil && params.AssigneeID == nil {
		return model.TicketItem{}, newError(ErrorCodeValidation, "empty update", nil)
	}

	if params.AssigneeID != nil && *params.AssigneeID != 0 {
		if _, err := s.repo.GetUser(ctx, *params.AssigneeID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return model.TicketItem{}, newError(ErrorCodeNotFound, "assignee does not exist", err)
			}
			return model.TicketItem{}, newError(ErrorCodeInternal, "failed to verify assignee", err)
		}
	}

	current, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.TicketItem{}, newError(ErrorCodeNotFound, "ticket not found", err)
		}
		return model.TicketItem{}, newError(ErrorCodeInternal, "failed to fetch ticket", err)
	}

	finalStatus := current.StatusID
	if params.StatusID != nil {
		finalStatus = *params.StatusID
	}
	finalAssignee := current.AssigneeID
	if params.AssigneeID != nil {
		finalAssignee = *params.AssigneeID
	}
	if finalStatus == model.StatusInWork && finalAssignee == 0 {
		return model.TicketItem{}, newError(ErrorCodeValidation, "an in-work ticket requires an assignee", nil)
	}

	patch := TicketPatch{StatusID: params.StatusID, AssigneeID: params.AssigneeID}
	if finalStatus == model.StatusInWork && params.AssigneeID == nil {
		// Pin the assignee in the claim guard even when the patch only
		// changes status.
		patch.AssigneeID = &finalAssignee
	}

	updated, err := s.repo.UpdateTicket(ctx, ticketID, patch, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		if errors.Is(err, ErrStale) {
			return model.TicketItem{}, newError(ErrorCodeConflict, "ticket was claimed by someone else", err)
		}
		return model.TicketItem{}, newError(ErrorCodeInternal, "failed to update ticket", err)
	}
	return updated, nil
}
