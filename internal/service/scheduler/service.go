// Package scheduler owns the assignment rules: standing preferences mapping a
// chat-platform user to the staff member new tickets from that user default
// to. Rules are consulted exactly once, at ticket creation; changing a rule
// never touches existing tickets.
package scheduler

import (
	"context"
	"errors"
	"time"

	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/model"
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

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(db *database.Database) *Service {
	return &Service{
		repo: NewDynamoRepository(db),
		now:  time.Now,
	}
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		now:  now,
	}
}

func nowRFC3339(now func() time.Time) string {
	return now().UTC().Format(time.RFC3339)
}

func (s *Service) Create(ctx context.Context, chatID, assigneeID int64) (model.AssignmentRuleItem, error) {
	if chatID == 0 || assigneeID == 0 {
		return model.AssignmentRuleItem{}, newError(ErrorCodeValidation, "chat id and assignee are required", nil)
	}

	ruleID, err := s.repo.NextRuleID(ctx)
	if err != nil {
		return model.AssignmentRuleItem{}, newError(ErrorCodeInternal, "failed to allocate rule id", err)
	}

	rule := model.AssignmentRuleItem{
		RuleID:     ruleID,
		ChatID:     chatID,
		AssigneeID: assigneeID,
		CreatedAt:  nowRFC3339(s.now),
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		if errors.Is(err, ErrConflict) {
			return model.AssignmentRuleItem{}, newError(ErrorCodeConflict, "a rule for this chat already exists", err)
		}
		return model.AssignmentRuleItem{}, newError(ErrorCodeInternal, "failed to create rule", err)
	}

	return rule, nil
}

func (s *Service) Delete(ctx context.Context, chatID int64) error {
	found, err := s.repo.DeleteRule(ctx, chatID)
	if err != nil {
		return newError(ErrorCodeInternal, "failed to delete rule", err)
	}
	if !found {
		return newError(ErrorCodeNotFound, "no rule for this chat", nil)
	}
	return nil
}

// Lookup returns the rule for the chat if one exists. Absence is a normal
// outcome, not an error.
func (s *Service) Lookup(ctx context.Context, chatID int64) (model.AssignmentRuleItem, bool, error) {
	rule, err := s.repo.GetRule(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.AssignmentRuleItem{}, false, nil
		}
		return model.AssignmentRuleItem{}, false, newError(ErrorCodeInternal, "failed to look up rule", err)
	}
	return rule, true, nil
}
