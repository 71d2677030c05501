// Package message enforces the posting rule and moves message content in both
// directions: staff posts relayed out to the chat platform, inbound platform
// messages persisted and pushed to the live connection.
package message

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/model"
	"helpdesk-backend/internal/registry"
	"helpdesk-backend/internal/relay"
	"helpdesk-backend/internal/service/ticket"
)

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeForbidden  ErrorCode = "forbidden"
	ErrorCodeNotFound   ErrorCode = "not_found"
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

// PostingGuidance is pushed to the live connection when a post is rejected,
// so the staff member sees in real time why nothing went through.
const PostingGuidance = "To post in this ticket, set yourself as the assignee and move the ticket to in-work."

// LiveNotifier pushes a text frame to the ticket's live connection if one is
// registered. Satisfied by *relay.Relay.
type LiveNotifier interface {
	Notify(ticketID int64, content string) bool
}

// TicketSource creates or reuses the active ticket for an inbound chat.
// Satisfied by *ticket.Service.
type TicketSource interface {
	GetOrCreateForChat(ctx context.Context, chatID int64) (model.TicketItem, error)
}

type InboundResult struct {
	Ticket  model.TicketItem
	Message model.MessageItem
}

type Service struct {
	repo     Repository
	tickets  TicketSource
	notifier LiveNotifier
	sender   Sender
	now      func() time.Time
}

func New(db *database.Database, reg *registry.Registry) *Service {
	return &Service{
		repo:     NewDynamoRepository(db),
		tickets:  ticket.New(db),
		notifier: relay.New(reg),
		sender:   NewTelegramSender(),
		now:      time.Now,
	}
}

func NewWithDependencies(repo Repository, tickets TicketSource, notifier LiveNotifier, sender Sender, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     repo,
		tickets:  tickets,
		notifier: notifier,
		sender:   sender,
		now:      now,
	}
}

// PostStaffMessage persists a staff message and relays it to the chat
// platform. The post is accepted only while the author is the ticket's
// assignee and the ticket is in-work; any other combination is rejected with
// a guidance notice duplicated onto the live connection.
func (s *Service) PostStaffMessage(ctx context.Context, ticketID int64, content string, authorID int64) (model.MessageItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.MessageItem{}, newError(ErrorCodeValidation, "message content is required", nil)
	}
	if utf8.RuneCountInString(content) > model.MaxMessageLength {
		return model.MessageItem{}, newError(ErrorCodeValidation, "message content exceeds the platform limit", nil)
	}

	tk, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.MessageItem{}, newError(ErrorCodeNotFound, "ticket not found", err)
		}
		return model.MessageItem{}, newError(ErrorCodeInternal, "failed to fetch ticket", err)
	}

	if tk.AssigneeID != authorID || tk.StatusID != model.StatusInWork {
		if s.notifier != nil {
			s.notifier.Notify(ticketID, PostingGuidance)
		}
		return model.MessageItem{}, newError(ErrorCodeForbidden, PostingGuidance, nil)
	}

	msg, err := s.persist(ctx, ticketID, authorID, content)
	if err != nil {
		return model.MessageItem{}, err
	}

	// Relay synchronously so delivery is immediate, but bounded: a timeout
	// or platform-side failure is logged and the post still succeeds.
	sendCtx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()
	if err := s.sender.Send(sendCtx, tk.ChatID, content); err != nil {
		log.Printf("message: relay to chat %d failed: %v", tk.ChatID, err)
	}

	return msg, nil
}

// RecordInbound stores a message that arrived from the chat platform,
// creating the ticket when the chat has no active one, and nudges the live
// connection if a staff member is watching.
func (s *Service) RecordInbound(ctx context.Context, chatID int64, content string) (InboundResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return InboundResult{}, newError(ErrorCodeValidation, "message content is required", nil)
	}
	if utf8.RuneCountInString(content) > model.MaxMessageLength {
		return InboundResult{}, newError(ErrorCodeValidation, "message content exceeds the platform limit", nil)
	}

	tk, err := s.tickets.GetOrCreateForChat(ctx, chatID)
	if err != nil {
		return InboundResult{}, err
	}

	msg, err := s.persist(ctx, tk.TicketID, 0, content)
	if err != nil {
		return InboundResult{}, err
	}

	if s.notifier != nil {
		s.notifier.Notify(tk.TicketID, content)
	}

	return InboundResult{
		Ticket:  tk,
		Message: msg,
	}, nil
}

func (s *Service) persist(ctx context.Context, ticketID, authorID int64, content string) (model.MessageItem, error) {
	messageID, err := s.repo.NextMessageID(ctx)
	if err != nil {
		return model.MessageItem{}, newError(ErrorCodeInternal, "failed to allocate message id", err)
	}

	msg := model.MessageItem{
		MessageID: messageID,
		TicketID:  ticketID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return model.MessageItem{}, newError(ErrorCodeInternal, "failed to store message", err)
	}
	return msg, nil
}
