package message

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"helpdesk-backend/internal/model"
)

type memoryRepository struct {
	mu       sync.Mutex
	tickets  map[int64]model.TicketItem
	messages []model.MessageItem
	nextID   int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		tickets: make(map[int64]model.TicketItem),
	}
}

func (m *memoryRepository) GetTicket(ctx context.Context, ticketID int64) (model.TicketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[ticketID]
	if !ok {
		return model.TicketItem{}, ErrNotFound
	}
	return ticket, nil
}

func (m *memoryRepository) CreateMessage(ctx context.Context, message model.MessageItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

func (m *memoryRepository) NextMessageID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID, nil
}

type fakeTickets struct {
	ticket model.TicketItem
	err    error
}

func (f *fakeTickets) GetOrCreateForChat(ctx context.Context, chatID int64) (model.TicketItem, error) {
	if f.err != nil {
		return model.TicketItem{}, f.err
	}
	return f.ticket, nil
}

type fakeNotifier struct {
	pushes []string
}

func (f *fakeNotifier) Notify(ticketID int64, content string) bool {
	f.pushes = append(f.pushes, content)
	return true
}

type fakeSender struct {
	sent []string
	to   []int64
	err  error
}

func (f *fakeSender) Send(ctx context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, chatID)
	f.sent = append(f.sent, text)
	return nil
}

func newTestService(repo Repository, tickets TicketSource, notifier LiveNotifier, sender Sender) *Service {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewWithDependencies(repo, tickets, notifier, sender, func() time.Time { return now })
}

func claimedTicket(ticketID, chatID, assigneeID int64) model.TicketItem {
	return model.TicketItem{
		TicketID:   ticketID,
		ChatID:     chatID,
		AssigneeID: assigneeID,
		StatusID:   model.StatusInWork,
	}
}

func TestPostStaffMessage(t *testing.T) {
	repo := newMemoryRepository()
	repo.tickets[1] = claimedTicket(1, 555, 42)
	notifier := &fakeNotifier{}
	sender := &fakeSender{}
	svc := newTestService(repo, &fakeTickets{}, notifier, sender)

	msg, err := svc.PostStaffMessage(context.Background(), 1, "On it, give me a minute", 42)
	if err != nil {
		t.Fatalf("PostStaffMessage error: %v", err)
	}
	if msg.AuthorID != 42 || msg.TicketID != 1 {
		t.Fatalf("unexpected message %+v", msg)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("expected one persisted message, got %d", len(repo.messages))
	}
	if len(sender.sent) != 1 || sender.sent[0] != "On it, give me a minute" {
		t.Fatalf("unexpected relayed content %v", sender.sent)
	}
	if sender.to[0] != 555 {
		t.Fatalf("expected relay to chat 555, got %d", sender.to[0])
	}
	if len(notifier.pushes) != 0 {
		t.Fatalf("expected no live notice on success, got %v", notifier.pushes)
	}
}

func TestPostStaffMessageRejectsNonAssignee(t *testing.T) {
	repo := newMemoryRepository()
	repo.tickets[1] = claimedTicket(1, 555, 42)
	notifier := &fakeNotifier{}
	sender := &fakeSender{}
	svc := newTestService(repo, &fakeTickets{}, notifier, sender)

	_, err := svc.PostStaffMessage(context.Background(), 1, "hello", 43)
	if err == nil {
		t.Fatal("expected forbidden for a non-assignee")
	}
	svcErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if svcErr.Code != ErrorCodeForbidden {
		t.Fatalf("expected forbidden, got %s", svcErr.Code)
	}
	if len(notifier.pushes) != 1 || notifier.pushes[0] != PostingGuidance {
		t.Fatalf("expected the guidance notice, got %v", notifier.pushes)
	}
	if len(repo.messages) != 0 {
		t.Fatal("rejected post must not be persisted")
	}
	if len(sender.sent) != 0 {
		t.Fatal("rejected post must not reach the chat platform")
	}
}

func TestPostStaffMessageRejectsOpenTicket(t *testing.T) {
	repo := newMemoryRepository()
	// Assignee matches but the ticket was never claimed.
	repo.tickets[1] = model.TicketItem{
		TicketID:   1,
		ChatID:     555,
		AssigneeID: 42,
		StatusID:   model.StatusOpen,
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, &fakeTickets{}, notifier, &fakeSender{})

	_, err := svc.PostStaffMessage(context.Background(), 1, "hello", 42)
	if err == nil {
		t.Fatal("expected forbidden for an unclaimed ticket")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(notifier.pushes) != 1 {
		t.Fatalf("expected the guidance notice, got %v", notifier.pushes)
	}
}

func TestPostStaffMessageMissingTicket(t *testing.T) {
	svc := newTestService(newMemoryRepository(), &fakeTickets{}, &fakeNotifier{}, &fakeSender{})

	_, err := svc.PostStaffMessage(context.Background(), 404, "hello", 42)
	if err == nil {
		t.Fatal("expected not found")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostStaffMessageValidation(t *testing.T) {
	repo := newMemoryRepository()
	repo.tickets[1] = claimedTicket(1, 555, 42)
	svc := newTestService(repo, &fakeTickets{}, &fakeNotifier{}, &fakeSender{})

	if _, err := svc.PostStaffMessage(context.Background(), 1, "   ", 42); err == nil {
		t.Fatal("expected validation error for blank content")
	}

	long := strings.Repeat("x", model.MaxMessageLength+1)
	_, err := svc.PostStaffMessage(context.Background(), 1, long, 42)
	if err == nil {
		t.Fatal("expected validation error for oversized content")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPostStaffMessageSurvivesSenderFailure(t *testing.T) {
	repo := newMemoryRepository()
	repo.tickets[1] = claimedTicket(1, 555, 42)
	sender := &fakeSender{err: errors.New("telegram unreachable")}
	svc := newTestService(repo, &fakeTickets{}, &fakeNotifier{}, sender)

	msg, err := svc.PostStaffMessage(context.Background(), 1, "hello", 42)
	if err != nil {
		t.Fatalf("PostStaffMessage error: %v", err)
	}
	if msg.MessageID == 0 {
		t.Fatal("expected persisted message despite relay failure")
	}
	if len(repo.messages) != 1 {
		t.Fatalf("expected one persisted message, got %d", len(repo.messages))
	}
}

func TestRecordInbound(t *testing.T) {
	repo := newMemoryRepository()
	notifier := &fakeNotifier{}
	tickets := &fakeTickets{ticket: model.TicketItem{TicketID: 9, ChatID: 555, StatusID: model.StatusOpen}}
	svc := newTestService(repo, tickets, notifier, &fakeSender{})

	result, err := svc.RecordInbound(context.Background(), 555, "I need help")
	if err != nil {
		t.Fatalf("RecordInbound error: %v", err)
	}
	if result.Ticket.TicketID != 9 {
		t.Fatalf("unexpected ticket %+v", result.Ticket)
	}
	if result.Message.AuthorID != 0 {
		t.Fatalf("inbound message must have no staff author, got %d", result.Message.AuthorID)
	}
	if len(notifier.pushes) != 1 || notifier.pushes[0] != "I need help" {
		t.Fatalf("expected content pushed to the live connection, got %v", notifier.pushes)
	}
}

func TestRecordInboundValidation(t *testing.T) {
	svc := newTestService(newMemoryRepository(), &fakeTickets{}, &fakeNotifier{}, &fakeSender{})

	_, err := svc.RecordInbound(context.Background(), 555, "")
	if err == nil {
		t.Fatal("expected validation error for empty content")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
