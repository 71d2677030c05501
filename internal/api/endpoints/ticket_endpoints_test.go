package endpoints

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"helpdesk-backend/internal/api"
	"helpdesk-backend/internal/api/middleware"
	"helpdesk-backend/internal/dto"
	"helpdesk-backend/internal/model"
	"helpdesk-backend/internal/queue"
	ticketsvc "helpdesk-backend/internal/service/ticket"
)

type testTicketRepository struct {
	mu      sync.Mutex
	tickets map[int64]model.TicketItem
	users   map[int64]model.UserItem
	nextID  int64
}

func newTestTicketRepository() *testTicketRepository {
	return &testTicketRepository{
		tickets: make(map[int64]model.TicketItem),
		users:   make(map[int64]model.UserItem),
	}
}

func (m *testTicketRepository) GetTicket(ctx context.Context, ticketID int64) (model.TicketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[ticketID]
	if !ok {
		return model.TicketItem{}, ticketsvc.ErrNotFound
	}
	return ticket, nil
}

func (m *testTicketRepository) FindActiveTicketByChat(ctx context.Context, chatID int64) (model.TicketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ticket := range m.tickets {
		if ticket.ChatID == chatID && (ticket.StatusID == model.StatusOpen || ticket.StatusID == model.StatusInWork) {
			return ticket, nil
		}
	}
	return model.TicketItem{}, ticketsvc.ErrNotFound
}

func (m *testTicketRepository) CreateTicket(ctx context.Context, ticket model.TicketItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticket.TicketID] = ticket
	return nil
}

func (m *testTicketRepository) UpdateTicket(ctx context.Context, ticketID int64, patch ticketsvc.TicketPatch, updatedAt string) (model.TicketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[ticketID]
	if !ok {
		return model.TicketItem{}, ticketsvc.ErrStale
	}
	if patch.StatusID != nil && *patch.StatusID == model.StatusInWork && patch.AssigneeID != nil {
		if ticket.StatusID == model.StatusInWork && ticket.AssigneeID != *patch.AssigneeID {
			return model.TicketItem{}, ticketsvc.ErrStale
		}
	}
	if patch.StatusID != nil {
		ticket.StatusID = *patch.StatusID
	}
	if patch.AssigneeID != nil {
		ticket.AssigneeID = *patch.AssigneeID
	}
	ticket.UpdatedAt = updatedAt
	m.tickets[ticketID] = ticket
	return ticket, nil
}

func (m *testTicketRepository) ListTickets(ctx context.Context, statusID int, assigneeID int64, limit int) ([]model.TicketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TicketItem
	for _, ticket := range m.tickets {
		if statusID != 0 && ticket.StatusID != statusID {
			continue
		}
		if assigneeID != 0 && ticket.AssigneeID != assigneeID {
			continue
		}
		out = append(out, ticket)
	}
	return out, nil
}

func (m *testTicketRepository) ListMessages(ctx context.Context, ticketID int64, limit int) ([]model.MessageItem, error) {
	return nil, nil
}

func (m *testTicketRepository) GetUser(ctx context.Context, userID int64) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return model.UserItem{}, ticketsvc.ErrNotFound
	}
	return user, nil
}

func (m *testTicketRepository) NextTicketID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID, nil
}

type noRules struct{}

func (noRules) Lookup(ctx context.Context, chatID int64) (model.AssignmentRuleItem, bool, error) {
	return model.AssignmentRuleItem{}, false, nil
}

func setupTicketHandler(t *testing.T, repo ticketsvc.Repository) (http.Handler, func()) {
	t.Helper()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	service := ticketsvc.NewWithRepository(repo, noRules{}, func() time.Time { return now })

	queueManager := queue.NewRequestQueueManager(4, 2)
	server := api.NewAPIServer(":0", queueManager, nil, nil, nil)

	ticketEndpoints := NewTicketEndpointsWithService(service, nil, TicketPaths{
		DetailPrefix:    "/api/v1/tickets/",
		WebsocketPrefix: "/api/v1/tickets/ws/",
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/tickets", server.MakeHTTPHandleFunc(ticketEndpoints.Tickets, middleware.ValidateStaffJWT))
	mux.HandleFunc("/api/v1/tickets/", server.MakeHTTPHandleFunc(ticketEndpoints.Ticket, middleware.ValidateStaffJWT))

	return mux, queueManager.Shutdown
}

func TestListTicketsEndpoint(t *testing.T) {
	token := setupTestJWT(t)
	repo := newTestTicketRepository()
	repo.tickets[1] = model.TicketItem{TicketID: 1, ChatID: 555, StatusID: model.StatusOpen}
	repo.tickets[2] = model.TicketItem{TicketID: 2, ChatID: 556, StatusID: model.StatusInWork, AssigneeID: 42}

	handler, cleanup := setupTicketHandler(t, repo)
	defer cleanup()

	resp := doJSONRequest[dto.TicketListResponse](t, handler, http.MethodGet, "/api/v1/tickets?status=2", nil,
		map[string]string{"Authorization": "Bearer " + token},
		http.StatusOK)

	if len(resp.Tickets) != 1 || resp.Tickets[0].TicketID != 2 {
		t.Fatalf("unexpected tickets %+v", resp.Tickets)
	}
	if resp.Tickets[0].AssigneeID == nil || *resp.Tickets[0].AssigneeID != 42 {
		t.Fatalf("expected assignee 42, got %v", resp.Tickets[0].AssigneeID)
	}
}

func TestGetTicketEndpointNotFound(t *testing.T) {
	token := setupTestJWT(t)
	handler, cleanup := setupTicketHandler(t, newTestTicketRepository())
	defer cleanup()

	doJSONRequest[api.ApiError](t, handler, http.MethodGet, "/api/v1/tickets/404", nil,
		map[string]string{"Authorization": "Bearer " + token},
		http.StatusNotFound)
}

func TestPatchTicketEndpointClaims(t *testing.T) {
	token := setupTestJWT(t)
	repo := newTestTicketRepository()
	repo.tickets[1] = model.TicketItem{TicketID: 1, ChatID: 555, StatusID: model.StatusOpen}
	repo.users[42] = model.UserItem{UserID: 42, Username: "agent"}

	handler, cleanup := setupTicketHandler(t, repo)
	defer cleanup()

	status := model.StatusInWork
	assignee := int64(42)
	resp := doJSONRequest[dto.TicketResponse](t, handler, http.MethodPatch, "/api/v1/tickets/1",
		dto.UpdateTicketRequest{StatusID: &status, AssigneeID: &assignee},
		map[string]string{"Authorization": "Bearer " + token},
		http.StatusOK)

	if resp.StatusID != model.StatusInWork {
		t.Fatalf("expected in-work status, got %d", resp.StatusID)
	}
	if resp.AssigneeID == nil || *resp.AssigneeID != 42 {
		t.Fatalf("expected assignee 42, got %v", resp.AssigneeID)
	}
}

func TestPatchTicketEndpointClaimConflict(t *testing.T) {
	token := setupTestJWT(t)
	repo := newTestTicketRepository()
	repo.tickets[1] = model.TicketItem{TicketID: 1, ChatID: 555, StatusID: model.StatusInWork, AssigneeID: 7}
	repo.users[42] = model.UserItem{UserID: 42, Username: "agent"}

	handler, cleanup := setupTicketHandler(t, repo)
	defer cleanup()

	status := model.StatusInWork
	assignee := int64(42)
	doJSONRequest[api.ApiError](t, handler, http.MethodPatch, "/api/v1/tickets/1",
		dto.UpdateTicketRequest{StatusID: &status, AssigneeID: &assignee},
		map[string]string{"Authorization": "Bearer " + token},
		http.StatusConflict)
}
