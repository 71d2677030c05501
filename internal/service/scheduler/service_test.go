package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"helpdesk-backend/internal/model"
)

type memoryRepository struct {
	mu     sync.Mutex
	rules  map[int64]model.AssignmentRuleItem
	nextID int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		rules: make(map[int64]model.AssignmentRuleItem),
	}
}

func (m *memoryRepository) GetRule(ctx context.Context, chatID int64) (model.AssignmentRuleItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rule, ok := m.rules[chatID]
	if !ok {
		return model.AssignmentRuleItem{}, ErrNotFound
	}
	return rule, nil
}

func (m *memoryRepository) CreateRule(ctx context.Context, rule model.AssignmentRuleItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[rule.ChatID]; ok {
		return ErrConflict
	}
	m.rules[rule.ChatID] = rule
	return nil
}

func (m *memoryRepository) DeleteRule(ctx context.Context, chatID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[chatID]; !ok {
		return false, nil
	}
	delete(m.rules, chatID)
	return true, nil
}

func (m *memoryRepository) NextRuleID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID, nil
}

func newTestService(repo Repository) *Service {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewWithRepository(repo, func() time.Time { return now })
}

func TestCreateRule(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	rule, err := svc.Create(context.Background(), 1001, 42)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rule.ChatID != 1001 || rule.AssigneeID != 42 {
		t.Fatalf("unexpected rule %+v", rule)
	}
	if rule.RuleID == 0 {
		t.Fatal("expected an allocated rule id")
	}
}

func TestCreateRuleRejectsDuplicateChat(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	if _, err := svc.Create(context.Background(), 1001, 42); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	_, err := svc.Create(context.Background(), 1001, 43)
	if err == nil {
		t.Fatal("expected conflict for duplicate chat")
	}
	svcErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if svcErr.Code != ErrorCodeConflict {
		t.Fatalf("expected conflict, got %s", svcErr.Code)
	}
}

func TestCreateRuleRequiresChatAndAssignee(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	_, err := svc.Create(context.Background(), 0, 42)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRule(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	if _, err := svc.Create(context.Background(), 1001, 42); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.Delete(context.Background(), 1001); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if _, found, _ := svc.Lookup(context.Background(), 1001); found {
		t.Fatal("expected rule to be gone")
	}
}

func TestDeleteMissingRule(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	err := svc.Delete(context.Background(), 1001)
	if err == nil {
		t.Fatal("expected not found")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookupAbsenceIsNotAnError(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	_, found, err := svc.Lookup(context.Background(), 555)
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if found {
		t.Fatal("expected no rule")
	}
}
