package auth

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	internaljwt "helpdesk-backend/internal/jwt"
	"helpdesk-backend/internal/model"
)

type memoryRepository struct {
	mu     sync.Mutex
	users  map[string]model.UserItem
	nextID int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		users: make(map[string]model.UserItem),
	}
}

func (m *memoryRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Username] = user
	return nil
}

func (m *memoryRepository) FindUserByUsername(ctx context.Context, username string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[username]
	if !ok {
		return model.UserItem{}, ErrNotFound
	}
	return user, nil
}

func (m *memoryRepository) NextUserID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID, nil
}

func useStubIssuer(t *testing.T) {
	t.Helper()
	SetTokenIssuer(func(userID int64, validUntil int64) (internaljwt.TokenResponse, error) {
		return internaljwt.TokenResponse{
			AccessToken:  "access-" + strconv.FormatInt(userID, 10),
			RefreshToken: "refresh-" + strconv.FormatInt(userID, 10),
		}, nil
	})
	t.Cleanup(func() {
		SetTokenIssuer(nil)
	})
}

func newTestService(repo Repository) *Service {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewWithRepository(repo, func() time.Time { return now })
}

func TestRegister(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), RegisterParams{
		Username: "agent",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.UserID == 0 {
		t.Fatal("expected an allocated user id")
	}
	if user.PasswordHash == "s3cret-pass" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), RegisterParams{Username: "agent", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterParams{Username: "agent", Password: "other-pass"})
	if err == nil {
		t.Fatal("expected conflict")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	_, err := svc.Register(context.Background(), RegisterParams{Username: " ", Password: ""})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	useStubIssuer(t)

	if _, err := svc.Register(context.Background(), RegisterParams{Username: "agent", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginParams{Username: "agent", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", result.Tokens)
	}
	if result.User.Username != "agent" {
		t.Fatalf("unexpected user %+v", result.User)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	useStubIssuer(t)

	if _, err := svc.Register(context.Background(), RegisterParams{Username: "agent", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := svc.Login(context.Background(), LoginParams{Username: "agent", Password: "wrong"})
	if err == nil {
		t.Fatal("expected unauthorized")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	useStubIssuer(t)

	_, err := svc.Login(context.Background(), LoginParams{Username: "ghost", Password: "whatever"})
	if err == nil {
		t.Fatal("expected unauthorized")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRequiresToken(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	_, err := svc.Refresh(context.Background(), "  ")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if svcErr, ok := err.(*Error); !ok || svcErr.Code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
