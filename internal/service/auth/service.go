package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"helpdesk-backend/internal/database"
	internaljwt "helpdesk-backend/internal/jwt"
	"helpdesk-backend/internal/model"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

var createTokenWithRefresh = internaljwt.CreateTokenWithRefresh

// SetTokenIssuer swaps the token issuer, used by tests to avoid the Redis
// refresh store.
func SetTokenIssuer(issuer func(int64, int64) (internaljwt.TokenResponse, error)) {
	if issuer == nil {
		createTokenWithRefresh = internaljwt.CreateTokenWithRefresh
		return
	}
	createTokenWithRefresh = issuer
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

func (s *Service) Register(ctx context.Context, params RegisterParams) (model.UserItem, error) {
	username := strings.TrimSpace(params.Username)
	password := strings.TrimSpace(params.Password)

	if username == "" || password == "" {
		return model.UserItem{}, newError(ErrorCodeValidation, "username and password are required", nil)
	}

	if _, err := s.repo.FindUserByUsername(ctx, username); err == nil {
		return model.UserItem{}, newError(ErrorCodeConflict, "username already taken", nil)
	} else if !errors.Is(err, ErrNotFound) {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to check username", err)
	}

	hash, err := internaljwt.HashPassword(password)
	if err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to hash password", err)
	}

	userID, err := s.repo.NextUserID(ctx)
	if err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to allocate user id", err)
	}

	user := model.UserItem{
		UserID:       userID,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to save user", err)
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (AuthResult, error) {
	username := strings.TrimSpace(params.Username)
	password := strings.TrimSpace(params.Password)

	if username == "" || password == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "username and password are required", nil)
	}

	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, newError(ErrorCodeUnauthorized, "wrong username or password", nil)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to load user", err)
	}

	if !internaljwt.ValidatePassword(user.PasswordHash, password) {
		return AuthResult{}, newError(ErrorCodeUnauthorized, "wrong username or password", nil)
	}

	tokens, err := createTokenWithRefresh(user.UserID, 0)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}

	return AuthResult{
		User:   user,
		Tokens: tokens,
	}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (internaljwt.TokenResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return internaljwt.TokenResponse{}, newError(ErrorCodeValidation, "refresh token is required", nil)
	}

	access, err := internaljwt.RefreshAccessToken(refreshToken)
	if err != nil {
		return internaljwt.TokenResponse{}, newError(ErrorCodeUnauthorized, "invalid refresh token", err)
	}

	return internaljwt.TokenResponse{
		AccessToken:  access,
		RefreshToken: refreshToken,
	}, nil
}
