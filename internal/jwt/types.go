package jwt

import (
	"errors"
	"time"
)

// Credential failure classes. Everything that is not a clean expiry is
// malformed: bad signature, wrong algorithm, garbage payload, or a user id
// claim that does not convert to an integer.
var (
	ErrExpired   = errors.New("token expired")
	ErrMalformed = errors.New("token malformed")
)

// Principal is the verified identity behind a credential. It is rebuilt per
// request or per connection and never persisted.
type Principal struct {
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}
