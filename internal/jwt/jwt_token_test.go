package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt"
)

func useTestSecret(t *testing.T) {
	t.Helper()
	original := make([]byte, len(secret))
	copy(original, secret)
	SetSecret([]byte("test-secret"))
	t.Cleanup(func() {
		SetSecret(original)
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	useTestSecret(t)

	tokenString, err := CreateAccessToken(42, 0)
	if err != nil {
		t.Fatalf("CreateAccessToken error: %v", err)
	}

	principal, err := ParseAccessToken(tokenString)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if principal.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", principal.UserID)
	}
	if principal.ExpiresAt.Before(time.Now()) {
		t.Fatal("expected expiry in the future")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	useTestSecret(t)

	expired := time.Now().Add(-time.Minute).Unix()
	tokenString, err := CreateAccessToken(42, expired)
	if err != nil {
		t.Fatalf("CreateAccessToken error: %v", err)
	}

	_, err = ParseAccessToken(tokenString)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	useTestSecret(t)

	tokenString, err := CreateAccessToken(42, 0)
	if err != nil {
		t.Fatalf("CreateAccessToken error: %v", err)
	}

	SetSecret([]byte("another-secret"))

	_, err = ParseAccessToken(tokenString)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseAccessTokenGarbage(t *testing.T) {
	useTestSecret(t)

	_, err := ParseAccessToken("not.a.token")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	_, err = ParseAccessToken("")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for empty token, got %v", err)
	}
}

func TestParseAccessTokenNonIntegerUserID(t *testing.T) {
	useTestSecret(t)

	claims := gojwt.MapClaims{
		"user_id": "operator",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	tokenString, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	_, err = ParseAccessToken(tokenString)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseAccessTokenStringUserID(t *testing.T) {
	useTestSecret(t)

	// Some issuers encode the id as a numeric string; the verifier accepts
	// it as long as it parses.
	claims := gojwt.MapClaims{
		"user_id": "42",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	tokenString, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	principal, err := ParseAccessToken(tokenString)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if principal.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", principal.UserID)
	}
}

func TestValidatePassword(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if !ValidatePassword(hash, "hunter2!") {
		t.Fatal("expected matching password to validate")
	}
	if ValidatePassword(hash, "wrong") {
		t.Fatal("expected mismatched password to fail")
	}
}
