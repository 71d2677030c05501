package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"helpdesk-backend/internal/env"
	internaljwt "helpdesk-backend/internal/jwt"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFrom returns the staff identity injected by ValidateStaffJWT.
func PrincipalFrom(ctx context.Context) (internaljwt.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(internaljwt.Principal)
	return principal, ok
}

// ValidateJWTMiddleware resolves the bearer token from the Authorization
// header and injects the resulting Principal into the request context. The
// handler behind it can assume PrincipalFrom succeeds.
func ValidateJWTMiddleware() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenString = strings.TrimPrefix(tokenString, "Bearer ")

			principal, err := internaljwt.ParseAccessToken(tokenString)
			if err != nil {
				if errors.Is(err, internaljwt.ErrExpired) {
					http.Error(w, "Token expired", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next(w, r.WithContext(ctx))
		}
	}
}

// ValidateBotKeyMiddleware guards the bot-facing ingress endpoints with the
// shared key the bot process is provisioned with.
func ValidateBotKeyMiddleware() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Bot-Key")
			if key == "" || key != env.Get(env.BotAPIKey) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
}

var ValidateStaffJWT = ValidateJWTMiddleware()
var ValidateBotKey = ValidateBotKeyMiddleware()
