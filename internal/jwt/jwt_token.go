package jwt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"helpdesk-backend/internal/env"
	"helpdesk-backend/utils"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
)

// AccessTokenTTL is the validity window baked into issued credentials. The
// verifier side only trusts the exp claim, so issuer and verifier agree by
// construction.
const AccessTokenTTL = 30 * time.Minute

const RefreshTokenTTL = 24 * 30 * time.Hour

var (
	mu          sync.RWMutex
	secret      []byte
	redisClient *redis.Client
)

// SetSecret overrides the signing secret. Main wires it from USER_SECRET;
// tests set their own.
func SetSecret(s []byte) {
	mu.Lock()
	defer mu.Unlock()
	secret = make([]byte, len(s))
	copy(secret, s)
}

// SetRedisClient wires the refresh-token store. Without it access tokens
// still work; only the refresh flow is unavailable.
func SetRedisClient(client *redis.Client) {
	mu.Lock()
	defer mu.Unlock()
	redisClient = client
}

func NewRedisClientFromEnv() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     env.Get(env.AuthRedisURL),
		Password: env.Get(env.AuthRedisPass),
		DB:       0,
	})
}

func signingSecret() []byte {
	mu.RLock()
	defer mu.RUnlock()
	if len(secret) > 0 {
		return secret
	}
	return []byte(env.Get(env.UserSecretKey))
}

func refreshStore() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return redisClient
}

// CreateAccessToken issues an HS256 credential carrying the staff id. A zero
// validUntil means now plus AccessTokenTTL.
func CreateAccessToken(userID int64, validUntil int64) (string, error) {
	now := time.Now()
	if validUntil == 0 {
		validUntil = now.Add(AccessTokenTTL).Unix()
	}

	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(signingSecret())
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseAccessToken verifies signature and expiry and extracts the Principal.
// Returns ErrExpired past the exp claim and ErrMalformed for every other
// defect, including a user_id that is not an integer.
func ParseAccessToken(tokenString string) (Principal, error) {
	if len(tokenString) == 0 {
		return Principal{}, fmt.Errorf("%w: empty token", ErrMalformed)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return signingSecret(), nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return Principal{}, ErrExpired
		}
		return Principal{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !token.Valid {
		return Principal{}, fmt.Errorf("%w: token not valid", ErrMalformed)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, fmt.Errorf("%w: claims of unexpected type", ErrMalformed)
	}

	userID, err := integerClaim(claims, "user_id")
	if err != nil {
		return Principal{}, err
	}

	principal := Principal{UserID: userID}
	if iat, err := integerClaim(claims, "iat"); err == nil {
		principal.IssuedAt = time.Unix(iat, 0)
	}
	if exp, err := integerClaim(claims, "exp"); err == nil {
		principal.ExpiresAt = time.Unix(exp, 0)
	}
	return principal, nil
}

func integerClaim(claims jwt.MapClaims, name string) (int64, error) {
	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s claim", ErrMalformed, name)
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s claim is not an integer", ErrMalformed, name)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s claim is not an integer", ErrMalformed, name)
	}
}

// CreateTokenWithRefresh issues an access token plus an opaque refresh token
// stored in Redis for RefreshTokenTTL.
func CreateTokenWithRefresh(userID int64, validUntil int64) (TokenResponse, error) {
	accessToken, err := CreateAccessToken(userID, validUntil)
	if err != nil {
		return TokenResponse{}, err
	}

	store := refreshStore()
	if store == nil {
		return TokenResponse{}, fmt.Errorf("refresh token store not configured")
	}

	refreshToken := utils.CreateToken()
	if refreshToken == "" {
		return TokenResponse{}, fmt.Errorf("failed to generate refresh token")
	}

	err = store.Set(context.Background(), refreshToken, strconv.FormatInt(userID, 10), RefreshTokenTTL).Err()
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshAccessToken exchanges a stored refresh token for a fresh access
// token and slides the refresh token's expiry.
func RefreshAccessToken(refreshToken string) (string, error) {
	if len(refreshToken) == 0 {
		return "", fmt.Errorf("refresh token is empty")
	}

	store := refreshStore()
	if store == nil {
		return "", fmt.Errorf("refresh token store not configured")
	}

	val, err := store.Get(context.Background(), refreshToken).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("invalid refresh token")
	} else if err != nil {
		return "", err
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid token data")
	}

	if err := store.Expire(context.Background(), refreshToken, RefreshTokenTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to update refresh token expiration: %v", err)
	}

	return CreateAccessToken(userID, 0)
}
