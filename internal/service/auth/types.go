package auth

import (
	internaljwt "helpdesk-backend/internal/jwt"
	"helpdesk-backend/internal/model"
)

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeConflict     ErrorCode = "conflict"
	ErrorCodeInternal     ErrorCode = "internal_error"
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

type RegisterParams struct {
	Username string
	Password string
}

type LoginParams struct {
	Username string
	Password string
}

type AuthResult struct {
	User   model.UserItem
	Tokens internaljwt.TokenResponse
}
