package errors

import (
	"errors"
	"fmt"
)

var (
	ErrWrongCredentials = errors.New("Incorrect authentication credentials.")
	ErrInvalidToken     = errors.New("Invalid or expired access token.")
	ErrUnauthorized     = errors.New("unauthorized access")

	ErrUserNotFound = errors.New("User not found")
	ErrUserInactive = errors.New("User is inactive")
	ErrEmailTaken   = errors.New("This e-mail address is already associated with an account.")

	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenBlacklisted   = errors.New("token is blacklisted")
	ErrTokenMalformed     = errors.New("token is invalid or malformed")
	ErrNoUserClaim        = errors.New("token contained no recognizable user identification")
	ErrRevocationDisabled = errors.New("token revocation is not enabled")

	ErrResetRequestNotFound = errors.New("Password request was not found")
	ErrCodeInvalidOrExpired = errors.New("The code is expired or has already been used")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
