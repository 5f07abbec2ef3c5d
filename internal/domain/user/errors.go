package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrUserInactive      = errors.New("user account is inactive")
	ErrResetCodeNotFound = errors.New("reset code not found")
	ErrResetCodeUsed     = errors.New("reset code has already been used")
)
