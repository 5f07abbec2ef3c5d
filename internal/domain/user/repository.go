package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for user accounts.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// ResetCodeRepository persists one-time reset codes. Rows are retained
// indefinitely; Consume must be an atomic compare-and-set so that two
// concurrent validations of the same code cannot both succeed.
type ResetCodeRepository interface {
	Create(ctx context.Context, code *ResetCode) error
	// GetLatest returns the newest code matching the user's email, the
	// code string, and the code type, or ErrResetCodeNotFound.
	GetLatest(ctx context.Context, email, code, codeType string) (*ResetCode, error)
	// Consume flips was_used from false to true exactly once. It returns
	// ErrResetCodeUsed when the flag was already set.
	Consume(ctx context.Context, codeID uuid.UUID) error
}
