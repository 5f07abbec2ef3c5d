package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the domain. Email is the unique,
// case-sensitive lookup key.
type User struct {
	ID             uuid.UUID
	Email          string
	PasswordHashed string
	FullName       string
	PhoneNumber    *string
	IsActive       bool
	IsStaff        bool
	IsSuperuser    bool
	CreatedAt      time.Time
}

// Code types for one-time codes delivered out of band.
const (
	ResetPasswordRequestType = "RESET_PASSWORD_REQUEST"
	UserConfirmationType     = "USER_CONFIRMATION"
)

// ResetCode is a one-time numeric code linked to a user. Rows are never
// updated after consumption and are retained indefinitely.
type ResetCode struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Code      string
	Type      string
	WasUsed   bool
	CreatedAt time.Time
}

// EligibleAt reports whether the code can still be consumed at the given
// instant: unused and younger than the expiration window.
func (c *ResetCode) EligibleAt(now time.Time, window time.Duration) bool {
	return !c.WasUsed && now.Sub(c.CreatedAt) < window
}
