package models

import (
	"time"

	"github.com/google/uuid"
)

// UserModel is the database row backing a user account.
type UserModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHashed string    `gorm:"type:varchar(255);not null"`
	FullName       string    `gorm:"type:varchar(60);not null"`
	PhoneNumber    *string   `gorm:"type:varchar(20)"`
	IsActive       bool      `gorm:"default:true;not null"`
	IsStaff        bool      `gorm:"default:false;not null"`
	IsSuperuser    bool      `gorm:"default:false;not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}

// ResetCodeModel is the database row backing a one-time reset code.
// Rows are never deleted; consumption only flips was_used.
type ResetCodeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Code      string    `gorm:"type:char(6);not null;index"`
	Type      string    `gorm:"type:varchar(25);not null"`
	WasUsed   bool      `gorm:"default:false;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (ResetCodeModel) TableName() string {
	return "reset_codes"
}

// BlacklistedTokenModel records a revoked refresh token jti until the
// token would have expired anyway.
type BlacklistedTokenModel struct {
	JTI       string    `gorm:"type:varchar(36);primary_key"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

func (BlacklistedTokenModel) TableName() string {
	return "token_blacklist"
}
