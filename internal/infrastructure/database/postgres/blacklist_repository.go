package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"identity-service/internal/infrastructure/database/postgres/models"
)

// BlacklistRepository implements token.BlacklistStore and the cleanup
// job's BlacklistCleaner on top of Postgres.
type BlacklistRepository struct {
	db *DB
}

func NewBlacklistRepository(db *DB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

// Add records a revoked jti. Re-revoking the same token is a no-op.
func (r *BlacklistRepository) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	dbModel := &models.BlacklistedTokenModel{
		JTI:       jti,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	err := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(dbModel).Error
	if err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

func (r *BlacklistRepository) Contains(ctx context.Context, jti string) (bool, error) {
	var dbModel models.BlacklistedTokenModel
	err := r.db.DB.WithContext(ctx).
		Where("jti = ?", jti).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}

	return true, nil
}

// DeleteExpired drops rows for tokens that are past their own expiry
// and can no longer be replayed.
func (r *BlacklistRepository) DeleteExpired(ctx context.Context) error {
	result := r.db.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.BlacklistedTokenModel{})

	return result.Error
}
