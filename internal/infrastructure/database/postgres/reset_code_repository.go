package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"identity-service/internal/domain/user"
	"identity-service/internal/infrastructure/database/postgres/models"
)

// ResetCodeRepository implements user.ResetCodeRepository on top of
// Postgres.
type ResetCodeRepository struct {
	db *DB
}

func NewResetCodeRepository(db *DB) user.ResetCodeRepository {
	return &ResetCodeRepository{db: db}
}

func (r *ResetCodeRepository) Create(ctx context.Context, code *user.ResetCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	code.WasUsed = false

	dbModel := toResetCodeModel(code)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create reset code: %w", err)
	}

	return nil
}

func (r *ResetCodeRepository) GetLatest(ctx context.Context, email, code, codeType string) (*user.ResetCode, error) {
	var dbModel models.ResetCodeModel
	err := r.db.DB.WithContext(ctx).
		Joins("JOIN users ON users.id = reset_codes.user_id").
		Where("users.email = ? AND reset_codes.code = ? AND reset_codes.type = ?", email, code, codeType).
		Order("reset_codes.created_at DESC").
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrResetCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset code: %w", err)
	}

	return toResetCodeEntity(&dbModel), nil
}

// Consume is a compare-and-set on was_used so that concurrent
// validations of the same code cannot both succeed.
func (r *ResetCodeRepository) Consume(ctx context.Context, codeID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.ResetCodeModel{}).
		Where("id = ? AND was_used = false", codeID).
		Update("was_used", true)

	if result.Error != nil {
		return fmt.Errorf("failed to consume reset code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrResetCodeUsed
	}

	return nil
}

func toResetCodeModel(c *user.ResetCode) *models.ResetCodeModel {
	return &models.ResetCodeModel{
		ID:        c.ID,
		UserID:    c.UserID,
		Code:      c.Code,
		Type:      c.Type,
		WasUsed:   c.WasUsed,
		CreatedAt: c.CreatedAt,
	}
}

func toResetCodeEntity(m *models.ResetCodeModel) *user.ResetCode {
	return &user.ResetCode{
		ID:        m.ID,
		UserID:    m.UserID,
		Code:      m.Code,
		Type:      m.Type,
		WasUsed:   m.WasUsed,
		CreatedAt: m.CreatedAt,
	}
}
