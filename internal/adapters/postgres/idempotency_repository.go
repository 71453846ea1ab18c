package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// Reserve claims the key. An expired reservation is taken over in place.
func (r *idempotencyRepository) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	now := time.Now().UTC()
	rec := portalIdempotencyModel{
		IdempotencyKey: key,
		RequestHash:    requestHash,
		Status:         "reserved",
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := r.db.WithContext(ctx).Create(&rec).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&portalIdempotencyModel{}).
		Where("idempotency_key = ? AND expires_at < ?", key, now).
		Updates(map[string]any{
			"request_hash":  requestHash,
			"status":        "reserved",
			"response_code": nil,
			"expires_at":    expiresAt,
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.liveKeyConflict(ctx, key, requestHash)
	}
	return nil
}

// liveKeyConflict tells a replay of the same request apart from a key
// reused for a different one.
func (r *idempotencyRepository) liveKeyConflict(ctx context.Context, key, requestHash string) error {
	var existing portalIdempotencyModel
	err := r.db.WithContext(ctx).
		Select("request_hash").
		Where("idempotency_key = ?", key).
		Take(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrConflict
		}
		return err
	}
	if existing.RequestHash != requestHash {
		return domain.ErrIdempotencyKeyReused
	}
	return domain.ErrConflict
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, responseCode int, at time.Time) error {
	return r.db.WithContext(ctx).Model(&portalIdempotencyModel{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]any{
			"status":        "completed",
			"response_code": responseCode,
			"updated_at":    at,
		}).Error
}

func (r *idempotencyRepository) Release(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("idempotency_key = ? AND status = ?", key, "reserved").
		Delete(&portalIdempotencyModel{}).Error
}
