package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"gorm.io/gorm"
)

type visitorRepository struct {
	db *gorm.DB
}

func (r *visitorRepository) GetByToken(ctx context.Context, token string) (domain.Visitor, error) {
	var rec visitorModel
	if err := r.db.WithContext(ctx).Where("token = ?", token).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Visitor{}, domain.ErrNotFound
		}
		return domain.Visitor{}, err
	}
	return toDomainVisitor(rec), nil
}

func (r *visitorRepository) Create(ctx context.Context, token string, createdAt time.Time) (domain.Visitor, error) {
	rec := visitorModel{Token: token, Active: true, CreatedAt: createdAt}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Visitor{}, domain.ErrConflict
		}
		return domain.Visitor{}, err
	}
	return toDomainVisitor(rec), nil
}
