package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
	"gorm.io/gorm"
)

type administratorRepository struct {
	db *gorm.DB
}

func (r *administratorRepository) GetByEmail(ctx context.Context, email string) (domain.Administrator, error) {
	return r.take(r.db.WithContext(ctx).Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))))
}

func (r *administratorRepository) GetByID(ctx context.Context, id int64) (domain.Administrator, error) {
	return r.take(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *administratorRepository) take(q *gorm.DB) (domain.Administrator, error) {
	var rec administratorModel
	if err := q.Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Administrator{}, domain.ErrNotFound
		}
		return domain.Administrator{}, err
	}
	return toDomainAdministrator(rec), nil
}

func (r *administratorRepository) List(ctx context.Context) ([]domain.Administrator, error) {
	var rows []administratorModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Administrator, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainAdministrator(row))
	}
	return out, nil
}

func (r *administratorRepository) Upsert(ctx context.Context, params ports.UpsertAdministratorParams) (domain.Administrator, error) {
	var rec administratorModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("lower(email) = ?", strings.ToLower(params.Email)).Take(&rec).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			findErr = tx.Where("uid = ?", params.UID).Take(&rec).Error
		}
		switch {
		case findErr == nil:
			updates := map[string]any{
				"uid":          params.UID,
				"email":        params.Email,
				"name":         params.Name,
				"access_level": string(params.AccessLevel),
				"group_name":   params.GroupName,
			}
			if params.Permissions != nil {
				updates["permissions"] = mustJSON(params.Permissions)
			}
			if err := tx.Model(&administratorModel{}).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", rec.ID).Take(&rec).Error
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			registeredAt := params.RegisteredAt
			rec = administratorModel{
				UID:          params.UID,
				Email:        params.Email,
				Name:         params.Name,
				RegisteredAt: &registeredAt,
				Permissions:  mustJSON(params.Permissions),
				AccessLevel:  string(params.AccessLevel),
				GroupName:    params.GroupName,
			}
			return tx.Create(&rec).Error
		default:
			return findErr
		}
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Administrator{}, domain.ErrConflict
		}
		return domain.Administrator{}, err
	}
	return toDomainAdministrator(rec), nil
}

func (r *administratorRepository) Remove(ctx context.Context, email, uid string) (int64, error) {
	q := r.db.WithContext(ctx)
	switch {
	case email != "" && uid != "":
		q = q.Where("lower(email) = ? OR uid = ?", strings.ToLower(email), uid)
	case email != "":
		q = q.Where("lower(email) = ?", strings.ToLower(email))
	case uid != "":
		q = q.Where("uid = ?", uid)
	default:
		return 0, domain.ErrInvalidInput
	}
	res := q.Delete(&administratorModel{})
	return res.RowsAffected, res.Error
}
