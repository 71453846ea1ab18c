package postgres

import (
	"context"
	"errors"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"gorm.io/gorm"
)

type catalogRepository struct {
	db *gorm.DB
}

func (r *catalogRepository) ListTools(ctx context.Context) ([]domain.Tool, error) {
	var rows []toolModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Tool, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainTool(row))
	}
	return out, nil
}

func (r *catalogRepository) GetTool(ctx context.Context, id int64) (domain.Tool, error) {
	var rec toolModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Tool{}, domain.ErrNotFound
		}
		return domain.Tool{}, err
	}
	return toDomainTool(rec), nil
}

func (r *catalogRepository) CreateTool(ctx context.Context, tool domain.Tool) (domain.Tool, error) {
	rec := fromDomainTool(tool)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.Tool{}, domain.ErrConflict
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return domain.Tool{}, domain.ErrInvalidInput
		}
		return domain.Tool{}, err
	}
	return toDomainTool(rec), nil
}

func (r *catalogRepository) ListAIModels(ctx context.Context) ([]domain.AIModel, error) {
	var rows []aiModelModel
	if err := r.db.WithContext(ctx).Order("uploaded_at DESC NULLS LAST, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AIModel, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainAIModel(row))
	}
	return out, nil
}

func (r *catalogRepository) CreateAIModel(ctx context.Context, model domain.AIModel) (domain.AIModel, error) {
	rec := fromDomainAIModel(model)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.AIModel{}, domain.ErrConflict
		}
		return domain.AIModel{}, err
	}
	return toDomainAIModel(rec), nil
}

func (r *catalogRepository) SeedDefaults(ctx context.Context, model domain.AIModel, tools []domain.Tool) (int, error) {
	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted = 0
		var existing aiModelModel
		err := tx.Where("version = ?", model.Version).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			existing = fromDomainAIModel(model)
			if err := tx.Create(&existing).Error; err != nil {
				return err
			}
			inserted++
		case err != nil:
			return err
		}
		for _, t := range tools {
			var count int64
			if err := tx.Model(&toolModel{}).Where("name = ?", t.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			modelID := existing.ID
			t.AIModelID = &modelID
			rec := fromDomainTool(t)
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	return inserted, err
}

func fromDomainTool(t domain.Tool) toolModel {
	return toolModel{
		Name: t.Name, Category: t.Category, TechnicalDescription: t.TechnicalDescription,
		UsageInstructions: t.UsageInstructions, ReferenceImageURL: t.ReferenceImageURL, Active: t.Active,
		RegisteredAt: t.RegisteredAt, AIModelID: t.AIModelID,
	}
}

func fromDomainAIModel(m domain.AIModel) aiModelModel {
	return aiModelModel{
		Version: m.Version, FileURL: m.FileURL, UploadedAt: m.UploadedAt, ChangeNotes: m.ChangeNotes,
		Active: m.Active, TotalTools: m.TotalTools,
	}
}
