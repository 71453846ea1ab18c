package postgres

import (
	"context"
	"errors"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
	"gorm.io/gorm"
)

type artifactRepository struct {
	db *gorm.DB
}

func (r *artifactRepository) ApplyExportTx(ctx context.Context, params ports.ExportTxParams) ([]domain.GeneratedArtifact, error) {
	if len(params.ReportIDs) == 0 || len(params.Artifacts) == 0 {
		return nil, domain.ErrInvalidInput
	}
	out := make([]domain.GeneratedArtifact, 0, len(params.Artifacts))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userReportModel{}).
			Where("id IN ?", params.ReportIDs).
			Updates(map[string]any{
				"status":           string(domain.StatusReviewed),
				"administrator_id": params.AdministratorID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(params.ReportIDs)) {
			return domain.ErrNotFound
		}
		for _, a := range params.Artifacts {
			adminID := a.AdministratorID
			rec := adminReportModel{
				AdministratorID: &adminID,
				ReportType:      a.Kind.ArtifactLabel(),
				GeneratedAt:     a.GeneratedAt,
				FilterParams:    mustJSON(a.FilterParams),
				Period:          a.Period,
				Payload:         a.Payload,
				Filename:        a.Filename,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			out = append(out, toDomainArtifact(rec))
		}
		for _, e := range params.Events {
			if err := tx.Create(toOutboxModel(e)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *artifactRepository) GetByID(ctx context.Context, id int64) (domain.GeneratedArtifact, error) {
	var rec adminReportModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.GeneratedArtifact{}, domain.ErrNotFound
		}
		return domain.GeneratedArtifact{}, err
	}
	return toDomainArtifact(rec), nil
}

func (r *artifactRepository) List(ctx context.Context, administratorID int64, limit, offset int) ([]domain.GeneratedArtifact, error) {
	q := r.db.WithContext(ctx).
		Model(&adminReportModel{})
	if administratorID != 0 {
		q = q.Where("administrator_id = ?", administratorID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var rows []adminReportModel
	if err := q.Order("generated_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.GeneratedArtifact, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainArtifact(row))
	}
	return out, nil
}
