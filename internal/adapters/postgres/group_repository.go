package postgres

import (
	"context"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type groupRepository struct {
	db *gorm.DB
}

func (r *groupRepository) UpsertAll(ctx context.Context, groups []domain.PermissionGroup) error {
	if len(groups) == 0 {
		return nil
	}
	rows := make([]permissionGroupModel, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, permissionGroupModel{Name: g.Name, Grants: mustJSON(g.Grants), UpdatedAt: g.UpdatedAt})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"grants", "updated_at"}),
	}).Create(&rows).Error
}

func (r *groupRepository) List(ctx context.Context) ([]domain.PermissionGroup, error) {
	var rows []permissionGroupModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.PermissionGroup, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainGroup(row))
	}
	return out, nil
}
