package postgres

import (
	"context"
	"errors"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
	"gorm.io/gorm"
)

const reportOrder = "user_reports.submitted_at DESC NULLS LAST, user_reports.id DESC"

type reportRepository struct {
	db *gorm.DB
}

func (r *reportRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("user_reports").
		Select("user_reports.*, tools.name AS tool_name").
		Joins("LEFT JOIN tools ON tools.id = user_reports.tool_id")
}

func applyScope(q *gorm.DB, scope ports.VisibilityScope) *gorm.DB {
	if scope.All {
		return q
	}
	return q.Where("(user_reports.administrator_id IS NULL OR user_reports.administrator_id = ?)", scope.AdminID)
}

func (r *reportRepository) CreateWithOutbox(ctx context.Context, report domain.Report, event ports.OutboxEvent) (domain.Report, error) {
	rec := userReportModel{
		VisitorToken: report.VisitorToken,
		ToolID:       report.ToolID,
		Type:         report.Type,
		Description:  report.Description,
		SubmittedAt:  report.SubmittedAt,
		Status:       string(report.Status),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return tx.Create(toOutboxModel(event)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.Report{}, domain.ErrNotFound
		}
		return domain.Report{}, err
	}
	out := toDomainReport(userReportRow{userReportModel: rec})
	out.ToolName = report.ToolName
	return out, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id int64) (domain.Report, error) {
	var row userReportRow
	if err := r.base(ctx).Where("user_reports.id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Report{}, domain.ErrNotFound
		}
		return domain.Report{}, err
	}
	return toDomainReport(row), nil
}

func (r *reportRepository) List(ctx context.Context, scope ports.VisibilityScope, filter ports.ReportFilter) ([]domain.Report, error) {
	if scope.None {
		return []domain.Report{}, nil
	}
	q := applyScope(r.base(ctx), scope)
	if filter.Status != "" {
		q = q.Where("user_reports.status = ?", string(filter.Status))
	}
	if filter.Type != "" {
		q = q.Where("user_reports.type = ?", filter.Type)
	}
	if filter.From != nil {
		q = q.Where("user_reports.submitted_at >= ?", *filter.From)
	}
	if filter.Until != nil {
		q = q.Where("user_reports.submitted_at < ?", *filter.Until)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("(user_reports.description ILIKE ? OR user_reports.visitor_token ILIKE ?)", pattern, pattern)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var rows []userReportRow
	if err := q.Order(reportOrder).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainReports(rows), nil
}

func (r *reportRepository) ListByIDs(ctx context.Context, scope ports.VisibilityScope, ids []int64) ([]domain.Report, error) {
	if scope.None || len(ids) == 0 {
		return []domain.Report{}, nil
	}
	var rows []userReportRow
	q := applyScope(r.base(ctx), scope).Where("user_reports.id IN ?", ids)
	if err := q.Order(reportOrder).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainReports(rows), nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReportStatus, administratorID int64) (domain.Report, error) {
	updates := map[string]any{"status": string(status)}
	if administratorID > 0 {
		updates["administrator_id"] = administratorID
	}
	res := r.db.WithContext(ctx).Model(&userReportModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return domain.Report{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Report{}, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *reportRepository) CountAssigned(ctx context.Context, administratorID int64) (int64, int64, error) {
	var counts struct {
		Pending int64 `gorm:"column:pending"`
		Total   int64 `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT count(*) FILTER (WHERE status = ? OR status = '') AS pending, count(*) AS total
		 FROM user_reports WHERE administrator_id = ?`,
		string(domain.StatusPending), administratorID,
	).Scan(&counts).Error
	if err != nil {
		return 0, 0, err
	}
	return counts.Pending, counts.Total, nil
}

func toDomainReports(rows []userReportRow) []domain.Report {
	out := make([]domain.Report, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainReport(row))
	}
	return out
}
