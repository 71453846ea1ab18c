package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

type ReportRepository struct {
	s *store
}

func (r *ReportRepository) CreateWithOutbox(_ context.Context, report domain.Report, event ports.OutboxEvent) (domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.visitors[report.VisitorToken]; !ok {
		return domain.Report{}, domain.ErrNotFound
	}
	if report.ToolID != nil {
		tool, ok := r.s.tools[*report.ToolID]
		if !ok {
			return domain.Report{}, domain.ErrNotFound
		}
		report.ToolName = tool.Name
	}
	r.s.nextReport++
	report.ID = r.s.nextReport
	r.s.reports[report.ID] = report
	r.s.enqueueLocked(event)
	return report, nil
}

// Put stores a report as-is, assigning an id when missing.
func (r *ReportRepository) Put(report domain.Report) domain.Report {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if report.ID == 0 {
		r.s.nextReport++
		report.ID = r.s.nextReport
	} else if report.ID > r.s.nextReport {
		r.s.nextReport = report.ID
	}
	if report.ToolID != nil {
		if tool, ok := r.s.tools[*report.ToolID]; ok {
			report.ToolName = tool.Name
		}
	}
	r.s.reports[report.ID] = report
	return report
}

func (r *ReportRepository) GetByID(_ context.Context, id int64) (domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	report, ok := r.s.reports[id]
	if !ok {
		return domain.Report{}, domain.ErrNotFound
	}
	return report, nil
}

func (r *ReportRepository) List(_ context.Context, scope ports.VisibilityScope, filter ports.ReportFilter) ([]domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Report, 0, len(r.s.reports))
	if scope.None {
		return out, nil
	}
	search := strings.ToLower(filter.Search)
	for _, report := range r.s.reports {
		if !visible(scope, report) {
			continue
		}
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		if filter.Type != "" && report.Type != filter.Type {
			continue
		}
		if filter.From != nil && (report.SubmittedAt == nil || report.SubmittedAt.Before(*filter.From)) {
			continue
		}
		if filter.Until != nil && (report.SubmittedAt == nil || !report.SubmittedAt.Before(*filter.Until)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(report.Description), search) &&
			!strings.Contains(strings.ToLower(report.VisitorToken), search) {
			continue
		}
		out = append(out, report)
	}
	sortNewestFirst(out)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []domain.Report{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *ReportRepository) ListByIDs(_ context.Context, scope ports.VisibilityScope, ids []int64) ([]domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Report, 0, len(ids))
	if scope.None {
		return out, nil
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		report, ok := r.s.reports[id]
		if !ok || seen[id] || !visible(scope, report) {
			continue
		}
		seen[id] = true
		out = append(out, report)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *ReportRepository) UpdateStatus(_ context.Context, id int64, status domain.ReportStatus, administratorID int64) (domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	report, ok := r.s.reports[id]
	if !ok {
		return domain.Report{}, domain.ErrNotFound
	}
	report.Status = status
	if administratorID > 0 {
		adminID := administratorID
		report.AdministratorID = &adminID
	}
	r.s.reports[id] = report
	return report, nil
}

func (r *ReportRepository) CountAssigned(_ context.Context, administratorID int64) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var pending, total int64
	for _, report := range r.s.reports {
		if report.AdministratorID == nil || *report.AdministratorID != administratorID {
			continue
		}
		total++
		if report.Status == domain.StatusPending || report.Status == "" {
			pending++
		}
	}
	return pending, total, nil
}

func visible(scope ports.VisibilityScope, report domain.Report) bool {
	if scope.None {
		return false
	}
	if scope.All {
		return true
	}
	return report.AdministratorID == nil || *report.AdministratorID == scope.AdminID
}

func sortNewestFirst(reports []domain.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i].SubmittedAt, reports[j].SubmittedAt
		switch {
		case a == nil && b == nil:
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		}
		return reports[i].ID > reports[j].ID
	})
}
