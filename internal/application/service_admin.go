package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

const unknownAdministratorName = "Administrador desconocido"

// Dashboard summarizes the principal's directory entry and workload. An
// unresolved principal gets a placeholder view instead of an error.
func (s *Service) Dashboard(ctx context.Context, principal domain.Principal) (DashboardView, error) {
	access, err := s.ResolveAccess(ctx, principal)
	if err != nil {
		return DashboardView{}, err
	}
	if !access.Known() {
		return DashboardView{
			Name:        unknownAdministratorName,
			Email:       principal.NormalizedEmail(),
			AccessLevel: domain.AccessNone,
		}, nil
	}
	pending, total, err := s.reports.CountAssigned(ctx, access.Administrator.ID)
	if err != nil {
		return DashboardView{}, err
	}
	return DashboardView{
		Known:           true,
		AdministratorID: access.Administrator.ID,
		Name:            access.Administrator.Name,
		Email:           access.Administrator.Email,
		AccessLevel:     access.Level,
		GroupName:       access.Administrator.GroupName,
		PendingAssigned: pending,
		TotalAssigned:   total,
	}, nil
}

// ListReports returns the reports visible to the principal, newest first.
func (s *Service) ListReports(ctx context.Context, principal domain.Principal, query ListReportsQuery) ([]domain.Report, error) {
	access, err := s.ResolveAccess(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !access.Known() {
		return []domain.Report{}, nil
	}
	filter, err := s.reportFilter(query)
	if err != nil {
		return nil, err
	}
	return s.reports.List(ctx, access.Scope(), filter)
}

func (s *Service) reportFilter(query ListReportsQuery) (ports.ReportFilter, error) {
	filter := ports.ReportFilter{
		Search: strings.TrimSpace(query.Search),
		Limit:  s.clampLimit(query.Limit),
		Offset: query.Offset,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return ports.ReportFilter{}, err
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(query.Type); raw != "" {
		reportType, err := domain.ValidateReportType(raw)
		if err != nil {
			return ports.ReportFilter{}, err
		}
		filter.Type = reportType
	}
	if query.From != nil {
		from := startOfDay(*query.From)
		filter.From = &from
	}
	if query.To != nil {
		until := startOfDay(*query.To).AddDate(0, 0, 1)
		filter.Until = &until
	}
	if filter.From != nil && filter.Until != nil && !filter.From.Before(*filter.Until) {
		return ports.ReportFilter{}, fmt.Errorf("%w: fecha_desde must not be after fecha_hasta", domain.ErrInvalidInput)
	}
	return filter, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UpdateReportStatus moves a report forward and claims it for the acting
// administrator when still unassigned.
func (s *Service) UpdateReportStatus(ctx context.Context, principal domain.Principal, id int64, rawStatus string) (domain.Report, error) {
	next, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return domain.Report{}, err
	}
	access, err := s.requireKnown(ctx, principal)
	if err != nil {
		return domain.Report{}, err
	}
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}
	if !s.policy.CanChangeReport(access.Administrator, report) {
		return domain.Report{}, domain.ErrForbidden
	}
	if !report.Status.CanAdvance(next) {
		return domain.Report{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatus, report.Status, next)
	}
	assignee := access.Administrator.ID
	if report.AdministratorID != nil {
		assignee = *report.AdministratorID
	}
	return s.reports.UpdateStatus(ctx, id, next, assignee)
}

// ListArtifacts lists archived exports without payloads. Admins only see
// their own.
func (s *Service) ListArtifacts(ctx context.Context, principal domain.Principal, limit, offset int) ([]domain.GeneratedArtifact, error) {
	access, err := s.require(ctx, principal, domain.ActionView, domain.ResourceAdminReport)
	if err != nil {
		return nil, err
	}
	owner := access.Administrator.ID
	if access.Level == domain.AccessSuperadmin {
		owner = 0
	}
	if offset < 0 {
		offset = 0
	}
	return s.artifacts.List(ctx, owner, s.clampLimit(limit), offset)
}

func (s *Service) ListTools(ctx context.Context, principal domain.Principal) ([]domain.Tool, error) {
	if _, err := s.require(ctx, principal, domain.ActionView, domain.ResourceTool); err != nil {
		return nil, err
	}
	return s.catalog.ListTools(ctx)
}

func (s *Service) CreateTool(ctx context.Context, principal domain.Principal, req CreateToolRequest) (domain.Tool, error) {
	if _, err := s.require(ctx, principal, domain.ActionAdd, domain.ResourceTool); err != nil {
		return domain.Tool{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		return domain.Tool{}, fmt.Errorf("%w: nombre is required and at most 100 characters", domain.ErrInvalidInput)
	}
	category := strings.TrimSpace(req.Category)
	if len(category) > 50 {
		return domain.Tool{}, fmt.Errorf("%w: categoria is at most 50 characters", domain.ErrInvalidInput)
	}
	now := s.nowFn()
	return s.catalog.CreateTool(ctx, domain.Tool{
		Name:                 name,
		Category:             category,
		TechnicalDescription: strings.TrimSpace(req.TechnicalDescription),
		UsageInstructions:    strings.TrimSpace(req.UsageInstructions),
		ReferenceImageURL:    strings.TrimSpace(req.ReferenceImageURL),
		Active:               true,
		RegisteredAt:         &now,
		AIModelID:            req.AIModelID,
	})
}

func (s *Service) ListAIModels(ctx context.Context, principal domain.Principal) ([]domain.AIModel, error) {
	if _, err := s.require(ctx, principal, domain.ActionView, domain.ResourceAIModel); err != nil {
		return nil, err
	}
	return s.catalog.ListAIModels(ctx)
}

func (s *Service) CreateAIModel(ctx context.Context, principal domain.Principal, req CreateAIModelRequest) (domain.AIModel, error) {
	if _, err := s.require(ctx, principal, domain.ActionAdd, domain.ResourceAIModel); err != nil {
		return domain.AIModel{}, err
	}
	version := strings.TrimSpace(req.Version)
	if version == "" || len(version) > 50 {
		return domain.AIModel{}, fmt.Errorf("%w: version is required and at most 50 characters", domain.ErrInvalidInput)
	}
	if req.TotalTools < 0 {
		return domain.AIModel{}, fmt.Errorf("%w: total_herramientas must not be negative", domain.ErrInvalidInput)
	}
	now := s.nowFn()
	return s.catalog.CreateAIModel(ctx, domain.AIModel{
		Version:     version,
		FileURL:     strings.TrimSpace(req.FileURL),
		UploadedAt:  &now,
		ChangeNotes: strings.TrimSpace(req.ChangeNotes),
		Active:      true,
		TotalTools:  req.TotalTools,
	})
}

// ListAdministrators returns the whole directory to superadmins and only
// the caller's own entry to admins.
func (s *Service) ListAdministrators(ctx context.Context, principal domain.Principal) ([]domain.Administrator, error) {
	access, err := s.require(ctx, principal, domain.ActionView, domain.ResourceAdministrator)
	if err != nil {
		return nil, err
	}
	if access.Level != domain.AccessSuperadmin {
		return []domain.Administrator{access.Administrator}, nil
	}
	return s.administrators.List(ctx)
}
