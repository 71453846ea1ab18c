package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

const noToolLabel = "--- No aplica (Error general) ---"

// GetOrCreateVisitor resolves the visitor behind a cookie token, minting a
// new token when the presented one is missing or malformed. A concurrent
// create of the same token is resolved by re-reading the winner's row.
func (s *Service) GetOrCreateVisitor(ctx context.Context, token string) (domain.Visitor, error) {
	token = strings.TrimSpace(token)
	if !domain.ValidVisitorToken(token) {
		token = domain.NewVisitorToken()
	}

	visitor, err := s.visitors.GetByToken(ctx, token)
	if err == nil {
		return visitor, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Visitor{}, err
	}

	visitor, err = s.visitors.Create(ctx, token, s.nowFn())
	if err == nil {
		return visitor, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return domain.Visitor{}, err
	}

	visitor, err = s.visitors.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Visitor{}, domain.ErrVisitorUnresolvable
		}
		return domain.Visitor{}, err
	}
	return visitor, nil
}

// IntakeForm lists the choices offered by the report form.
func (s *Service) IntakeForm(ctx context.Context) (IntakeFormView, error) {
	tools, err := s.catalog.ListTools(ctx)
	if err != nil {
		return IntakeFormView{}, err
	}
	view := IntakeFormView{
		Types:       append([]string(nil), domain.ReportTypes...),
		NoToolLabel: noToolLabel,
		Tools:       make([]ToolOption, 0, len(tools)),
	}
	for _, t := range tools {
		view.Tools = append(view.Tools, ToolOption{ID: t.ID, Name: t.Name})
	}
	return view, nil
}

type reportSubmittedEventData struct {
	VisitorToken string `json:"visitor_token"`
	Type         string `json:"type"`
	ToolID       *int64 `json:"tool_id,omitempty"`
	SubmittedAt  string `json:"submitted_at"`
}

// Submit stores a new pending, unassigned report for the visitor.
func (s *Service) Submit(ctx context.Context, visitor domain.Visitor, req SubmitReportRequest) (domain.Report, error) {
	if visitor.Token == "" {
		return domain.Report{}, domain.ErrVisitorUnresolvable
	}
	reportType, err := domain.ValidateReportType(req.Type)
	if err != nil {
		return domain.Report{}, err
	}

	report := domain.Report{
		VisitorToken: visitor.Token,
		Type:         reportType,
		Description:  req.Description,
		Status:       domain.StatusPending,
	}
	if req.ToolID != nil {
		tool, err := s.catalog.GetTool(ctx, *req.ToolID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Report{}, fmt.Errorf("%w: herramienta %d does not exist", domain.ErrInvalidInput, *req.ToolID)
			}
			return domain.Report{}, err
		}
		toolID := tool.ID
		report.ToolID = &toolID
		report.ToolName = tool.Name
	}

	submittedAt := s.nowFn()
	if req.SubmittedAt != nil && !req.SubmittedAt.IsZero() {
		submittedAt = req.SubmittedAt.UTC()
	}
	report.SubmittedAt = &submittedAt

	event := s.newOutboxEvent("report.submitted", visitor.Token, "data.visitor_token", reportSubmittedEventData{
		VisitorToken: visitor.Token,
		Type:         reportType,
		ToolID:       report.ToolID,
		SubmittedAt:  submittedAt.Format(time.RFC3339),
	})
	stored, err := s.reports.CreateWithOutbox(ctx, report, event)
	if err != nil {
		return domain.Report{}, err
	}
	if stored.ToolName == "" {
		stored.ToolName = report.ToolName
	}
	return stored, nil
}
