package postgres

import (
	"encoding/json"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

func toDomainVisitor(m visitorModel) domain.Visitor {
	return domain.Visitor{Token: m.Token, Active: m.Active, CreatedAt: m.CreatedAt}
}

func toDomainTool(m toolModel) domain.Tool {
	return domain.Tool{
		ID: m.ID, Name: m.Name, Category: m.Category, TechnicalDescription: m.TechnicalDescription,
		UsageInstructions: m.UsageInstructions, ReferenceImageURL: m.ReferenceImageURL, Active: m.Active,
		RegisteredAt: m.RegisteredAt, AIModelID: m.AIModelID,
	}
}

func toDomainAIModel(m aiModelModel) domain.AIModel {
	return domain.AIModel{
		ID: m.ID, Version: m.Version, FileURL: m.FileURL, UploadedAt: m.UploadedAt,
		ChangeNotes: m.ChangeNotes, Active: m.Active, TotalTools: m.TotalTools,
	}
}

func toDomainAdministrator(m administratorModel) domain.Administrator {
	perms := map[string]bool{}
	if m.Permissions != "" {
		_ = json.Unmarshal([]byte(m.Permissions), &perms)
	}
	return domain.Administrator{
		ID: m.ID, UID: m.UID, Email: m.Email, Name: m.Name, RegisteredAt: m.RegisteredAt,
		Permissions: perms, AccessLevel: domain.ParseAccessLevel(m.AccessLevel), GroupName: m.GroupName,
	}
}

func toDomainReport(row userReportRow) domain.Report {
	m := row.userReportModel
	status := domain.ReportStatus(m.Status)
	if status == "" {
		status = domain.StatusPending
	}
	r := domain.Report{
		ID: m.ID, VisitorToken: m.VisitorToken, ToolID: m.ToolID, AdministratorID: m.AdministratorID,
		Type: m.Type, Description: m.Description, SubmittedAt: m.SubmittedAt, Status: status,
	}
	if row.ToolName != nil {
		r.ToolName = *row.ToolName
	}
	return r
}

func toDomainArtifact(m adminReportModel) domain.GeneratedArtifact {
	params := map[string]any{}
	if m.FilterParams != "" {
		_ = json.Unmarshal([]byte(m.FilterParams), &params)
	}
	var adminID int64
	if m.AdministratorID != nil {
		adminID = *m.AdministratorID
	}
	return domain.GeneratedArtifact{
		ID: m.ID, AdministratorID: adminID, Kind: domain.KindFromLabel(m.ReportType), GeneratedAt: m.GeneratedAt,
		FilterParams: params, Period: m.Period, Payload: m.Payload, Filename: m.Filename,
	}
}

func toDomainGroup(m permissionGroupModel) domain.PermissionGroup {
	grants := map[domain.ResourceKind][]domain.Action{}
	if m.Grants != "" {
		_ = json.Unmarshal([]byte(m.Grants), &grants)
	}
	return domain.PermissionGroup{Name: m.Name, Grants: grants, UpdatedAt: m.UpdatedAt}
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return "{}"
	}
	return string(raw)
}
