package http

import (
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

type reportDTO struct {
	ID              int64      `json:"id"`
	VisitorToken    string     `json:"usuario_uid"`
	Type            string     `json:"tipo"`
	Description     string     `json:"descripcion"`
	Status          string     `json:"estado"`
	ToolID          *int64     `json:"herramienta_id,omitempty"`
	ToolName        string     `json:"herramienta,omitempty"`
	AdministratorID *int64     `json:"administrador_id,omitempty"`
	SubmittedAt     *time.Time `json:"fecha_reporte,omitempty"`
}

func toReportDTO(r domain.Report) reportDTO {
	return reportDTO{
		ID:              r.ID,
		VisitorToken:    r.VisitorToken,
		Type:            r.Type,
		Description:     r.Description,
		Status:          string(r.Status),
		ToolID:          r.ToolID,
		ToolName:        r.ToolName,
		AdministratorID: r.AdministratorID,
		SubmittedAt:     r.SubmittedAt,
	}
}

func toReportDTOs(reports []domain.Report) []reportDTO {
	out := make([]reportDTO, 0, len(reports))
	for _, r := range reports {
		out = append(out, toReportDTO(r))
	}
	return out
}

type artifactDTO struct {
	ID              int64          `json:"id"`
	AdministratorID int64          `json:"administrador_id"`
	Kind            string         `json:"tipo_reporte"`
	Filename        string         `json:"nombre_archivo"`
	GeneratedAt     time.Time      `json:"fecha_generacion"`
	Period          string         `json:"periodo"`
	FilterParams    map[string]any `json:"parametros_filtro"`
	HasContent      bool           `json:"tiene_contenido"`
}

func toArtifactDTOs(artifacts []domain.GeneratedArtifact) []artifactDTO {
	out := make([]artifactDTO, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, artifactDTO{
			ID:              a.ID,
			AdministratorID: a.AdministratorID,
			Kind:            a.Kind.ArtifactLabel(),
			Filename:        a.Filename,
			GeneratedAt:     a.GeneratedAt,
			Period:          a.Period,
			FilterParams:    a.FilterParams,
			HasContent:      len(a.Payload) > 0,
		})
	}
	return out
}

type toolDTO struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"nombre"`
	Category             string     `json:"categoria"`
	TechnicalDescription string     `json:"descripcion_tecnica"`
	UsageInstructions    string     `json:"instrucciones_uso"`
	ReferenceImageURL    string     `json:"imagen_referencia_url"`
	Active               bool       `json:"activa"`
	RegisteredAt         *time.Time `json:"fecha_registro,omitempty"`
	AIModelID            *int64     `json:"modelo_ia_id,omitempty"`
}

func toToolDTO(t domain.Tool) toolDTO {
	return toolDTO{
		ID:                   t.ID,
		Name:                 t.Name,
		Category:             t.Category,
		TechnicalDescription: t.TechnicalDescription,
		UsageInstructions:    t.UsageInstructions,
		ReferenceImageURL:    t.ReferenceImageURL,
		Active:               t.Active,
		RegisteredAt:         t.RegisteredAt,
		AIModelID:            t.AIModelID,
	}
}

type aiModelDTO struct {
	ID          int64      `json:"id"`
	Version     string     `json:"version"`
	FileURL     string     `json:"archivo_url"`
	UploadedAt  *time.Time `json:"fecha_subida,omitempty"`
	ChangeNotes string     `json:"notas_cambios"`
	Active      bool       `json:"activo"`
	TotalTools  int        `json:"total_herramientas"`
}

func toAIModelDTO(m domain.AIModel) aiModelDTO {
	return aiModelDTO{
		ID:          m.ID,
		Version:     m.Version,
		FileURL:     m.FileURL,
		UploadedAt:  m.UploadedAt,
		ChangeNotes: m.ChangeNotes,
		Active:      m.Active,
		TotalTools:  m.TotalTools,
	}
}

type administratorDTO struct {
	ID           int64      `json:"id"`
	UID          string     `json:"uid"`
	Email        string     `json:"email"`
	Name         string     `json:"nombre"`
	AccessLevel  string     `json:"nivel_acceso"`
	GroupName    string     `json:"grupo,omitempty"`
	RegisteredAt *time.Time `json:"fecha_registro,omitempty"`
}

func toAdministratorDTO(a domain.Administrator) administratorDTO {
	return administratorDTO{
		ID:           a.ID,
		UID:          a.UID,
		Email:        a.Email,
		Name:         a.Name,
		AccessLevel:  string(a.AccessLevel),
		GroupName:    a.GroupName,
		RegisteredAt: a.RegisteredAt,
	}
}
