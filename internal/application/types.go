package application

import (
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

type Config struct {
	ServiceName      string
	SessionTTL       time.Duration
	IdempotencyTTL   time.Duration
	DefaultListLimit int
	MaxListLimit     int
}

// Access is a principal resolved against the administrator directory.
type Access struct {
	Principal     domain.Principal
	Administrator domain.Administrator
	Level         domain.AccessLevel
}

type SubmitReportRequest struct {
	Type        string     `json:"tipo"`
	Description string     `json:"descripcion"`
	ToolID      *int64     `json:"herramienta_id,omitempty"`
	SubmittedAt *time.Time `json:"fecha_reporte,omitempty"`
}

type ToolOption struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

type IntakeFormView struct {
	Types       []string     `json:"tipos"`
	NoToolLabel string       `json:"sin_herramienta"`
	Tools       []ToolOption `json:"herramientas"`
}

type ExportRequest struct {
	ReportIDs []int64 `json:"reporte_ids"`
	Format    string  `json:"formato"`
}

// File is a downloadable document.
type File struct {
	Kind        domain.ArtifactKind
	Filename    string
	ContentType string
	Payload     []byte
}

type ExportResult struct {
	Format    domain.ExportFormat
	DualReady bool
	File      *File
	Artifacts []domain.GeneratedArtifact
}

type PendingSlotView struct {
	Ready    bool   `json:"listo"`
	Filename string `json:"nombre_archivo,omitempty"`
}

type PendingStatusView struct {
	CSV PendingSlotView `json:"csv"`
	PDF PendingSlotView `json:"pdf"`
}

// Any reports whether at least one slot still holds a file.
func (v PendingStatusView) Any() bool {
	return v.CSV.Ready || v.PDF.Ready
}

type DashboardView struct {
	Known           bool               `json:"conocido"`
	AdministratorID int64              `json:"administrador_id,omitempty"`
	Name            string             `json:"nombre"`
	Email           string             `json:"email"`
	AccessLevel     domain.AccessLevel `json:"nivel_acceso"`
	GroupName       string             `json:"grupo,omitempty"`
	PendingAssigned int64              `json:"reportes_pendientes"`
	TotalAssigned   int64              `json:"reportes_asignados"`
}

type ListReportsQuery struct {
	Status string
	Type   string
	// From and To are calendar days, both inclusive.
	From   *time.Time
	To     *time.Time
	Search string
	Limit  int
	Offset int
}

type CreateToolRequest struct {
	Name                 string `json:"nombre"`
	Category             string `json:"categoria"`
	TechnicalDescription string `json:"descripcion_tecnica"`
	UsageInstructions    string `json:"instrucciones_uso"`
	ReferenceImageURL    string `json:"imagen_referencia_url"`
	AIModelID            *int64 `json:"modelo_ia_id,omitempty"`
}

type CreateAIModelRequest struct {
	Version     string `json:"version"`
	FileURL     string `json:"archivo_url"`
	ChangeNotes string `json:"notas_cambios"`
	TotalTools  int    `json:"total_herramientas"`
}

type UpsertAdministratorRequest struct {
	UID       string
	Email     string
	Name      string
	Superuser bool
}
