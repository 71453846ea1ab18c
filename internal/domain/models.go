package domain

import "time"

// Visitor is an anonymous report submitter identified by an opaque token.
type Visitor struct {
	Token     string
	Active    bool
	CreatedAt time.Time
}

// Tool is a catalogued tool the recognition model can identify.
type Tool struct {
	ID                   int64
	Name                 string
	Category             string
	TechnicalDescription string
	UsageInstructions    string
	ReferenceImageURL    string
	Active               bool
	RegisteredAt         *time.Time
	AIModelID            *int64
}

// AIModel is a published version of the recognition model.
type AIModel struct {
	ID          int64
	Version     string
	FileURL     string
	UploadedAt  *time.Time
	ChangeNotes string
	Active      bool
	TotalTools  int
}

// Administrator is a directory entry for an authenticated operator.
type Administrator struct {
	ID           int64
	UID          string
	Email        string
	Name         string
	RegisteredAt *time.Time
	Permissions  map[string]bool
	AccessLevel  AccessLevel
	GroupName    string
}

// Report is a visitor-submitted piece of feedback.
type Report struct {
	ID              int64
	VisitorToken    string
	ToolID          *int64
	ToolName        string
	AdministratorID *int64
	Type            string
	Description     string
	SubmittedAt     *time.Time
	Status          ReportStatus
}

// GeneratedArtifact is the archived, immutable output of one export in one format.
type GeneratedArtifact struct {
	ID              int64
	AdministratorID int64
	Kind            ArtifactKind
	GeneratedAt     time.Time
	FilterParams    map[string]any
	Period          string
	Payload         []byte
	Filename        string
}

// PermissionGroup is the persisted snapshot of one configured group.
type PermissionGroup struct {
	Name      string
	Grants    map[ResourceKind][]Action
	UpdatedAt time.Time
}
