package postgres

import (
	"time"

	"github.com/google/uuid"
)

type visitorModel struct {
	Token     string    `gorm:"column:token;primaryKey"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (visitorModel) TableName() string { return "visitors" }

type aiModelModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	Version     string     `gorm:"column:version"`
	FileURL     string     `gorm:"column:file_url"`
	UploadedAt  *time.Time `gorm:"column:uploaded_at"`
	ChangeNotes string     `gorm:"column:change_notes"`
	Active      bool       `gorm:"column:active"`
	TotalTools  int        `gorm:"column:total_tools"`
}

func (aiModelModel) TableName() string { return "ai_models" }

type toolModel struct {
	ID                   int64      `gorm:"column:id;primaryKey"`
	Name                 string     `gorm:"column:name"`
	Category             string     `gorm:"column:category"`
	TechnicalDescription string     `gorm:"column:technical_description"`
	UsageInstructions    string     `gorm:"column:usage_instructions"`
	ReferenceImageURL    string     `gorm:"column:reference_image_url"`
	Active               bool       `gorm:"column:active"`
	RegisteredAt         *time.Time `gorm:"column:registered_at"`
	AIModelID            *int64     `gorm:"column:ai_model_id"`
}

func (toolModel) TableName() string { return "tools" }

type administratorModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	UID          string     `gorm:"column:uid"`
	Email        string     `gorm:"column:email"`
	Name         string     `gorm:"column:name"`
	RegisteredAt *time.Time `gorm:"column:registered_at"`
	Permissions  string     `gorm:"column:permissions;type:jsonb"`
	AccessLevel  string     `gorm:"column:access_level"`
	GroupName    string     `gorm:"column:group_name"`
}

func (administratorModel) TableName() string { return "administrators" }

type permissionGroupModel struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Grants    string    `gorm:"column:grants;type:jsonb"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (permissionGroupModel) TableName() string { return "permission_groups" }

type userReportModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	VisitorToken    string     `gorm:"column:visitor_token"`
	ToolID          *int64     `gorm:"column:tool_id"`
	AdministratorID *int64     `gorm:"column:administrator_id"`
	Type            string     `gorm:"column:type"`
	Description     string     `gorm:"column:description"`
	SubmittedAt     *time.Time `gorm:"column:submitted_at"`
	Status          string     `gorm:"column:status"`
}

func (userReportModel) TableName() string { return "user_reports" }

// userReportRow is a report joined with its tool name.
type userReportRow struct {
	userReportModel `gorm:"embedded"`
	ToolName        *string `gorm:"column:tool_name"`
}

type adminReportModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	AdministratorID *int64    `gorm:"column:administrator_id"`
	ReportType      string    `gorm:"column:report_type"`
	GeneratedAt     time.Time `gorm:"column:generated_at"`
	FilterParams    string    `gorm:"column:filter_params;type:jsonb"`
	Period          string    `gorm:"column:period"`
	Payload         []byte    `gorm:"column:payload"`
	Filename        string    `gorm:"column:filename"`
}

func (adminReportModel) TableName() string { return "admin_reports" }

type portalOutboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (portalOutboxModel) TableName() string { return "portal_outbox" }

type portalIdempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	Status         string    `gorm:"column:status"`
	ResponseCode   *int      `gorm:"column:response_code"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (portalIdempotencyModel) TableName() string { return "portal_idempotency" }
