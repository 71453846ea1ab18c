package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

// VisitorRepository persists anonymous visitor identities.
type VisitorRepository interface {
	GetByToken(ctx context.Context, token string) (domain.Visitor, error)
	// Create returns domain.ErrConflict when the token already exists.
	Create(ctx context.Context, token string, createdAt time.Time) (domain.Visitor, error)
}

// VisibilityScope is the query-shaped form of the access scope.
// None wins over All; with neither set, only unassigned reports and
// reports assigned to AdminID are visible.
type VisibilityScope struct {
	None    bool
	All     bool
	AdminID int64
}

// ReportFilter narrows report listings. Zero values mean "no filter".
type ReportFilter struct {
	Status domain.ReportStatus
	Type   string
	From   *time.Time
	Until  *time.Time // exclusive
	Search string
	Limit  int
	Offset int
}

// ReportRepository owns user report rows.
type ReportRepository interface {
	CreateWithOutbox(ctx context.Context, report domain.Report, event OutboxEvent) (domain.Report, error)
	GetByID(ctx context.Context, id int64) (domain.Report, error)
	List(ctx context.Context, scope VisibilityScope, filter ReportFilter) ([]domain.Report, error)
	ListByIDs(ctx context.Context, scope VisibilityScope, ids []int64) ([]domain.Report, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReportStatus, administratorID int64) (domain.Report, error)
	CountAssigned(ctx context.Context, administratorID int64) (pending int64, total int64, err error)
}

// ExportTxParams is the unit applied atomically when an export succeeds.
type ExportTxParams struct {
	ReportIDs       []int64
	AdministratorID int64
	Artifacts       []domain.GeneratedArtifact
	Events          []OutboxEvent
}

// ArtifactRepository archives generated exports.
type ArtifactRepository interface {
	// ApplyExportTx marks the reports reviewed, assigns the administrator,
	// archives every artifact and enqueues events in one transaction.
	ApplyExportTx(ctx context.Context, params ExportTxParams) ([]domain.GeneratedArtifact, error)
	GetByID(ctx context.Context, id int64) (domain.GeneratedArtifact, error)
	// List omits payloads. administratorID == 0 lists every artifact.
	List(ctx context.Context, administratorID int64, limit, offset int) ([]domain.GeneratedArtifact, error)
}

// UpsertAdministratorParams carries a directory upsert issued by the identity flow.
type UpsertAdministratorParams struct {
	UID          string
	Email        string
	Name         string
	AccessLevel  domain.AccessLevel
	GroupName    string
	Permissions  map[string]bool
	RegisteredAt time.Time
}

// AdministratorDirectory is the persisted administrator directory.
type AdministratorDirectory interface {
	GetByEmail(ctx context.Context, email string) (domain.Administrator, error)
	GetByID(ctx context.Context, id int64) (domain.Administrator, error)
	List(ctx context.Context) ([]domain.Administrator, error)
	// Upsert matches on email first, then uid, and writes the group
	// membership in the same transaction.
	Upsert(ctx context.Context, params UpsertAdministratorParams) (domain.Administrator, error)
	// Remove deletes entries matching email or uid and reports how many went.
	Remove(ctx context.Context, email, uid string) (int64, error)
}

// CatalogRepository owns tools and AI model versions.
type CatalogRepository interface {
	ListTools(ctx context.Context) ([]domain.Tool, error)
	GetTool(ctx context.Context, id int64) (domain.Tool, error)
	CreateTool(ctx context.Context, tool domain.Tool) (domain.Tool, error)
	ListAIModels(ctx context.Context) ([]domain.AIModel, error)
	CreateAIModel(ctx context.Context, model domain.AIModel) (domain.AIModel, error)
	// SeedDefaults creates the default model and tools when missing and
	// returns how many rows were inserted.
	SeedDefaults(ctx context.Context, model domain.AIModel, tools []domain.Tool) (int, error)
}

// GroupRepository persists permission group snapshots.
type GroupRepository interface {
	UpsertAll(ctx context.Context, groups []domain.PermissionGroup) error
	List(ctx context.Context) ([]domain.PermissionGroup, error)
}

// OutboxEvent is the write-side event payload prior to storage.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls the publish-retry workflow for domain events.
type OutboxRepository interface {
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}

// IdempotencyRepository guards mutating requests against replays.
type IdempotencyRepository interface {
	// Reserve returns domain.ErrConflict when the key is already taken.
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, at time.Time) error
	Release(ctx context.Context, key string) error
}
