package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

// store holds every table behind one lock so multi-table writes are atomic.
type store struct {
	mu sync.Mutex

	visitors       map[string]domain.Visitor
	reports        map[int64]domain.Report
	artifacts      map[int64]domain.GeneratedArtifact
	administrators map[int64]domain.Administrator
	tools          map[int64]domain.Tool
	models         map[int64]domain.AIModel
	groups         map[string]domain.PermissionGroup
	outbox         map[uuid.UUID]ports.OutboxRecord
	idempotency    map[string]idempotencyRow

	nextReport, nextArtifact, nextAdmin, nextTool, nextModel int64
}

type idempotencyRow struct {
	requestHash  string
	expiresAt    time.Time
	responseCode int
}

type Repositories struct {
	Visitors       *VisitorRepository
	Reports        *ReportRepository
	Artifacts      *ArtifactRepository
	Administrators *AdministratorRepository
	Catalog        *CatalogRepository
	Groups         *GroupRepository
	Outbox         *OutboxRepository
	Idempotency    *IdempotencyRepository
}

func NewRepositories() *Repositories {
	s := &store{
		visitors:       map[string]domain.Visitor{},
		reports:        map[int64]domain.Report{},
		artifacts:      map[int64]domain.GeneratedArtifact{},
		administrators: map[int64]domain.Administrator{},
		tools:          map[int64]domain.Tool{},
		models:         map[int64]domain.AIModel{},
		groups:         map[string]domain.PermissionGroup{},
		outbox:         map[uuid.UUID]ports.OutboxRecord{},
		idempotency:    map[string]idempotencyRow{},
	}
	return &Repositories{
		Visitors:       &VisitorRepository{s: s},
		Reports:        &ReportRepository{s: s},
		Artifacts:      &ArtifactRepository{s: s},
		Administrators: &AdministratorRepository{s: s},
		Catalog:        &CatalogRepository{s: s},
		Groups:         &GroupRepository{s: s},
		Outbox:         &OutboxRepository{s: s},
		Idempotency:    &IdempotencyRepository{s: s},
	}
}

func (s *store) enqueueLocked(events ...ports.OutboxEvent) {
	for _, e := range events {
		id := e.EventID
		if id == uuid.Nil {
			id = uuid.New()
		}
		s.outbox[id] = ports.OutboxRecord{
			OutboxID:     id,
			EventType:    e.EventType,
			PartitionKey: e.PartitionKey,
			Payload:      append([]byte(nil), e.Payload...),
			CreatedAt:    e.OccurredAt,
		}
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
