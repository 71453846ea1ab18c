package postgres

import (
	"github.com/viralforge/tool-feedback-portal/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Visitors       ports.VisitorRepository
	Reports        ports.ReportRepository
	Artifacts      ports.ArtifactRepository
	Administrators ports.AdministratorDirectory
	Catalog        ports.CatalogRepository
	Groups         ports.GroupRepository
	Outbox         ports.OutboxRepository
	Idempotency    ports.IdempotencyRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Visitors:       &visitorRepository{db: db},
		Reports:        &reportRepository{db: db},
		Artifacts:      &artifactRepository{db: db},
		Administrators: &administratorRepository{db: db},
		Catalog:        &catalogRepository{db: db},
		Groups:         &groupRepository{db: db},
		Outbox:         &outboxRepository{db: db},
		Idempotency:    &idempotencyRepository{db: db},
	}
}
