package application

import (
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

type Service struct {
	cfg            Config
	policy         domain.Policy
	visitors       ports.VisitorRepository
	reports        ports.ReportRepository
	artifacts      ports.ArtifactRepository
	administrators ports.AdministratorDirectory
	catalog        ports.CatalogRepository
	groups         ports.GroupRepository
	idempotency    ports.IdempotencyRepository
	sessions       ports.SessionStore
	renderers      map[domain.ArtifactKind]ports.DocumentRenderer
	nowFn          func() time.Time
}

type Dependencies struct {
	Config         Config
	Policy         domain.Policy
	Visitors       ports.VisitorRepository
	Reports        ports.ReportRepository
	Artifacts      ports.ArtifactRepository
	Administrators ports.AdministratorDirectory
	Catalog        ports.CatalogRepository
	Groups         ports.GroupRepository
	Idempotency    ports.IdempotencyRepository
	Sessions       ports.SessionStore
	Renderers      []ports.DocumentRenderer
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "tool-feedback-portal"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.DefaultListLimit <= 0 {
		cfg.DefaultListLimit = 100
	}
	if cfg.MaxListLimit <= 0 {
		cfg.MaxListLimit = 500
	}

	policy := deps.Policy
	if len(policy.Groups()) == 0 {
		policy = domain.DefaultPolicy()
	}

	renderers := make(map[domain.ArtifactKind]ports.DocumentRenderer, len(deps.Renderers))
	for _, r := range deps.Renderers {
		renderers[r.Kind()] = r
	}

	return &Service{
		cfg:            cfg,
		policy:         policy,
		visitors:       deps.Visitors,
		reports:        deps.Reports,
		artifacts:      deps.Artifacts,
		administrators: deps.Administrators,
		catalog:        deps.Catalog,
		groups:         deps.Groups,
		idempotency:    deps.Idempotency,
		sessions:       deps.Sessions,
		renderers:      renderers,
		nowFn:          func() time.Time { return time.Now().UTC() },
	}
}

// Policy exposes the authorization policy the service was built with.
func (s *Service) Policy() domain.Policy {
	return s.policy
}
