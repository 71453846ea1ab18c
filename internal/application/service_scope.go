package application

import (
	"context"
	"errors"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

// ResolveAccess looks the principal up in the administrator directory by
// normalized email. A missing entry is not an error; it resolves to
// AccessNone.
func (s *Service) ResolveAccess(ctx context.Context, principal domain.Principal) (Access, error) {
	access := Access{Principal: principal, Level: domain.AccessNone}
	email := principal.NormalizedEmail()
	if email == "" {
		return access, nil
	}
	admin, err := s.administrators.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return access, nil
		}
		return Access{}, err
	}
	access.Administrator = admin
	access.Level = domain.ParseAccessLevel(string(admin.AccessLevel))
	return access, nil
}

// Known reports whether the principal holds any access level.
func (a Access) Known() bool {
	return a.Level == domain.AccessAdmin || a.Level == domain.AccessSuperadmin
}

// Scope is the query-shaped form of FilterVisible.
func (a Access) Scope() ports.VisibilityScope {
	switch a.Level {
	case domain.AccessSuperadmin:
		return ports.VisibilityScope{All: true}
	case domain.AccessAdmin:
		return ports.VisibilityScope{AdminID: a.Administrator.ID}
	default:
		return ports.VisibilityScope{None: true}
	}
}

// FilterVisible returns the reports the resolved principal may see,
// preserving order.
func FilterVisible(access Access, reports []domain.Report) []domain.Report {
	return FilterScope(access.Scope(), reports)
}

// FilterScope applies a visibility scope to an in-memory report list.
func FilterScope(scope ports.VisibilityScope, reports []domain.Report) []domain.Report {
	out := make([]domain.Report, 0, len(reports))
	if scope.None {
		return out
	}
	for _, r := range reports {
		if scope.All || r.AdministratorID == nil || *r.AdministratorID == scope.AdminID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) requireKnown(ctx context.Context, principal domain.Principal) (Access, error) {
	access, err := s.ResolveAccess(ctx, principal)
	if err != nil {
		return Access{}, err
	}
	if !access.Known() {
		return Access{}, domain.ErrForbidden
	}
	return access, nil
}

func (s *Service) require(ctx context.Context, principal domain.Principal, action domain.Action, resource domain.ResourceKind) (Access, error) {
	access, err := s.requireKnown(ctx, principal)
	if err != nil {
		return Access{}, err
	}
	if !s.policy.Can(access.Level, action, resource) {
		return Access{}, domain.ErrForbidden
	}
	return access, nil
}
