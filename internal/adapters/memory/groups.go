package memory

import (
	"context"
	"sort"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

type GroupRepository struct {
	s *store
}

func (r *GroupRepository) UpsertAll(_ context.Context, groups []domain.PermissionGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range groups {
		r.s.groups[g.Name] = g
	}
	return nil
}

func (r *GroupRepository) List(_ context.Context) ([]domain.PermissionGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.PermissionGroup, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
