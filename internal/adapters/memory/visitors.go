package memory

import (
	"context"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

type VisitorRepository struct {
	s *store
}

func (r *VisitorRepository) GetByToken(_ context.Context, token string) (domain.Visitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.visitors[token]
	if !ok {
		return domain.Visitor{}, domain.ErrNotFound
	}
	return v, nil
}

func (r *VisitorRepository) Create(_ context.Context, token string, createdAt time.Time) (domain.Visitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.visitors[token]; ok {
		return domain.Visitor{}, domain.ErrConflict
	}
	v := domain.Visitor{Token: token, Active: true, CreatedAt: createdAt}
	r.s.visitors[token] = v
	return v, nil
}

// Count returns the number of stored visitors.
func (r *VisitorRepository) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.visitors)
}
