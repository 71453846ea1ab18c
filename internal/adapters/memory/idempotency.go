package memory

import (
	"context"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

// IdempotencyRepository keeps keys until released; expiry is not enforced.
type IdempotencyRepository struct {
	s *store
}

func (r *IdempotencyRepository) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if row, ok := r.s.idempotency[key]; ok {
		if row.requestHash != requestHash {
			return domain.ErrIdempotencyKeyReused
		}
		return domain.ErrConflict
	}
	r.s.idempotency[key] = idempotencyRow{requestHash: requestHash, expiresAt: expiresAt}
	return nil
}

func (r *IdempotencyRepository) Complete(_ context.Context, key string, responseCode int, _ time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.idempotency[key]
	if !ok {
		return domain.ErrNotFound
	}
	row.responseCode = responseCode
	r.s.idempotency[key] = row
	return nil
}

func (r *IdempotencyRepository) Release(_ context.Context, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.idempotency, key)
	return nil
}
