package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

type OutboxRepository struct {
	s *store
}

func (r *OutboxRepository) ClaimUnpublished(_ context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	candidates := make([]ports.OutboxRecord, 0, len(r.s.outbox))
	for _, row := range r.s.outbox {
		if row.PublishedAt != nil || row.DeadLetteredAt != nil {
			continue
		}
		if row.ClaimUntil != nil && row.ClaimUntil.After(now) {
			continue
		}
		candidates = append(candidates, row)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CreatedAt.Before(candidates[j].CreatedAt) })
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	for i := range candidates {
		token := claimToken
		until := claimUntil
		candidates[i].ClaimToken = &token
		candidates[i].ClaimUntil = &until
		r.s.outbox[candidates[i].OutboxID] = candidates[i]
	}
	return candidates, nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	return r.update(outboxID, claimToken, func(row *ports.OutboxRecord) {
		row.PublishedAt = &at
	})
}

func (r *OutboxRepository) MarkFailed(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, _ time.Time) error {
	return r.update(outboxID, claimToken, func(row *ports.OutboxRecord) {
		row.RetryCount++
		row.LastError = &errMsg
	})
}

func (r *OutboxRepository) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.update(outboxID, claimToken, func(row *ports.OutboxRecord) {
		row.DeadLetteredAt = &at
		row.LastError = &errMsg
	})
}

func (r *OutboxRepository) update(outboxID uuid.UUID, claimToken string, apply func(*ports.OutboxRecord)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.outbox[outboxID]
	if !ok || row.ClaimToken == nil || *row.ClaimToken != claimToken {
		return domain.ErrNotFound
	}
	apply(&row)
	row.ClaimToken = nil
	row.ClaimUntil = nil
	r.s.outbox[outboxID] = row
	return nil
}

// Pending returns unpublished events ordered by creation time.
func (r *OutboxRepository) Pending() []ports.OutboxRecord {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]ports.OutboxRecord, 0, len(r.s.outbox))
	for _, row := range r.s.outbox {
		if row.PublishedAt == nil && row.DeadLetteredAt == nil {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
