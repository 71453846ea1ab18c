package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

func (s *Service) newOutboxEvent(eventType, partitionKey, partitionKeyPath string, data any) ports.OutboxEvent {
	occurredAt := s.nowFn()
	eventID := uuid.New()
	envelope := map[string]any{
		"event_id":           eventID.String(),
		"event_type":         eventType,
		"occurred_at":        occurredAt.Format(time.RFC3339),
		"source_service":     s.cfg.ServiceName,
		"schema_version":     "1.0",
		"partition_key_path": partitionKeyPath,
		"partition_key":      partitionKey,
		"data":               data,
	}
	payload, _ := json.Marshal(envelope)
	return ports.OutboxEvent{
		EventID:      eventID,
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      payload,
		OccurredAt:   occurredAt,
	}
}

func serviceLogger() *slog.Logger {
	return slog.Default().With(
		"service", "tool-feedback-portal",
		"module", "application",
		"layer", "service",
	)
}

// scopedIdempotencyKey namespaces a client key per administrator.
func scopedIdempotencyKey(administratorID int64, key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%d:%s", administratorID, key)
}

func hashRequest(v any) string {
	raw, _ := json.Marshal(v)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (s *Service) reserveIdempotency(ctx context.Context, key string, request any) error {
	if key == "" || s.idempotency == nil {
		return nil
	}
	err := s.idempotency.Reserve(ctx, key, hashRequest(request), s.nowFn().Add(s.cfg.IdempotencyTTL))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrIdempotencyKeyReused):
		return err
	case errors.Is(err, domain.ErrConflict):
		return fmt.Errorf("%w: key %q already used", domain.ErrIdempotencyConflict, key)
	default:
		return fmt.Errorf("reserve idempotency key: %w", err)
	}
}

// completeIdempotency records the outcome. A failure is logged only: the
// operation it guards has already been applied.
func (s *Service) completeIdempotency(ctx context.Context, operation, key string, code int) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Complete(ctx, key, code, s.nowFn()); err != nil {
		serviceLogger().ErrorContext(ctx, "failed to complete idempotency key",
			"operation", operation,
			"outcome", "failure",
			"idempotency_key", key,
			"response_code", code,
			"error", err.Error(),
		)
	}
}

func (s *Service) releaseIdempotency(ctx context.Context, operation, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Release(ctx, key); err != nil {
		serviceLogger().ErrorContext(ctx, "failed to release idempotency key",
			"operation", operation,
			"outcome", "failure",
			"idempotency_key", key,
			"error", err.Error(),
		)
	}
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultListLimit
	}
	if limit > s.cfg.MaxListLimit {
		return s.cfg.MaxListLimit
	}
	return limit
}

// exportFilename names an export file after its generation minute.
func exportFilename(kind domain.ArtifactKind, at time.Time) string {
	return fmt.Sprintf("reporte_admin_%s.%s", at.UTC().Format("20060102_1504"), kind.Extension())
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
