package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

// Export rejection reasons surfaced to clients.
const (
	ReasonValidation = "validation_error"
	ReasonNoArtifact = "no_archivo_generado_o_invalido"
)

const defaultPeriod = "actual"

// Outcome codes recorded against an export's idempotency key.
const (
	exportOutcomeFile     = 200
	exportOutcomeDeferred = 303
	exportOutcomeNoSlots  = 500
)

// ExportRejection is an export refused before any state change.
type ExportRejection struct {
	Reason string
	Detail string
}

func (e *ExportRejection) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", domain.ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", domain.ErrInvalidInput, e.Reason, e.Detail)
}

func (e *ExportRejection) Unwrap() error { return domain.ErrInvalidInput }

type pendingSlot struct {
	Filename string `json:"filename"`
	Payload  []byte `json:"data"`
}

func slotKey(kind domain.ArtifactKind) string {
	return "temp_" + kind.Extension()
}

type artifactGeneratedEventData struct {
	AdministratorID int64   `json:"administrator_id"`
	Kind            string  `json:"kind"`
	Filename        string  `json:"filename"`
	ReportIDs       []int64 `json:"report_ids"`
	GeneratedAt     string  `json:"generated_at"`
}

// Export renders the requested reports, marks them reviewed by the acting
// administrator and archives one artifact per format in a single
// transaction. Single-format exports return the file; "ambos" stores both
// files as read-once session slots.
func (s *Service) Export(ctx context.Context, principal domain.Principal, req ExportRequest, idempotencyKey string) (ExportResult, error) {
	ids := dedupeIDs(req.ReportIDs)
	if len(ids) == 0 {
		return ExportResult{}, &ExportRejection{Reason: ReasonValidation, Detail: "reporte_ids is required"}
	}
	format, err := domain.ParseExportFormat(req.Format)
	if err != nil {
		return ExportResult{}, &ExportRejection{Reason: ReasonValidation, Detail: err.Error()}
	}

	access, err := s.require(ctx, principal, domain.ActionAdd, domain.ResourceAdminReport)
	if err != nil {
		return ExportResult{}, err
	}
	if !s.policy.Can(access.Level, domain.ActionChange, domain.ResourceUserReport) {
		return ExportResult{}, domain.ErrForbidden
	}

	var sessionID string
	var slotTTL time.Duration
	if format == domain.FormatBoth {
		if sessionID, err = sessionKey(principal); err != nil {
			return ExportResult{}, err
		}
		if slotTTL, err = s.slotTTL(principal); err != nil {
			return ExportResult{}, err
		}
	}

	idemKey := scopedIdempotencyKey(access.Administrator.ID, idempotencyKey)
	if err := s.reserveIdempotency(ctx, idemKey, map[string]any{
		"administrator_id": access.Administrator.ID,
		"reporte_ids":      ids,
		"formato":          format,
	}); err != nil {
		return ExportResult{}, err
	}
	done := false
	defer func() {
		if !done {
			s.releaseIdempotency(ctx, "export_reports", idemKey)
		}
	}()

	reports, err := s.reports.ListByIDs(ctx, access.Scope(), ids)
	if err != nil {
		return ExportResult{}, err
	}
	if len(reports) == 0 {
		return ExportResult{}, &ExportRejection{Reason: ReasonNoArtifact, Detail: "no visible reports matched"}
	}
	matched := make([]int64, 0, len(reports))
	for _, r := range reports {
		matched = append(matched, r.ID)
	}

	generatedAt := s.nowFn()
	params := ports.ExportTxParams{ReportIDs: matched, AdministratorID: access.Administrator.ID}
	for _, kind := range format.Kinds() {
		renderer, ok := s.renderers[kind]
		if !ok {
			return ExportResult{}, fmt.Errorf("no renderer registered for %s", kind)
		}
		payload, err := renderer.Render(reports, generatedAt)
		if err != nil {
			return ExportResult{}, fmt.Errorf("render %s: %w", kind, err)
		}
		artifact := domain.GeneratedArtifact{
			AdministratorID: access.Administrator.ID,
			Kind:            kind,
			GeneratedAt:     generatedAt,
			FilterParams: map[string]any{
				"reporte_ids": matched,
				"formato":     string(format),
			},
			Period:   defaultPeriod,
			Payload:  payload,
			Filename: exportFilename(kind, generatedAt),
		}
		params.Artifacts = append(params.Artifacts, artifact)
		params.Events = append(params.Events, s.newOutboxEvent(
			"artifact.generated",
			strconv.FormatInt(access.Administrator.ID, 10),
			"data.administrator_id",
			artifactGeneratedEventData{
				AdministratorID: access.Administrator.ID,
				Kind:            string(kind),
				Filename:        artifact.Filename,
				ReportIDs:       matched,
				GeneratedAt:     generatedAt.Format(time.RFC3339),
			},
		))
	}

	archived, err := s.artifacts.ApplyExportTx(ctx, params)
	if err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{Format: format, Artifacts: archived}
	// Committed: the key is completed on every path from here.
	done = true
	code := exportOutcomeFile
	if format == domain.FormatBoth {
		if err := s.stashPending(ctx, sessionID, params.Artifacts, slotTTL); err != nil {
			s.completeIdempotency(ctx, "export_reports", idemKey, exportOutcomeNoSlots)
			return ExportResult{}, err
		}
		result.DualReady = true
		code = exportOutcomeDeferred
	} else {
		a := params.Artifacts[0]
		result.File = &File{Kind: a.Kind, Filename: a.Filename, ContentType: a.Kind.ContentType(), Payload: a.Payload}
	}

	s.completeIdempotency(ctx, "export_reports", idemKey, code)
	return result, nil
}

// stashPending writes one session slot per artifact. On failure the slots
// already written are removed so the session never holds half a pair.
func (s *Service) stashPending(ctx context.Context, sessionID string, artifacts []domain.GeneratedArtifact, ttl time.Duration) error {
	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		raw, _ := json.Marshal(pendingSlot{Filename: a.Filename, Payload: a.Payload})
		key := slotKey(a.Kind)
		if err := s.sessions.Set(ctx, sessionID, key, raw, ttl); err != nil {
			for _, k := range written {
				if _, popErr := s.sessions.Pop(ctx, sessionID, k); popErr != nil {
					serviceLogger().ErrorContext(ctx, "failed to clear pending slot",
						"operation", "export_reports",
						"outcome", "failure",
						"slot", k,
						"error", popErr.Error(),
					)
				}
			}
			return fmt.Errorf("store pending %s: %w", a.Kind, err)
		}
		written = append(written, key)
	}
	return nil
}

// PendingStatus reports which dual-export slots of the session still hold a file.
func (s *Service) PendingStatus(ctx context.Context, principal domain.Principal) (PendingStatusView, error) {
	sessionID, err := sessionKey(principal)
	if err != nil {
		return PendingStatusView{}, err
	}
	var view PendingStatusView
	for _, kind := range domain.FormatBoth.Kinds() {
		raw, err := s.sessions.Get(ctx, sessionID, slotKey(kind))
		if err != nil {
			return PendingStatusView{}, err
		}
		slot := PendingSlotView{}
		if raw != nil {
			var stored pendingSlot
			if err := json.Unmarshal(raw, &stored); err == nil && len(stored.Payload) > 0 {
				slot = PendingSlotView{Ready: true, Filename: stored.Filename}
			}
		}
		if kind == domain.KindPDF {
			view.PDF = slot
		} else {
			view.CSV = slot
		}
	}
	return view, nil
}

// TakePending consumes one session slot. The read and delete are atomic,
// so a slot is served at most once.
func (s *Service) TakePending(ctx context.Context, principal domain.Principal, kind domain.ArtifactKind) (File, error) {
	sessionID, err := sessionKey(principal)
	if err != nil {
		return File{}, err
	}
	raw, err := s.sessions.Pop(ctx, sessionID, slotKey(kind))
	if err != nil {
		return File{}, err
	}
	if raw == nil {
		return File{}, domain.ErrNotReady
	}
	var stored pendingSlot
	if err := json.Unmarshal(raw, &stored); err != nil || len(stored.Payload) == 0 || stored.Filename == "" {
		return File{}, domain.ErrNotReady
	}
	return File{Kind: kind, Filename: stored.Filename, ContentType: kind.ContentType(), Payload: stored.Payload}, nil
}

// DownloadArtifact serves an archived export. A missing artifact and an
// artifact without payload are reported differently.
func (s *Service) DownloadArtifact(ctx context.Context, principal domain.Principal, id int64) (File, error) {
	access, err := s.requireKnown(ctx, principal)
	if err != nil {
		return File{}, err
	}
	artifact, err := s.artifacts.GetByID(ctx, id)
	if err != nil {
		return File{}, err
	}
	if !s.policy.CanViewArtifact(access.Administrator, artifact) {
		return File{}, domain.ErrForbidden
	}
	if len(artifact.Payload) == 0 {
		return File{}, domain.ErrNoContent
	}
	filename := artifact.Filename
	if filename == "" {
		filename = fmt.Sprintf("reporte_%d.%s", artifact.ID, artifact.Kind.Extension())
	}
	return File{Kind: artifact.Kind, Filename: filename, ContentType: artifact.Kind.ContentType(), Payload: artifact.Payload}, nil
}

func sessionKey(principal domain.Principal) (string, error) {
	if principal.SessionID != "" {
		return principal.SessionID, nil
	}
	if principal.Subject != "" {
		return "sub:" + principal.Subject, nil
	}
	return "", domain.ErrUnauthorized
}

// slotTTL binds pending slots to the remaining life of the session.
func (s *Service) slotTTL(principal domain.Principal) (time.Duration, error) {
	if principal.ExpiresAt.IsZero() {
		return s.cfg.SessionTTL, nil
	}
	remaining := principal.ExpiresAt.Sub(s.nowFn())
	if remaining <= 0 {
		return 0, domain.ErrTokenExpired
	}
	if remaining > s.cfg.SessionTTL {
		return s.cfg.SessionTTL, nil
	}
	return remaining, nil
}
