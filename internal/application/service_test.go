package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/adapters/document"
	"github.com/viralforge/tool-feedback-portal/internal/adapters/memory"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

var fixedNow = time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC)

type testEnv struct {
	svc      *Service
	repos    *memory.Repositories
	sessions *memory.SessionStore
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	repos := memory.NewRepositories()
	sessions := memory.NewSessionStore()
	svc := NewService(Dependencies{
		Config:         Config{SessionTTL: time.Hour},
		Visitors:       repos.Visitors,
		Reports:        repos.Reports,
		Artifacts:      repos.Artifacts,
		Administrators: repos.Administrators,
		Catalog:        repos.Catalog,
		Groups:         repos.Groups,
		Idempotency:    repos.Idempotency,
		Sessions:       sessions,
		Renderers:      []ports.DocumentRenderer{document.NewCSVRenderer(), document.NewPDFRenderer()},
	})
	svc.nowFn = func() time.Time { return fixedNow }
	return testEnv{svc: svc, repos: repos, sessions: sessions}
}

func (e testEnv) addAdmin(t *testing.T, email string, superuser bool) (domain.Administrator, domain.Principal) {
	t.Helper()
	admin, err := e.svc.UpsertAdministrator(context.Background(), UpsertAdministratorRequest{
		UID:       "uid-" + email,
		Email:     email,
		Name:      email,
		Superuser: superuser,
	})
	if err != nil {
		t.Fatalf("upsert administrator: %v", err)
	}
	return admin, domain.Principal{
		Subject:   admin.UID,
		Email:     email,
		Superuser: superuser,
		SessionID: "session-" + email,
		ExpiresAt: fixedNow.Add(30 * time.Minute),
	}
}

func (e testEnv) addReport(t *testing.T, assignee *int64, minutesAgo int) domain.Report {
	t.Helper()
	submitted := fixedNow.Add(-time.Duration(minutesAgo) * time.Minute)
	if _, err := e.repos.Visitors.Create(context.Background(), "anon-fixture", fixedNow); err != nil && !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("create visitor: %v", err)
	}
	return e.repos.Reports.Put(domain.Report{
		VisitorToken:    "anon-fixture",
		AdministratorID: assignee,
		Type:            domain.TypeSuggestion,
		Description:     "linea uno\nlinea dos",
		SubmittedAt:     &submitted,
		Status:          domain.StatusPending,
	})
}

func TestSubmitRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)
	visitor, err := env.svc.GetOrCreateVisitor(context.Background(), "")
	if err != nil {
		t.Fatalf("get or create visitor: %v", err)
	}
	for _, reportType := range []string{"", "sugerencia", "Otro", "Error de Deteccion"} {
		_, err := env.svc.Submit(context.Background(), visitor, SubmitReportRequest{Type: reportType})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("type %q: expected invalid input, got %v", reportType, err)
		}
	}
}

func TestSubmitFromNewVisitorStoresPendingReport(t *testing.T) {
	env := newTestEnv(t)
	visitor, err := env.svc.GetOrCreateVisitor(context.Background(), "")
	if err != nil {
		t.Fatalf("get or create visitor: %v", err)
	}
	if !strings.HasPrefix(visitor.Token, "anon-") || env.repos.Visitors.Count() != 1 {
		t.Fatalf("expected a fresh persisted visitor, got %+v", visitor)
	}

	report, err := env.svc.Submit(context.Background(), visitor, SubmitReportRequest{
		Type:        domain.TypeDetectionError,
		Description: "",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if report.Status != domain.StatusPending || report.AdministratorID != nil {
		t.Fatalf("unexpected report state: %+v", report)
	}
	if report.SubmittedAt == nil || !report.SubmittedAt.Equal(fixedNow) {
		t.Fatalf("expected submitted_at=now, got %v", report.SubmittedAt)
	}
	events := env.repos.Outbox.Pending()
	if len(events) != 1 || events[0].EventType != "report.submitted" {
		t.Fatalf("expected one report.submitted event, got %+v", events)
	}
}

func TestSubmitRejectsUnknownTool(t *testing.T) {
	env := newTestEnv(t)
	visitor, _ := env.svc.GetOrCreateVisitor(context.Background(), "")
	missing := int64(99)
	_, err := env.svc.Submit(context.Background(), visitor, SubmitReportRequest{Type: domain.TypeSuggestion, ToolID: &missing})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown tool, got %v", err)
	}
}

func TestGetOrCreateVisitorReusesValidToken(t *testing.T) {
	env := newTestEnv(t)
	first, err := env.svc.GetOrCreateVisitor(context.Background(), "")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	again, err := env.svc.GetOrCreateVisitor(context.Background(), first.Token)
	if err != nil {
		t.Fatalf("again: %v", err)
	}
	if again.Token != first.Token || env.repos.Visitors.Count() != 1 {
		t.Fatalf("expected token reuse, got first=%s again=%s", first.Token, again.Token)
	}

	replaced, err := env.svc.GetOrCreateVisitor(context.Background(), "bad token <script>")
	if err != nil {
		t.Fatalf("malformed: %v", err)
	}
	if replaced.Token == "bad token <script>" || !domain.ValidVisitorToken(replaced.Token) {
		t.Fatalf("expected malformed token to be replaced, got %q", replaced.Token)
	}
}

type racingVisitors struct {
	gets       int
	afterRace  *domain.Visitor
	createErr  error
	fetchAfter error
}

func (r *racingVisitors) GetByToken(_ context.Context, token string) (domain.Visitor, error) {
	r.gets++
	if r.gets == 1 {
		return domain.Visitor{}, domain.ErrNotFound
	}
	if r.afterRace != nil {
		return *r.afterRace, nil
	}
	return domain.Visitor{}, r.fetchAfter
}

func (r *racingVisitors) Create(context.Context, string, time.Time) (domain.Visitor, error) {
	return domain.Visitor{}, r.createErr
}

func TestGetOrCreateVisitorResolvesCreateRace(t *testing.T) {
	winner := domain.Visitor{Token: "anon-winner", Active: true}
	svc := NewService(Dependencies{Visitors: &racingVisitors{afterRace: &winner, createErr: domain.ErrConflict}})
	got, err := svc.GetOrCreateVisitor(context.Background(), "anon-winner")
	if err != nil {
		t.Fatalf("expected race to resolve, got %v", err)
	}
	if got.Token != winner.Token {
		t.Fatalf("unexpected visitor: %+v", got)
	}

	svc = NewService(Dependencies{Visitors: &racingVisitors{createErr: domain.ErrConflict, fetchAfter: domain.ErrNotFound}})
	if _, err := svc.GetOrCreateVisitor(context.Background(), "anon-lost"); !errors.Is(err, domain.ErrVisitorUnresolvable) {
		t.Fatalf("expected unresolvable visitor, got %v", err)
	}
}

func TestFilterVisibleByAccessLevel(t *testing.T) {
	env := newTestEnv(t)
	admin, adminPrincipal := env.addAdmin(t, "admin@example.com", false)
	other, _ := env.addAdmin(t, "other@example.com", false)
	_, superPrincipal := env.addAdmin(t, "root@example.com", true)

	unassigned := env.addReport(t, nil, 1)
	mine := env.addReport(t, &admin.ID, 2)
	theirs := env.addReport(t, &other.ID, 3)
	all := []domain.Report{unassigned, mine, theirs}

	stranger, err := env.svc.ResolveAccess(context.Background(), domain.Principal{Email: "nobody@example.com", Superuser: true})
	if err != nil {
		t.Fatalf("resolve stranger: %v", err)
	}
	if got := FilterVisible(stranger, all); len(got) != 0 {
		t.Fatalf("expected no visibility without directory entry, got %d", len(got))
	}

	adminAccess, _ := env.svc.ResolveAccess(context.Background(), adminPrincipal)
	got := FilterVisible(adminAccess, all)
	if len(got) != 2 || got[0].ID != unassigned.ID || got[1].ID != mine.ID {
		t.Fatalf("unexpected admin visibility: %+v", got)
	}

	superAccess, _ := env.svc.ResolveAccess(context.Background(), superPrincipal)
	if got := FilterVisible(superAccess, all); len(got) != 3 {
		t.Fatalf("expected superadmin to see all, got %d", len(got))
	}
}

func TestParseAccessLevelFailsClosed(t *testing.T) {
	access := Access{Level: domain.ParseAccessLevel("root")}
	if access.Known() || !access.Scope().None {
		t.Fatalf("expected unknown level to resolve to no access: %+v", access.Scope())
	}
}

func TestExportDualFormatHandshake(t *testing.T) {
	env := newTestEnv(t)
	admin, principal := env.addAdmin(t, "admin@example.com", false)
	r1 := env.addReport(t, nil, 1)
	r2 := env.addReport(t, nil, 2)

	result, err := env.svc.Export(context.Background(), principal, ExportRequest{ReportIDs: []int64{r1.ID, r2.ID}, Format: "ambos"}, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !result.DualReady || result.File != nil || len(result.Artifacts) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if env.repos.Artifacts.Count() != 2 {
		t.Fatalf("expected 2 archived artifacts, got %d", env.repos.Artifacts.Count())
	}
	for _, id := range []int64{r1.ID, r2.ID} {
		row, _ := env.repos.Reports.GetByID(context.Background(), id)
		if row.Status != domain.StatusReviewed || row.AdministratorID == nil || *row.AdministratorID != admin.ID {
			t.Fatalf("report %d not reviewed by admin: %+v", id, row)
		}
	}

	status, err := env.svc.PendingStatus(context.Background(), principal)
	if err != nil {
		t.Fatalf("pending status: %v", err)
	}
	if !status.CSV.Ready || !status.PDF.Ready || status.CSV.Filename != "reporte_admin_20250309_1405.csv" {
		t.Fatalf("expected both slots ready, got %+v", status)
	}

	file, err := env.svc.TakePending(context.Background(), principal, domain.KindCSV)
	if err != nil {
		t.Fatalf("take csv: %v", err)
	}
	if file.ContentType != "text/csv" || len(file.Payload) == 0 {
		t.Fatalf("unexpected csv file: %+v", file)
	}
	status, _ = env.svc.PendingStatus(context.Background(), principal)
	if status.CSV.Ready || !status.PDF.Ready {
		t.Fatalf("expected only the csv slot to be consumed, got %+v", status)
	}
	if _, err := env.svc.TakePending(context.Background(), principal, domain.KindCSV); !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected second csv fetch to be not ready, got %v", err)
	}
	pdf, err := env.svc.TakePending(context.Background(), principal, domain.KindPDF)
	if err != nil || !bytes.HasPrefix(pdf.Payload, []byte("%PDF")) {
		t.Fatalf("take pdf: %v", err)
	}
}

func TestExportEmptySelectionChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	_, principal := env.addAdmin(t, "admin@example.com", false)
	report := env.addReport(t, nil, 1)

	for _, format := range []string{"csv", "pdf", "ambos", "xml"} {
		_, err := env.svc.Export(context.Background(), principal, ExportRequest{Format: format}, "")
		var rejection *ExportRejection
		if !errors.As(err, &rejection) || rejection.Reason != ReasonValidation || !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("format %s: expected validation rejection, got %v", format, err)
		}
	}
	if env.repos.Artifacts.Count() != 0 {
		t.Fatalf("expected no artifacts")
	}
	row, _ := env.repos.Reports.GetByID(context.Background(), report.ID)
	if row.Status != domain.StatusPending || row.AdministratorID != nil {
		t.Fatalf("expected report untouched, got %+v", row)
	}
}

func TestExportSingleCSV(t *testing.T) {
	env := newTestEnv(t)
	admin, principal := env.addAdmin(t, "admin@example.com", false)
	ids := []int64{env.addReport(t, nil, 3).ID, env.addReport(t, nil, 2).ID, env.addReport(t, &admin.ID, 1).ID}

	result, err := env.svc.Export(context.Background(), principal, ExportRequest{ReportIDs: ids, Format: "CSV "}, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.File == nil || result.File.Filename != "reporte_admin_20250309_1405.csv" || result.File.ContentType != "text/csv" {
		t.Fatalf("unexpected file: %+v", result.File)
	}
	if env.repos.Artifacts.Count() != 1 || result.Artifacts[0].Kind != domain.KindCSV {
		t.Fatalf("expected exactly one csv artifact, got %+v", result.Artifacts)
	}
	rows, err := csv.NewReader(bytes.NewReader(result.File.Payload)).ReadAll()
	if err != nil || len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d (%v)", len(rows), err)
	}
	for _, id := range ids {
		row, _ := env.repos.Reports.GetByID(context.Background(), id)
		if row.Status != domain.StatusReviewed || *row.AdministratorID != admin.ID {
			t.Fatalf("report %d not reviewed by admin: %+v", id, row)
		}
	}
	archived, err := env.svc.DownloadArtifact(context.Background(), principal, result.Artifacts[0].ID)
	if err != nil || !bytes.Equal(archived.Payload, result.File.Payload) {
		t.Fatalf("expected archived payload to match response body: %v", err)
	}
}

func TestExportRequiresAccessLevel(t *testing.T) {
	env := newTestEnv(t)
	report := env.addReport(t, nil, 1)
	_, err := env.svc.Export(context.Background(), domain.Principal{Email: "ghost@example.com", SessionID: "s"}, ExportRequest{ReportIDs: []int64{report.ID}, Format: "csv"}, "")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestExportOnlyCoversVisibleReports(t *testing.T) {
	env := newTestEnv(t)
	_, principal := env.addAdmin(t, "admin@example.com", false)
	other, _ := env.addAdmin(t, "other@example.com", false)
	theirs := env.addReport(t, &other.ID, 1)

	_, err := env.svc.Export(context.Background(), principal, ExportRequest{ReportIDs: []int64{theirs.ID, 999}, Format: "pdf"}, "")
	var rejection *ExportRejection
	if !errors.As(err, &rejection) || rejection.Reason != ReasonNoArtifact {
		t.Fatalf("expected no-artifact rejection, got %v", err)
	}
	row, _ := env.repos.Reports.GetByID(context.Background(), theirs.ID)
	if *row.AdministratorID != other.ID || row.Status != domain.StatusPending {
		t.Fatalf("expected report of another admin untouched, got %+v", row)
	}
}

func TestExportIdempotencyKeyRejectsReplay(t *testing.T) {
	env := newTestEnv(t)
	_, principal := env.addAdmin(t, "admin@example.com", false)
	report := env.addReport(t, nil, 1)
	req := ExportRequest{ReportIDs: []int64{report.ID}, Format: "ambos"}

	if _, err := env.svc.Export(context.Background(), principal, req, "idem-1"); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if _, err := env.svc.Export(context.Background(), principal, req, "idem-1"); !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
	if env.repos.Artifacts.Count() != 2 {
		t.Fatalf("expected replay not to archive again, got %d", env.repos.Artifacts.Count())
	}
}

func TestExportReleasesIdempotencyKeyOnRejection(t *testing.T) {
	env := newTestEnv(t)
	_, principal := env.addAdmin(t, "admin@example.com", false)
	if _, err := env.svc.Export(context.Background(), principal, ExportRequest{ReportIDs: []int64{42}, Format: "csv"}, "idem-2"); err == nil {
		t.Fatalf("expected rejection for missing report")
	}
	report := env.addReport(t, nil, 1)
	if _, err := env.svc.Export(context.Background(), principal, ExportRequest{ReportIDs: []int64{report.ID}, Format: "csv"}, "idem-2"); err != nil {
		t.Fatalf("expected key to be reusable after rejection, got %v", err)
	}
}

func TestExportIdempotencyKeysAreScopedPerAdministrator(t *testing.T) {
	env := newTestEnv(t)
	_, first := env.addAdmin(t, "a@example.com", false)
	_, second := env.addAdmin(t, "b@example.com", false)
	mine := env.addReport(t, nil, 2)
	theirs := env.addReport(t, nil, 1)

	if _, err := env.svc.Export(context.Background(), first, ExportRequest{ReportIDs: []int64{mine.ID}, Format: "csv"}, "export-1"); err != nil {
		t.Fatalf("first admin export: %v", err)
	}
	if _, err := env.svc.Export(context.Background(), second, ExportRequest{ReportIDs: []int64{theirs.ID}, Format: "csv"}, "export-1"); err != nil {
		t.Fatalf("expected another admin's export with the same key to pass, got %v", err)
	}
	if env.repos.Artifacts.Count() != 2 {
		t.Fatalf("unexpected artifact count: got=%d want=2", env.repos.Artifacts.Count())
	}
}

func TestExportIdempotencyKeyReusedWithOtherRequest(t *testing.T) {
	env := newTestEnv(t)
	_, principal := env.addAdmin(t, "admin@example.com", false)
	a := env.addReport(t, nil, 2)
	b := env.addReport(t, nil, 1)

	if _, err := env.svc.Export(context.Background(), principal, ExportRequest{ReportIDs: []int64{a.ID}, Format: "csv"}, "idem-3"); err != nil {
		t.Fatalf("first export: %v", err)
	}
	_, err := env.svc.Export(context.Background(), principal, ExportRequest{ReportIDs: []int64{b.ID}, Format: "csv"}, "idem-3")
	if !errors.Is(err, domain.ErrIdempotencyKeyReused) {
		t.Fatalf("expected reused-key error, got %v", err)
	}
	if errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("reused key must not read as a replay: %v", err)
	}
	row, _ := env.repos.Reports.GetByID(context.Background(), b.ID)
	if row.Status != domain.StatusPending {
		t.Fatalf("expected second report untouched, got %s", row.Status)
	}
}

// failingSlotStore fails writes to one slot name.
type failingSlotStore struct {
	*memory.SessionStore
	failKey string
}

func (f *failingSlotStore) Set(ctx context.Context, sessionID, key string, value []byte, ttl time.Duration) error {
	if key == f.failKey {
		return errors.New("session store unavailable")
	}
	return f.SessionStore.Set(ctx, sessionID, key, value, ttl)
}

func TestDualExportSlotFailureKeepsKeyAndClearsSlots(t *testing.T) {
	env := newTestEnv(t)
	_, principal := env.addAdmin(t, "admin@example.com", false)
	report := env.addReport(t, nil, 1)
	sessions := &failingSlotStore{SessionStore: env.sessions, failKey: "temp_pdf"}
	env.svc.sessions = sessions
	req := ExportRequest{ReportIDs: []int64{report.ID}, Format: "ambos"}

	if _, err := env.svc.Export(context.Background(), principal, req, "idem-4"); err == nil {
		t.Fatalf("expected slot write failure")
	}
	csvSlot, err := env.svc.PendingStatus(context.Background(), principal)
	if err != nil {
		t.Fatalf("pending status: %v", err)
	}
	if csvSlot.CSV.Ready || csvSlot.PDF.Ready {
		t.Fatalf("expected no half-written slots, got %+v", csvSlot)
	}
	if _, err := env.svc.Export(context.Background(), principal, req, "idem-4"); !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("expected retry with the same key to be refused, got %v", err)
	}
	if env.repos.Artifacts.Count() != 2 {
		t.Fatalf("expected artifacts archived once: got=%d want=2", env.repos.Artifacts.Count())
	}
}

type failingCompleteRepo struct {
	ports.IdempotencyRepository
}

func (failingCompleteRepo) Complete(context.Context, string, int, time.Time) error {
	return errors.New("idempotency store unavailable")
}

func TestExportLogsIdempotencyCompletionFailure(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	env := newTestEnv(t)
	env.svc.idempotency = failingCompleteRepo{IdempotencyRepository: env.repos.Idempotency}
	_, principal := env.addAdmin(t, "admin@example.com", false)
	report := env.addReport(t, nil, 1)

	if _, err := env.svc.Export(context.Background(), principal, ExportRequest{ReportIDs: []int64{report.ID}, Format: "csv"}, "idem-5"); err != nil {
		t.Fatalf("export should succeed after commit, got %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, "failed to complete idempotency key") || !strings.Contains(line, "idempotency store unavailable") {
		t.Fatalf("expected completion failure to be logged, got %q", line)
	}
}

func TestDownloadArtifactOutcomes(t *testing.T) {
	env := newTestEnv(t)
	admin, principal := env.addAdmin(t, "admin@example.com", false)
	other, _ := env.addAdmin(t, "other@example.com", false)
	_, superPrincipal := env.addAdmin(t, "root@example.com", true)

	empty := env.repos.Artifacts.Put(domain.GeneratedArtifact{AdministratorID: admin.ID, Kind: domain.KindPDF, GeneratedAt: fixedNow})
	foreign := env.repos.Artifacts.Put(domain.GeneratedArtifact{AdministratorID: other.ID, Kind: domain.KindCSV, GeneratedAt: fixedNow, Payload: []byte("x")})
	unnamed := env.repos.Artifacts.Put(domain.GeneratedArtifact{AdministratorID: admin.ID, Kind: domain.KindPDF, GeneratedAt: fixedNow, Payload: []byte("%PDF")})

	if _, err := env.svc.DownloadArtifact(context.Background(), principal, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := env.svc.DownloadArtifact(context.Background(), principal, empty.ID); !errors.Is(err, domain.ErrNoContent) {
		t.Fatalf("expected no content, got %v", err)
	}
	if _, err := env.svc.DownloadArtifact(context.Background(), principal, foreign.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := env.svc.DownloadArtifact(context.Background(), superPrincipal, foreign.ID); err != nil {
		t.Fatalf("expected superadmin download, got %v", err)
	}
	file, err := env.svc.DownloadArtifact(context.Background(), principal, unnamed.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if file.Filename != "reporte_3.pdf" || file.ContentType != "application/pdf" {
		t.Fatalf("unexpected fallback file: %+v", file)
	}
}

func TestSlotTTLFollowsSession(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		expires time.Time
		want    time.Duration
		err     error
	}{
		{expires: time.Time{}, want: time.Hour},
		{expires: fixedNow.Add(10 * time.Minute), want: 10 * time.Minute},
		{expires: fixedNow.Add(5 * time.Hour), want: time.Hour},
		{expires: fixedNow.Add(-time.Second), err: domain.ErrTokenExpired},
	}
	for _, tc := range cases {
		got, err := env.svc.slotTTL(domain.Principal{ExpiresAt: tc.expires})
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("unexpected ttl: got=%s want=%s err=%v", got, tc.want, err)
		}
	}
}

func TestUpdateReportStatus(t *testing.T) {
	env := newTestEnv(t)
	admin, principal := env.addAdmin(t, "admin@example.com", false)
	other, _ := env.addAdmin(t, "other@example.com", false)
	open := env.addReport(t, nil, 1)
	foreign := env.addReport(t, &other.ID, 2)

	updated, err := env.svc.UpdateReportStatus(context.Background(), principal, open.ID, "revisado")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusReviewed || *updated.AdministratorID != admin.ID {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if _, err := env.svc.UpdateReportStatus(context.Background(), principal, open.ID, "pendiente"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected backwards move to fail, got %v", err)
	}
	if _, err := env.svc.UpdateReportStatus(context.Background(), principal, foreign.ID, "resuelto"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden on foreign report, got %v", err)
	}
	if _, err := env.svc.UpdateReportStatus(context.Background(), principal, open.ID, "cerrado"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestListReportsFilters(t *testing.T) {
	env := newTestEnv(t)
	_, principal := env.addAdmin(t, "admin@example.com", false)
	today := env.addReport(t, nil, 10)
	old := env.addReport(t, nil, 3*24*60)

	day := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	got, err := env.svc.ListReports(context.Background(), principal, ListReportsQuery{From: &day, To: &day})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != today.ID {
		t.Fatalf("expected only today's report, got %+v", got)
	}

	got, _ = env.svc.ListReports(context.Background(), principal, ListReportsQuery{})
	if len(got) != 2 || got[0].ID != today.ID || got[1].ID != old.ID {
		t.Fatalf("expected newest first, got %+v", got)
	}

	got, _ = env.svc.ListReports(context.Background(), principal, ListReportsQuery{Search: "FIXTURE", Status: "pendiente"})
	if len(got) != 2 {
		t.Fatalf("expected search over visitor token, got %d", len(got))
	}

	if _, err := env.svc.ListReports(context.Background(), principal, ListReportsQuery{Type: "Otro"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid type filter, got %v", err)
	}

	got, err = env.svc.ListReports(context.Background(), domain.Principal{Email: "ghost@example.com"}, ListReportsQuery{})
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty list for unknown principal, got %d (%v)", len(got), err)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	admin, principal := env.addAdmin(t, "admin@example.com", false)
	env.addReport(t, &admin.ID, 1)
	done := env.addReport(t, &admin.ID, 2)
	if _, err := env.svc.UpdateReportStatus(context.Background(), principal, done.ID, "resuelto"); err != nil {
		t.Fatalf("update: %v", err)
	}

	view, err := env.svc.Dashboard(context.Background(), principal)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if !view.Known || view.PendingAssigned != 1 || view.TotalAssigned != 2 || view.GroupName != "Administradores" {
		t.Fatalf("unexpected dashboard: %+v", view)
	}

	view, err = env.svc.Dashboard(context.Background(), domain.Principal{Email: "Ghost@Example.com"})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if view.Known || view.Name != unknownAdministratorName || view.Email != "ghost@example.com" {
		t.Fatalf("unexpected placeholder dashboard: %+v", view)
	}
}

func TestCatalogGuardedByPolicy(t *testing.T) {
	env := newTestEnv(t)
	_, adminPrincipal := env.addAdmin(t, "admin@example.com", false)
	_, superPrincipal := env.addAdmin(t, "root@example.com", true)

	if _, err := env.svc.CreateTool(context.Background(), adminPrincipal, CreateToolRequest{Name: "Sierra"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected admin tool creation to be forbidden, got %v", err)
	}
	tool, err := env.svc.CreateTool(context.Background(), superPrincipal, CreateToolRequest{Name: " Sierra ", Category: "Corte"})
	if err != nil {
		t.Fatalf("create tool: %v", err)
	}
	if tool.Name != "Sierra" || !tool.Active {
		t.Fatalf("unexpected tool: %+v", tool)
	}
	tools, err := env.svc.ListTools(context.Background(), adminPrincipal)
	if err != nil || len(tools) != 1 {
		t.Fatalf("expected admin to list tools, got %d (%v)", len(tools), err)
	}
	if _, err := env.svc.CreateAIModel(context.Background(), superPrincipal, CreateAIModelRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected version to be required, got %v", err)
	}
}

func TestListArtifactsAndAdministratorsScoped(t *testing.T) {
	env := newTestEnv(t)
	admin, principal := env.addAdmin(t, "admin@example.com", false)
	other, _ := env.addAdmin(t, "other@example.com", false)
	_, superPrincipal := env.addAdmin(t, "root@example.com", true)
	env.repos.Artifacts.Put(domain.GeneratedArtifact{AdministratorID: admin.ID, Kind: domain.KindCSV, GeneratedAt: fixedNow, Payload: []byte("a")})
	env.repos.Artifacts.Put(domain.GeneratedArtifact{AdministratorID: other.ID, Kind: domain.KindCSV, GeneratedAt: fixedNow, Payload: []byte("b")})

	own, err := env.svc.ListArtifacts(context.Background(), principal, 0, 0)
	if err != nil || len(own) != 1 || own[0].Payload != nil {
		t.Fatalf("expected one payload-less artifact, got %+v (%v)", own, err)
	}
	all, _ := env.svc.ListArtifacts(context.Background(), superPrincipal, 0, 0)
	if len(all) != 2 {
		t.Fatalf("expected superadmin to list all artifacts, got %d", len(all))
	}

	admins, _ := env.svc.ListAdministrators(context.Background(), principal)
	if len(admins) != 1 || admins[0].ID != admin.ID {
		t.Fatalf("expected admin to see only self, got %+v", admins)
	}
	admins, _ = env.svc.ListAdministrators(context.Background(), superPrincipal)
	if len(admins) != 3 {
		t.Fatalf("expected full directory, got %d", len(admins))
	}
}

func TestDirectoryUpsertAndRemove(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.svc.UpsertAdministrator(context.Background(), UpsertAdministratorRequest{UID: "auto-7", Email: "Ana@Example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created.AccessLevel != domain.AccessAdmin || created.GroupName != "Administradores" || created.Email != "ana@example.com" {
		t.Fatalf("unexpected admin: %+v", created)
	}

	promoted, err := env.svc.UpsertAdministrator(context.Background(), UpsertAdministratorRequest{UID: "auto-7", Email: "ana@example.com", Name: "Ana P", Superuser: true})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.ID != created.ID || promoted.AccessLevel != domain.AccessSuperadmin || promoted.GroupName != "SuperAdministradores" {
		t.Fatalf("expected in-place promotion, got %+v", promoted)
	}

	placeholder, err := env.svc.UpsertAdministrator(context.Background(), UpsertAdministratorRequest{UID: "auto-8"})
	if err != nil || placeholder.Email != "auto-8@sin_email.com" {
		t.Fatalf("expected placeholder email, got %+v (%v)", placeholder, err)
	}

	if _, err := env.svc.UpsertAdministrator(context.Background(), UpsertAdministratorRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	removed, err := env.svc.RemoveAdministrator(context.Background(), "ANA@example.com", "")
	if err != nil || removed != 1 {
		t.Fatalf("expected one removal, got %d (%v)", removed, err)
	}
	if _, err := env.svc.LookupAdministrator(context.Background(), "ana@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected removed admin to be gone, got %v", err)
	}
}

func TestBootstrapGroupsAndSeedAreIdempotent(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 2; i++ {
		if _, err := env.svc.BootstrapGroups(context.Background()); err != nil {
			t.Fatalf("bootstrap: %v", err)
		}
	}
	groups, _ := env.repos.Groups.List(context.Background())
	if len(groups) != 2 || groups[0].Name != "Administradores" || groups[1].Name != "SuperAdministradores" {
		t.Fatalf("unexpected groups: %+v", groups)
	}

	first, err := env.svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if first.CatalogRows != 6 || !first.AdministratorAdded {
		t.Fatalf("unexpected first seed: %+v", first)
	}
	second, err := env.svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if second.CatalogRows != 0 || second.AdministratorAdded {
		t.Fatalf("expected reseed to be a no-op, got %+v", second)
	}
	form, err := env.svc.IntakeForm(context.Background())
	if err != nil || len(form.Tools) != 5 || form.Tools[0].Name != "Alicates" {
		t.Fatalf("unexpected intake form: %+v (%v)", form, err)
	}
}
