package document

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

func sampleReports(n int) []domain.Report {
	submitted := time.Date(2025, 3, 9, 14, 5, 7, 0, time.UTC)
	toolID := int64(7)
	out := make([]domain.Report, 0, n)
	for i := 0; i < n; i++ {
		r := domain.Report{
			ID:           int64(i + 1),
			VisitorToken: "anon-visitor",
			Type:         domain.TypeSuggestion,
			Description:  "linea uno\nlinea dos",
			SubmittedAt:  &submitted,
			Status:       domain.StatusPending,
		}
		if i%2 == 0 {
			r.ToolID = &toolID
			r.ToolName = "Martillo"
		}
		out = append(out, r)
	}
	return out
}

func TestCSVRendererHeaderAndRows(t *testing.T) {
	t.Parallel()

	data, err := NewCSVRenderer().Render(sampleReports(3), time.Now())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], "|") != strings.Join(csvHeader, "|") {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	first := rows[1]
	if first[0] != "1" || first[1] != "2025-03-09 14:05:07" || first[4] != "Martillo" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if first[6] != "linea uno linea dos" {
		t.Fatalf("expected flattened description, got %q", first[6])
	}
	if rows[2][4] != "N/A" {
		t.Fatalf("expected N/A tool, got %q", rows[2][4])
	}
	if strings.Count(string(data), "\n") != 4 {
		t.Fatalf("expected 4 physical lines, got %q", string(data))
	}
}

func TestCSVRendererEmptyInput(t *testing.T) {
	t.Parallel()

	data, err := NewCSVRenderer().Render(nil, time.Now())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(string(data)) != strings.Join(csvHeader, ",") {
		t.Fatalf("expected header only, got %q", string(data))
	}
}

func TestCSVRendererDeterministic(t *testing.T) {
	t.Parallel()

	reports := sampleReports(5)
	a, _ := NewCSVRenderer().Render(reports, time.Now())
	b, _ := NewCSVRenderer().Render(reports, time.Now().Add(time.Hour))
	if !bytes.Equal(a, b) {
		t.Fatalf("expected identical output")
	}
}

func TestFlattenDescription(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"a\nb":       "a b",
		"a\r\nb":     "a b",
		"  padded\n": "padded",
		"":           "",
	}
	for in, want := range cases {
		if got := flattenDescription(in); got != want {
			t.Fatalf("flattenDescription(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPDFRendererProducesDocument(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC)
	data, err := NewPDFRenderer().Render(sampleReports(2), at)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected pdf magic, got %q", data[:8])
	}
}

func TestPDFRendererEmptyInput(t *testing.T) {
	t.Parallel()

	data, err := NewPDFRenderer().Render(nil, time.Now())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected pdf output for empty input")
	}
}

func TestPDFRendererDeterministic(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC)
	reports := sampleReports(4)
	a, err := NewPDFRenderer().Render(reports, at)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := NewPDFRenderer().Render(reports, at)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected byte-identical pdf for identical input")
	}
}

func TestPDFRendererPaginates(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC)
	short, err := NewPDFRenderer().Render(sampleReports(linesPerFirstPage()-1), at)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	long, err := NewPDFRenderer().Render(sampleReports(linesPerFirstPage()+5), at)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n := pageCount(short); n != 1 {
		t.Fatalf("expected one page, got %d", n)
	}
	if n := pageCount(long); n != 2 {
		t.Fatalf("expected two pages, got %d", n)
	}
}

func TestPDFRendererWritesLinesInOrder(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC)
	data, err := NewPDFRenderer().Render(sampleReports(2), at)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	first := bytes.Index(data, []byte("(ID 1 |"))
	second := bytes.Index(data, []byte("(ID 2 |"))
	if first < 0 || second < 0 {
		t.Fatalf("expected both report lines in document: first=%d second=%d", first, second)
	}
	if first > second {
		t.Fatalf("unexpected line order: first=%d second=%d", first, second)
	}
	if !bytes.Contains(data, []byte("(Generado: 2025-03-09 14:05:00)")) {
		t.Fatalf("expected generation line in document")
	}
}

func TestPDFRendererTruncatesLongLines(t *testing.T) {
	t.Parallel()

	r := domain.Report{
		ID:           1,
		Type:         domain.TypeSuggestion,
		Status:       domain.StatusPending,
		VisitorToken: strings.Repeat("x", 80),
	}
	line := []rune(reportLine(r))
	if len(line) <= pdfMaxLineRunes {
		t.Fatalf("fixture line too short: %d", len(line))
	}
	data, err := NewPDFRenderer().Render([]domain.Report{r}, time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "(" + string(line[:pdfMaxLineRunes]) + ")"
	if !bytes.Contains(data, []byte(want)) {
		t.Fatalf("expected line cut to %d runes", pdfMaxLineRunes)
	}
	if bytes.Contains(data, []byte(string(line[:pdfMaxLineRunes+1]))) {
		t.Fatalf("expected characters past %d runes to be dropped", pdfMaxLineRunes)
	}
}

func TestPDFRendererEmptyInputKeepsTitle(t *testing.T) {
	t.Parallel()

	data, err := NewPDFRenderer().Render(nil, time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Contains(data, []byte("("+pdfTitle+")")) {
		t.Fatalf("expected title line in empty document")
	}
	if bytes.Contains(data, []byte("(ID ")) {
		t.Fatalf("expected no report lines in empty document")
	}
	if n := pageCount(data); n != 1 {
		t.Fatalf("expected one page, got %d", n)
	}
	if bytes.Contains(data, []byte("FlateDecode")) {
		t.Fatalf("expected uncompressed streams")
	}
}

func linesPerFirstPage() int {
	return int((pdfFirstLineY-pdfBottomCutoff)/pdfLineStep) + 1
}

func pageCount(doc []byte) int {
	return bytes.Count(doc, []byte("/Type /Page")) - bytes.Count(doc, []byte("/Type /Pages"))
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("ñ", 130)
	if got := truncateRunes(long, pdfMaxLineRunes); len([]rune(got)) != pdfMaxLineRunes {
		t.Fatalf("expected %d runes, got %d", pdfMaxLineRunes, len([]rune(got)))
	}
	if got := truncateRunes("corto", pdfMaxLineRunes); got != "corto" {
		t.Fatalf("short line changed: %q", got)
	}
}
