package domain

import (
	"fmt"
	"strings"
)

// ReportStatus is the triage state of a Report. It only moves forward.
type ReportStatus string

const (
	StatusPending  ReportStatus = "pendiente"
	StatusReviewed ReportStatus = "revisado"
	StatusResolved ReportStatus = "resuelto"
)

var statusRank = map[ReportStatus]int{
	StatusPending:  0,
	StatusReviewed: 1,
	StatusResolved: 2,
}

// ParseStatus accepts the stored form of a status.
func ParseStatus(raw string) (ReportStatus, error) {
	s := ReportStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := statusRank[s]; !ok {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
	return s, nil
}

// CanAdvance reports whether a report may move from s to next.
// Staying in the same state is allowed.
func (s ReportStatus) CanAdvance(next ReportStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		// Legacy rows without a status are treated as pending.
		from = 0
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// Report types accepted by intake.
const (
	TypeDetectionError = "Error de Detección"
	TypeSuggestion     = "Sugerencia"
	TypeAppFailure     = "Falla de App"
)

// ReportTypes lists the accepted report types in form order.
var ReportTypes = []string{TypeDetectionError, TypeSuggestion, TypeAppFailure}

// ValidateReportType rejects anything outside the fixed type set.
func ValidateReportType(raw string) (string, error) {
	for _, t := range ReportTypes {
		if raw == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: tipo must be one of %s", ErrInvalidInput, strings.Join(ReportTypes, ", "))
}

// ArtifactKind is the format of an archived export.
type ArtifactKind string

const (
	KindCSV ArtifactKind = "CSV"
	KindPDF ArtifactKind = "PDF"
)

// ContentType returns the MIME type served for the kind.
func (k ArtifactKind) ContentType() string {
	if k == KindPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Extension returns the file extension without a dot.
func (k ArtifactKind) Extension() string {
	if k == KindPDF {
		return "pdf"
	}
	return "csv"
}

// ArtifactLabel is the stored type label, e.g. "Informe CSV".
func (k ArtifactKind) ArtifactLabel() string {
	return "Informe " + string(k)
}

// KindFromLabel recovers the kind from a stored label; anything mentioning
// PDF is a PDF, the rest are CSV.
func KindFromLabel(label string) ArtifactKind {
	if strings.Contains(strings.ToUpper(label), "PDF") {
		return KindPDF
	}
	return KindCSV
}

// ExportFormat is the format choice of an export request.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatPDF  ExportFormat = "pdf"
	FormatBoth ExportFormat = "ambos"
)

// ParseExportFormat validates an export format choice.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatCSV, FormatPDF, FormatBoth:
		return f, nil
	default:
		return "", fmt.Errorf("%w: formato must be csv, pdf or ambos", ErrInvalidInput)
	}
}

// Kinds returns the artifact kinds the format produces, CSV first.
func (f ExportFormat) Kinds() []ArtifactKind {
	switch f {
	case FormatCSV:
		return []ArtifactKind{KindCSV}
	case FormatPDF:
		return []ArtifactKind{KindPDF}
	case FormatBoth:
		return []ArtifactKind{KindCSV, KindPDF}
	default:
		return nil
	}
}
