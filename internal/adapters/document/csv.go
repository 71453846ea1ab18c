package document

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

var csvHeader = []string{"ID", "Fecha Reporte", "Tipo", "Estado", "Herramienta", "Usuario UID", "Descripción"}

// CSVRenderer renders reports as a comma-separated table with a header row.
type CSVRenderer struct{}

func NewCSVRenderer() CSVRenderer { return CSVRenderer{} }

func (CSVRenderer) Kind() domain.ArtifactKind { return domain.KindCSV }

// Render ignores generatedAt; the table carries no generation metadata.
func (CSVRenderer) Render(reports []domain.Report, _ time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range reports {
		if err := w.Write(csvRow(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRow(r domain.Report) []string {
	submitted := ""
	if r.SubmittedAt != nil {
		submitted = r.SubmittedAt.UTC().Format(timestampLayout)
	}
	tool := "N/A"
	if r.ToolID != nil && r.ToolName != "" {
		tool = r.ToolName
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		submitted,
		r.Type,
		string(r.Status),
		tool,
		r.VisitorToken,
		flattenDescription(r.Description),
	}
}

func flattenDescription(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
