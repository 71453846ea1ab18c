package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

// Layout in PostScript points, bottom-left origin.
const (
	pdfMarginX      = 50.0
	pdfTitleY       = 800.0
	pdfSubtitleY    = 785.0
	pdfFirstLineY   = 760.0
	pdfLineStep     = 15.0
	pdfBottomCutoff = 100.0
	pdfFontSize     = 12.0
	pdfMaxLineRunes = 110

	pdfTitle = "Informe Administrativo - Reportes de Usuario"
)

// PDFRenderer renders reports as a paginated A4 text listing.
// Document dates are pinned to the generation time and streams are left
// uncompressed, so identical input yields identical bytes.
type PDFRenderer struct{}

func NewPDFRenderer() PDFRenderer { return PDFRenderer{} }

func (PDFRenderer) Kind() domain.ArtifactKind { return domain.KindPDF }

func (PDFRenderer) Render(reports []domain.Report, generatedAt time.Time) ([]byte, error) {
	generatedAt = generatedAt.UTC()

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(pdfTitle, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()

	draw := func(y float64, text string) {
		pdf.Text(pdfMarginX, pageHeight-y, tr(text))
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", pdfFontSize)
	draw(pdfTitleY, pdfTitle)
	draw(pdfSubtitleY, "Generado: "+generatedAt.Format(timestampLayout))

	y := pdfFirstLineY
	for _, r := range reports {
		draw(y, truncateRunes(reportLine(r), pdfMaxLineRunes))
		y -= pdfLineStep
		if y < pdfBottomCutoff {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", pdfFontSize)
			y = pdfTitleY
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func reportLine(r domain.Report) string {
	return fmt.Sprintf("ID %d | Tipo: %s | Estado: %s | Usuario: %s", r.ID, r.Type, r.Status, r.VisitorToken)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
