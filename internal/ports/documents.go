package ports

import (
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

// DocumentRenderer turns an ordered report sequence into file bytes.
// Implementations are pure functions of their input.
type DocumentRenderer interface {
	Kind() domain.ArtifactKind
	Render(reports []domain.Report, generatedAt time.Time) ([]byte, error)
}
