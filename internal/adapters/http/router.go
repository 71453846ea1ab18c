package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/tool-feedback-portal/internal/application"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

// Options tunes cookie behaviour and readiness probing.
type Options struct {
	VisitorCookieTTL time.Duration
	CookieSecure     bool
	// Ready is consulted by /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
}

// Handler is the HTTP adapter entrypoint for portal use-cases.
type Handler struct {
	service  *application.Service
	verifier ports.PrincipalVerifier
	opts     Options
}

func NewHandler(service *application.Service, verifier ports.PrincipalVerifier, opts Options) *Handler {
	if opts.VisitorCookieTTL <= 0 {
		opts.VisitorCookieTTL = 365 * 24 * time.Hour
	}
	return &Handler{service: service, verifier: verifier, opts: opts}
}

// NewRouter registers the public intake routes and the authenticated
// administration routes.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/", handler.landing)
	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Get("/reportar-error/", handler.intakeForm)
	r.Post("/reportar-error/", handler.submitReport)

	r.Group(func(r chi.Router) {
		r.Use(handler.authMiddleware)

		r.Get("/dashboard/", handler.dashboard)

		r.Get("/gestionar-reportes/", handler.listReports)
		r.Post("/gestionar-reportes/", handler.exportReports)
		r.Patch("/gestionar-reportes/{id}", handler.updateReportStatus)

		r.Get("/descarga-csv-temp/", handler.takePendingCSV)
		r.Get("/descarga-pdf-temp/", handler.takePendingPDF)
		r.Get("/descargar-bd/{id}/", handler.downloadArtifact)
		r.Get("/informes/", handler.listArtifacts)

		r.Get("/herramientas/", handler.listTools)
		r.Post("/herramientas/", handler.createTool)
		r.Get("/modelos-ia/", handler.listAIModels)
		r.Post("/modelos-ia/", handler.createAIModel)
		r.Get("/administradores/", handler.listAdministrators)
	})

	return r
}
