package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/viralforge/tool-feedback-portal/internal/application"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

const visitorCookieName = "user_report_id"

// resolveVisitor reads or mints the visitor cookie and refreshes it on the response.
func (h *Handler) resolveVisitor(w http.ResponseWriter, r *http.Request) (domain.Visitor, error) {
	token := ""
	if c, err := r.Cookie(visitorCookieName); err == nil {
		token = c.Value
	}
	visitor, err := h.service.GetOrCreateVisitor(r.Context(), token)
	if err != nil {
		return domain.Visitor{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    visitor.Token,
		Path:     "/",
		MaxAge:   int(h.opts.VisitorCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return visitor, nil
}

func (h *Handler) intakeForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.resolveVisitor(w, r); err != nil {
		h.visitorFailure(w, r, "intake_form", err)
		return
	}
	view, err := h.service.IntakeForm(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "intake_form", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

// submitReport resolves the visitor before reading the body so the cookie
// is refreshed on every response, rejected ones included.
func (h *Handler) submitReport(w http.ResponseWriter, r *http.Request) {
	visitor, err := h.resolveVisitor(w, r)
	if err != nil {
		h.visitorFailure(w, r, "submit_report", err)
		return
	}
	req, err := readSubmitRequest(r)
	if err != nil {
		writeValidationError(r.Context(), w, "submit_report", err)
		return
	}
	report, err := h.service.Submit(r.Context(), visitor, req)
	if err != nil {
		if errors.Is(err, domain.ErrVisitorUnresolvable) {
			h.visitorFailure(w, r, "submit_report", err)
			return
		}
		writeMappedError(r.Context(), w, "submit_report", err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{
		"reporte_id": report.ID,
		"estado":     report.Status,
		"mensaje":    "¡Reporte enviado con éxito! Gracias por tu ayuda.",
	})
}

// visitorFailure sends the visitor back to the landing page when no
// identity could be attached to the request.
func (h *Handler) visitorFailure(w http.ResponseWriter, r *http.Request, operation string, err error) {
	if errors.Is(err, domain.ErrVisitorUnresolvable) {
		logHTTPOperationError(r.Context(), operation, http.StatusSeeOther, "VISITOR_UNRESOLVABLE", "visitor identity unresolvable", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeMappedError(r.Context(), w, operation, err)
}

func readSubmitRequest(r *http.Request) (application.SubmitReportRequest, error) {
	var req application.SubmitReportRequest
	if isJSONRequest(r) {
		err := decodeBody(r, &req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Type = r.PostForm.Get("tipo")
	req.Description = strings.TrimSpace(r.PostForm.Get("descripcion"))
	toolID, err := parseOptionalInt64(r.PostForm.Get("herramienta_id"))
	if err != nil {
		return req, err
	}
	req.ToolID = toolID
	return req, nil
}
