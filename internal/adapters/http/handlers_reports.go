package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/viralforge/tool-feedback-portal/internal/application"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

const manageReportsPath = "/gestionar-reportes/"

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Dashboard(r.Context(), principalFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "dashboard", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := principalFromContext(ctx)
	q := r.URL.Query()

	from, err := parseDay(q.Get("fecha_desde"))
	if err != nil {
		writeValidationError(ctx, w, "list_reports", err)
		return
	}
	to, err := parseDay(q.Get("fecha_hasta"))
	if err != nil {
		writeValidationError(ctx, w, "list_reports", err)
		return
	}
	reports, err := h.service.ListReports(ctx, principal, application.ListReportsQuery{
		Status: q.Get("estado"),
		Type:   q.Get("tipo"),
		From:   from,
		To:     to,
		Search: q.Get("buscar"),
		Limit:  parseIntDefault(q.Get("limit"), 0),
		Offset: parseIntDefault(q.Get("offset"), 0),
	})
	if err != nil {
		writeMappedError(ctx, w, "list_reports", err)
		return
	}

	data := map[string]any{
		"reportes": toReportDTOs(reports),
	}
	if pending, err := h.service.PendingStatus(ctx, principal); err == nil {
		data["archivos_listos"] = pending.Any()
		data["pendientes"] = pending
	}
	if reason := q.Get("error_rep"); reason != "" {
		data["error_rep"] = reason
	}
	writeSuccess(w, http.StatusOK, data)
}

func (h *Handler) exportReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := readExportRequest(r)
	if err != nil {
		redirectWithQuery(w, r, manageReportsPath, "error_rep", application.ReasonValidation)
		return
	}

	result, err := h.service.Export(ctx, principalFromContext(ctx), req, strings.TrimSpace(r.Header.Get("Idempotency-Key")))
	if err != nil {
		var rejection *application.ExportRejection
		if errors.As(err, &rejection) {
			logHTTPOperationError(ctx, "export_reports", http.StatusSeeOther, "EXPORT_REJECTED", rejection.Reason, err)
			redirectWithQuery(w, r, manageReportsPath, "error_rep", rejection.Reason)
			return
		}
		writeMappedError(ctx, w, "export_reports", err)
		return
	}
	httpLogger().InfoContext(ctx, "reports exported", append(operationFields(ctx, "export_reports", "success"),
		"formato", req.Format,
		"reports", len(req.ReportIDs),
		"dual", result.DualReady,
	)...)
	if result.DualReady {
		redirectWithQuery(w, r, manageReportsPath, "archivos_listos", "true")
		return
	}
	if result.File == nil {
		redirectWithQuery(w, r, manageReportsPath, "error_rep", application.ReasonNoArtifact)
		return
	}
	writeFile(w, *result.File)
}

func readExportRequest(r *http.Request) (application.ExportRequest, error) {
	var req application.ExportRequest
	if isJSONRequest(r) {
		err := decodeBody(r, &req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	for _, raw := range r.PostForm["reporte_id"] {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return req, fmt.Errorf("%w: %q is not a valid report id", domain.ErrInvalidInput, raw)
		}
		req.ReportIDs = append(req.ReportIDs, id)
	}
	req.Format = r.PostForm.Get("formato")
	return req, nil
}

type updateStatusRequest struct {
	Status string `json:"estado"`
}

func (h *Handler) updateReportStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeValidationError(ctx, w, "update_report_status", err)
		return
	}
	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(ctx, w, "update_report_status", err)
		return
	}
	report, err := h.service.UpdateReportStatus(ctx, principalFromContext(ctx), id, req.Status)
	if err != nil {
		writeMappedError(ctx, w, "update_report_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, toReportDTO(report))
}
