package http

import (
	"errors"
	"net/http"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

func (h *Handler) takePendingCSV(w http.ResponseWriter, r *http.Request) {
	h.takePending(w, r, domain.KindCSV)
}

func (h *Handler) takePendingPDF(w http.ResponseWriter, r *http.Request) {
	h.takePending(w, r, domain.KindPDF)
}

func (h *Handler) takePending(w http.ResponseWriter, r *http.Request, kind domain.ArtifactKind) {
	ctx := r.Context()
	file, err := h.service.TakePending(ctx, principalFromContext(ctx), kind)
	if err != nil {
		if errors.Is(err, domain.ErrNotReady) {
			redirectWithQuery(w, r, manageReportsPath, "error_rep", kind.Extension()+"_no_disponible")
			return
		}
		writeMappedError(ctx, w, "take_pending_"+kind.Extension(), err)
		return
	}
	writeFile(w, file)
}

func (h *Handler) downloadArtifact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeValidationError(ctx, w, "download_artifact", err)
		return
	}
	file, err := h.service.DownloadArtifact(ctx, principalFromContext(ctx), id)
	if err != nil {
		writeMappedError(ctx, w, "download_artifact", err)
		return
	}
	writeFile(w, file)
}

func (h *Handler) listArtifacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	artifacts, err := h.service.ListArtifacts(ctx, principalFromContext(ctx),
		parseIntDefault(q.Get("limit"), 0),
		parseIntDefault(q.Get("offset"), 0),
	)
	if err != nil {
		writeMappedError(ctx, w, "list_artifacts", err)
		return
	}
	writeSuccess(w, http.StatusOK, toArtifactDTOs(artifacts))
}
