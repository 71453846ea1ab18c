package http

import (
	"net/http"

	"github.com/viralforge/tool-feedback-portal/internal/application"
)

func (h *Handler) listTools(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tools, err := h.service.ListTools(ctx, principalFromContext(ctx))
	if err != nil {
		writeMappedError(ctx, w, "list_tools", err)
		return
	}
	out := make([]toolDTO, 0, len(tools))
	for _, t := range tools {
		out = append(out, toToolDTO(t))
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *Handler) createTool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req application.CreateToolRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(ctx, w, "create_tool", err)
		return
	}
	tool, err := h.service.CreateTool(ctx, principalFromContext(ctx), req)
	if err != nil {
		writeMappedError(ctx, w, "create_tool", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toToolDTO(tool))
}

func (h *Handler) listAIModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	models, err := h.service.ListAIModels(ctx, principalFromContext(ctx))
	if err != nil {
		writeMappedError(ctx, w, "list_ai_models", err)
		return
	}
	out := make([]aiModelDTO, 0, len(models))
	for _, m := range models {
		out = append(out, toAIModelDTO(m))
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *Handler) createAIModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req application.CreateAIModelRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(ctx, w, "create_ai_model", err)
		return
	}
	model, err := h.service.CreateAIModel(ctx, principalFromContext(ctx), req)
	if err != nil {
		writeMappedError(ctx, w, "create_ai_model", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toAIModelDTO(model))
}

func (h *Handler) listAdministrators(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	admins, err := h.service.ListAdministrators(ctx, principalFromContext(ctx))
	if err != nil {
		writeMappedError(ctx, w, "list_administrators", err)
		return
	}
	out := make([]administratorDTO, 0, len(admins))
	for _, a := range admins {
		out = append(out, toAdministratorDTO(a))
	}
	writeSuccess(w, http.StatusOK, out)
}

