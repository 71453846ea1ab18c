package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

type CatalogRepository struct {
	s *store
}

func (r *CatalogRepository) ListTools(_ context.Context) ([]domain.Tool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Tool, 0, len(r.s.tools))
	for _, t := range r.s.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CatalogRepository) GetTool(_ context.Context, id int64) (domain.Tool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tools[id]
	if !ok {
		return domain.Tool{}, domain.ErrNotFound
	}
	return t, nil
}

func (r *CatalogRepository) CreateTool(_ context.Context, tool domain.Tool) (domain.Tool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.createToolLocked(tool)
}

func (r *CatalogRepository) createToolLocked(tool domain.Tool) (domain.Tool, error) {
	for _, t := range r.s.tools {
		if strings.EqualFold(t.Name, tool.Name) {
			return domain.Tool{}, domain.ErrConflict
		}
	}
	if tool.AIModelID != nil {
		if _, ok := r.s.models[*tool.AIModelID]; !ok {
			return domain.Tool{}, domain.ErrInvalidInput
		}
	}
	r.s.nextTool++
	tool.ID = r.s.nextTool
	r.s.tools[tool.ID] = tool
	return tool, nil
}

func (r *CatalogRepository) ListAIModels(_ context.Context) ([]domain.AIModel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.AIModel, 0, len(r.s.models))
	for _, m := range r.s.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *CatalogRepository) CreateAIModel(_ context.Context, model domain.AIModel) (domain.AIModel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextModel++
	model.ID = r.s.nextModel
	r.s.models[model.ID] = model
	return model, nil
}

func (r *CatalogRepository) SeedDefaults(_ context.Context, model domain.AIModel, tools []domain.Tool) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inserted := 0
	var modelID int64
	for _, m := range r.s.models {
		if m.Version == model.Version {
			modelID = m.ID
		}
	}
	if modelID == 0 {
		r.s.nextModel++
		model.ID = r.s.nextModel
		r.s.models[model.ID] = model
		modelID = model.ID
		inserted++
	}
	for _, t := range tools {
		exists := false
		for _, existing := range r.s.tools {
			if existing.Name == t.Name {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		id := modelID
		t.AIModelID = &id
		if _, err := r.createToolLocked(t); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
