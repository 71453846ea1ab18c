package memory

import (
	"context"
	"sort"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

type ArtifactRepository struct {
	s *store
}

func (r *ArtifactRepository) ApplyExportTx(_ context.Context, params ports.ExportTxParams) ([]domain.GeneratedArtifact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.administrators[params.AdministratorID]; !ok {
		return nil, domain.ErrNotFound
	}
	for _, id := range params.ReportIDs {
		if _, ok := r.s.reports[id]; !ok {
			return nil, domain.ErrNotFound
		}
	}
	for _, id := range params.ReportIDs {
		report := r.s.reports[id]
		adminID := params.AdministratorID
		report.Status = domain.StatusReviewed
		report.AdministratorID = &adminID
		r.s.reports[id] = report
	}
	out := make([]domain.GeneratedArtifact, 0, len(params.Artifacts))
	for _, a := range params.Artifacts {
		r.s.nextArtifact++
		a.ID = r.s.nextArtifact
		a.Payload = append([]byte(nil), a.Payload...)
		r.s.artifacts[a.ID] = a
		out = append(out, a)
	}
	r.s.enqueueLocked(params.Events...)
	return out, nil
}

// Put stores an artifact as-is, assigning an id when missing.
func (r *ArtifactRepository) Put(a domain.GeneratedArtifact) domain.GeneratedArtifact {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == 0 {
		r.s.nextArtifact++
		a.ID = r.s.nextArtifact
	} else if a.ID > r.s.nextArtifact {
		r.s.nextArtifact = a.ID
	}
	r.s.artifacts[a.ID] = a
	return a
}

func (r *ArtifactRepository) GetByID(_ context.Context, id int64) (domain.GeneratedArtifact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.artifacts[id]
	if !ok {
		return domain.GeneratedArtifact{}, domain.ErrNotFound
	}
	return a, nil
}

func (r *ArtifactRepository) List(_ context.Context, administratorID int64, limit, offset int) ([]domain.GeneratedArtifact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.GeneratedArtifact, 0, len(r.s.artifacts))
	for _, a := range r.s.artifacts {
		if administratorID != 0 && a.AdministratorID != administratorID {
			continue
		}
		a.Payload = nil
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].GeneratedAt.After(out[j].GeneratedAt)
		}
		return out[i].ID > out[j].ID
	})
	if offset > 0 {
		if offset >= len(out) {
			return []domain.GeneratedArtifact{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of archived artifacts.
func (r *ArtifactRepository) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.artifacts)
}
