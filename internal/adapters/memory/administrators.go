package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

type AdministratorRepository struct {
	s *store
}

func (r *AdministratorRepository) GetByEmail(_ context.Context, email string) (domain.Administrator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range r.s.administrators {
		if strings.ToLower(a.Email) == email {
			return a, nil
		}
	}
	return domain.Administrator{}, domain.ErrNotFound
}

func (r *AdministratorRepository) GetByID(_ context.Context, id int64) (domain.Administrator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.administrators[id]
	if !ok {
		return domain.Administrator{}, domain.ErrNotFound
	}
	return a, nil
}

func (r *AdministratorRepository) List(_ context.Context) ([]domain.Administrator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Administrator, 0, len(r.s.administrators))
	for _, a := range r.s.administrators {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AdministratorRepository) Upsert(_ context.Context, params ports.UpsertAdministratorParams) (domain.Administrator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var existing *domain.Administrator
	for _, a := range r.s.administrators {
		if strings.EqualFold(a.Email, params.Email) {
			a := a
			existing = &a
			break
		}
	}
	if existing == nil {
		for _, a := range r.s.administrators {
			if a.UID == params.UID {
				a := a
				existing = &a
				break
			}
		}
	}
	for _, a := range r.s.administrators {
		if existing != nil && a.ID == existing.ID {
			continue
		}
		if a.UID == params.UID || strings.EqualFold(a.Email, params.Email) {
			return domain.Administrator{}, domain.ErrConflict
		}
	}

	if existing != nil {
		existing.UID = params.UID
		existing.Email = params.Email
		existing.Name = params.Name
		existing.AccessLevel = params.AccessLevel
		existing.GroupName = params.GroupName
		if params.Permissions != nil {
			existing.Permissions = params.Permissions
		}
		r.s.administrators[existing.ID] = *existing
		return *existing, nil
	}

	r.s.nextAdmin++
	a := domain.Administrator{
		ID:           r.s.nextAdmin,
		UID:          params.UID,
		Email:        params.Email,
		Name:         params.Name,
		RegisteredAt: ptrTime(params.RegisteredAt),
		Permissions:  params.Permissions,
		AccessLevel:  params.AccessLevel,
		GroupName:    params.GroupName,
	}
	if a.Permissions == nil {
		a.Permissions = map[string]bool{}
	}
	r.s.administrators[a.ID] = a
	return a, nil
}

func (r *AdministratorRepository) Remove(_ context.Context, email, uid string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for id, a := range r.s.administrators {
		if (email != "" && strings.EqualFold(a.Email, email)) || (uid != "" && a.UID == uid) {
			delete(r.s.administrators, id)
			removed++
			for rid, report := range r.s.reports {
				if report.AdministratorID != nil && *report.AdministratorID == id {
					report.AdministratorID = nil
					r.s.reports[rid] = report
				}
			}
		}
	}
	return removed, nil
}
