package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

const placeholderEmailDomain = "@sin_email.com"

// UpsertAdministrator is called by the identity flow whenever an operator
// account is saved. The access level follows the superuser flag and the
// group membership is written with it.
func (s *Service) UpsertAdministrator(ctx context.Context, req UpsertAdministratorRequest) (domain.Administrator, error) {
	uid := strings.TrimSpace(req.UID)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if uid == "" && email == "" {
		return domain.Administrator{}, fmt.Errorf("%w: uid or email is required", domain.ErrInvalidInput)
	}
	if email == "" {
		email = uid + placeholderEmailDomain
	}
	if !strings.Contains(email, "@") {
		return domain.Administrator{}, fmt.Errorf("%w: email is malformed", domain.ErrInvalidInput)
	}
	if uid == "" {
		uid = "auto-" + email
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	level := domain.AccessAdmin
	if req.Superuser {
		level = domain.AccessSuperadmin
	}
	groupName, ok := s.policy.GroupName(level)
	if !ok {
		return domain.Administrator{}, fmt.Errorf("%w: no group configured for %s", domain.ErrInvalidInput, level)
	}

	return s.administrators.Upsert(ctx, ports.UpsertAdministratorParams{
		UID:          uid,
		Email:        email,
		Name:         name,
		AccessLevel:  level,
		GroupName:    groupName,
		RegisteredAt: s.nowFn(),
	})
}

// RemoveAdministrator is called by the identity flow when an operator
// account is deleted.
func (s *Service) RemoveAdministrator(ctx context.Context, email, uid string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	uid = strings.TrimSpace(uid)
	if email == "" && uid == "" {
		return 0, fmt.Errorf("%w: uid or email is required", domain.ErrInvalidInput)
	}
	return s.administrators.Remove(ctx, email, uid)
}

// LookupAdministrator resolves one directory entry by email.
func (s *Service) LookupAdministrator(ctx context.Context, email string) (domain.Administrator, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.Administrator{}, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	return s.administrators.GetByEmail(ctx, email)
}

// BootstrapGroups writes the configured permission groups. Safe to run on
// every deployment.
func (s *Service) BootstrapGroups(ctx context.Context) ([]domain.PermissionGroup, error) {
	groups := s.policy.Groups()
	now := s.nowFn()
	for i := range groups {
		groups[i].UpdatedAt = now
	}
	if err := s.groups.UpsertAll(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

type SeedResult struct {
	CatalogRows        int
	AdministratorAdded bool
}

var defaultTools = []domain.Tool{
	{Name: "Martillo", Category: "Percusión", TechnicalDescription: "Herramienta de percusión para clavar y golpear", UsageInstructions: "Usar para clavar clavos o golpear objetos"},
	{Name: "Destornillador", Category: "Ajuste", TechnicalDescription: "Herramienta para atornillar/desatornillar", UsageInstructions: "Insertar en la cabeza del tornillo y girar"},
	{Name: "Llave Inglesa", Category: "Ajuste", TechnicalDescription: "Llave ajustable para tuercas y pernos", UsageInstructions: "Colocar sobre la tuerca y girar"},
	{Name: "Alicates", Category: "Sujeción", TechnicalDescription: "Herramienta para sujetar y cortar alambres", UsageInstructions: "Usar para sujetar o cortar materiales"},
	{Name: "Taladro", Category: "Perforación", TechnicalDescription: "Máquina para perforar agujeros", UsageInstructions: "Colocar broca, posicionar y activar"},
}

// Seed creates the initial model, tool catalog and system administrator
// when they are missing.
func (s *Service) Seed(ctx context.Context) (SeedResult, error) {
	now := s.nowFn()
	model := domain.AIModel{
		Version:     "1.0",
		ChangeNotes: "Modelo inicial de reconocimiento de herramientas",
		Active:      true,
		UploadedAt:  &now,
	}
	tools := make([]domain.Tool, 0, len(defaultTools))
	for _, t := range defaultTools {
		t.Active = true
		t.RegisteredAt = &now
		tools = append(tools, t)
	}
	inserted, err := s.catalog.SeedDefaults(ctx, model, tools)
	if err != nil {
		return SeedResult{}, err
	}
	result := SeedResult{CatalogRows: inserted}

	const systemEmail = "admin@escanerherramientas.com"
	_, err = s.administrators.GetByEmail(ctx, systemEmail)
	switch {
	case err == nil:
		return result, nil
	case !errors.Is(err, domain.ErrNotFound):
		return SeedResult{}, err
	}
	groupName, _ := s.policy.GroupName(domain.AccessSuperadmin)
	if _, err := s.administrators.Upsert(ctx, ports.UpsertAdministratorParams{
		UID:         "admin-001",
		Email:       systemEmail,
		Name:        "Administrador Sistema",
		AccessLevel: domain.AccessSuperadmin,
		GroupName:   groupName,
		Permissions: map[string]bool{
			"can_view_reports":  true,
			"can_manage_tools":  true,
			"can_manage_users":  true,
			"can_manage_admins": true,
		},
		RegisteredAt: now,
	}); err != nil {
		return SeedResult{}, err
	}
	result.AdministratorAdded = true
	return result, nil
}
