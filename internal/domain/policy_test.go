package domain

import "testing"

func TestDefaultPolicyMatrix(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	cases := []struct {
		level    AccessLevel
		action   Action
		resource ResourceKind
		want     bool
	}{
		{AccessSuperadmin, ActionDelete, ResourceAdministrator, true},
		{AccessSuperadmin, ActionAdd, ResourceTool, true},
		{AccessAdmin, ActionView, ResourceTool, true},
		{AccessAdmin, ActionAdd, ResourceTool, false},
		{AccessAdmin, ActionChange, ResourceAIModel, false},
		{AccessAdmin, ActionChange, ResourceUserReport, true},
		{AccessAdmin, ActionDelete, ResourceAdministrator, false},
		{AccessAdmin, ActionAdd, ResourceAdminReport, true},
		{AccessNone, ActionView, ResourceUserReport, false},
		{AccessLevel("operator"), ActionView, ResourceTool, false},
	}
	for _, tc := range cases {
		if got := p.Can(tc.level, tc.action, tc.resource); got != tc.want {
			t.Errorf("Can(%q, %s, %s) = %v, want %v", tc.level, tc.action, tc.resource, got, tc.want)
		}
	}
}

func TestZeroPolicyDeniesEverything(t *testing.T) {
	t.Parallel()

	var p Policy
	if p.Can(AccessSuperadmin, ActionView, ResourceTool) {
		t.Fatalf("zero policy must deny")
	}
}

func TestNewPolicyRejectsUnknownNames(t *testing.T) {
	t.Parallel()

	_, err := NewPolicy([]GroupDefinition{{
		Name:        "x",
		AccessLevel: AccessAdmin,
		Grants:      map[string][]string{"spaceship": {"view"}},
	}})
	if err == nil {
		t.Fatalf("expected unknown resource kind to be rejected")
	}
	_, err = NewPolicy([]GroupDefinition{{
		Name:        "x",
		AccessLevel: AccessAdmin,
		Grants:      map[string][]string{"tool": {"launch"}},
	}})
	if err == nil {
		t.Fatalf("expected unknown action to be rejected")
	}
	_, err = NewPolicy([]GroupDefinition{
		{Name: "a", AccessLevel: AccessAdmin},
		{Name: "b", AccessLevel: AccessAdmin},
	})
	if err == nil {
		t.Fatalf("expected duplicate access level to be rejected")
	}
}

func TestRecordLevelRules(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	admin := Administrator{ID: 1, AccessLevel: AccessAdmin}
	super := Administrator{ID: 2, AccessLevel: AccessSuperadmin}
	other := int64(9)
	self := int64(1)

	if !p.CanChangeReport(admin, Report{}) {
		t.Errorf("admin should change unassigned report")
	}
	if !p.CanChangeReport(admin, Report{AdministratorID: &self}) {
		t.Errorf("admin should change own report")
	}
	if p.CanChangeReport(admin, Report{AdministratorID: &other}) {
		t.Errorf("admin must not change another admin's report")
	}
	if !p.CanChangeReport(super, Report{AdministratorID: &other}) {
		t.Errorf("superadmin should change any report")
	}
	if p.CanChangeAdministrator(admin, 9) || !p.CanChangeAdministrator(admin, 1) {
		t.Errorf("admin may only change own directory entry")
	}
	if p.CanViewArtifact(admin, GeneratedArtifact{AdministratorID: 9}) {
		t.Errorf("admin must not read another admin's artifact")
	}
	if !p.CanViewArtifact(super, GeneratedArtifact{AdministratorID: 9}) {
		t.Errorf("superadmin should read any artifact")
	}
}

func TestGroupsSnapshot(t *testing.T) {
	t.Parallel()

	groups := DefaultPolicy().Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Name != "Administradores" || groups[1].Name != "SuperAdministradores" {
		t.Fatalf("unexpected group order: %s, %s", groups[0].Name, groups[1].Name)
	}
	if len(groups[1].Grants[ResourceAdministrator]) != 4 {
		t.Fatalf("superadmin should hold every action on administrators")
	}
}
