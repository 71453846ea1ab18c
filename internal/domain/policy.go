package domain

import (
	"fmt"
	"sort"
	"strings"
)

// AccessLevel is the directory-assigned authority of an administrator.
type AccessLevel string

const (
	AccessNone       AccessLevel = ""
	AccessAdmin      AccessLevel = "admin"
	AccessSuperadmin AccessLevel = "superadmin"
)

// ParseAccessLevel maps stored values onto known levels. Anything unknown
// becomes AccessNone so callers fail closed.
func ParseAccessLevel(raw string) AccessLevel {
	switch AccessLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case AccessAdmin:
		return AccessAdmin
	case AccessSuperadmin:
		return AccessSuperadmin
	default:
		return AccessNone
	}
}

// ResourceKind names an entity type guarded by the policy.
type ResourceKind string

const (
	ResourceAdministrator ResourceKind = "administrator"
	ResourceAIModel       ResourceKind = "ai_model"
	ResourceTool          ResourceKind = "tool"
	ResourceVisitor       ResourceKind = "visitor"
	ResourceUserReport    ResourceKind = "user_report"
	ResourceAdminReport   ResourceKind = "admin_report"
)

var resourceKinds = []ResourceKind{
	ResourceAdministrator,
	ResourceAIModel,
	ResourceTool,
	ResourceVisitor,
	ResourceUserReport,
	ResourceAdminReport,
}

// Action is an operation on a resource.
type Action string

const (
	ActionView   Action = "view"
	ActionAdd    Action = "add"
	ActionChange Action = "change"
	ActionDelete Action = "delete"
)

var actions = []Action{ActionView, ActionAdd, ActionChange, ActionDelete}

// GroupDefinition is the configured shape of one permission group.
type GroupDefinition struct {
	Name        string
	AccessLevel AccessLevel
	// Grants maps resource kinds to allowed actions. The wildcard "*" is
	// accepted for both keys and actions.
	Grants map[string][]string
}

type group struct {
	name   string
	grants map[ResourceKind]map[Action]bool
}

// Policy answers Can(level, action, resource) from configured groups.
// It is immutable once built.
type Policy struct {
	byLevel map[AccessLevel]group
}

// NewPolicy validates group definitions and builds a policy. Each access
// level may be bound to at most one group.
func NewPolicy(defs []GroupDefinition) (Policy, error) {
	p := Policy{byLevel: map[AccessLevel]group{}}
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return Policy{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
		}
		if def.AccessLevel == AccessNone {
			return Policy{}, fmt.Errorf("%w: group %s has no access level", ErrInvalidInput, name)
		}
		if _, dup := p.byLevel[def.AccessLevel]; dup {
			return Policy{}, fmt.Errorf("%w: access level %s bound twice", ErrInvalidInput, def.AccessLevel)
		}
		g := group{name: name, grants: map[ResourceKind]map[Action]bool{}}
		for rawKind, rawActions := range def.Grants {
			kinds, err := expandKinds(rawKind)
			if err != nil {
				return Policy{}, err
			}
			acts, err := expandActions(rawActions)
			if err != nil {
				return Policy{}, err
			}
			for _, k := range kinds {
				if g.grants[k] == nil {
					g.grants[k] = map[Action]bool{}
				}
				for _, a := range acts {
					g.grants[k][a] = true
				}
			}
		}
		p.byLevel[def.AccessLevel] = g
	}
	return p, nil
}

// DefaultGroupDefinitions mirrors the stock deployment: superadmins manage
// everything, admins triage reports and read the rest.
func DefaultGroupDefinitions() []GroupDefinition {
	return []GroupDefinition{
		{
			Name:        "SuperAdministradores",
			AccessLevel: AccessSuperadmin,
			Grants:      map[string][]string{"*": {"*"}},
		},
		{
			Name:        "Administradores",
			AccessLevel: AccessAdmin,
			Grants: map[string][]string{
				string(ResourceAdministrator): {"view", "change"},
				string(ResourceAIModel):       {"view"},
				string(ResourceTool):          {"view"},
				string(ResourceVisitor):       {"view"},
				string(ResourceUserReport):    {"view", "change"},
				string(ResourceAdminReport):   {"view", "add"},
			},
		},
	}
}

// DefaultPolicy builds the policy from DefaultGroupDefinitions.
func DefaultPolicy() Policy {
	p, err := NewPolicy(DefaultGroupDefinitions())
	if err != nil {
		panic(err)
	}
	return p
}

// Can is the single authorization decision for resource-kind access.
func (p Policy) Can(level AccessLevel, action Action, resource ResourceKind) bool {
	g, ok := p.byLevel[level]
	if !ok {
		return false
	}
	return g.grants[resource][action]
}

// GroupName returns the group bound to the access level.
func (p Policy) GroupName(level AccessLevel) (string, bool) {
	g, ok := p.byLevel[level]
	return g.name, ok
}

// Groups returns persisted snapshots of all configured groups sorted by name.
func (p Policy) Groups() []PermissionGroup {
	out := make([]PermissionGroup, 0, len(p.byLevel))
	for _, g := range p.byLevel {
		grants := map[ResourceKind][]Action{}
		for kind, acts := range g.grants {
			for _, a := range actions {
				if acts[a] {
					grants[kind] = append(grants[kind], a)
				}
			}
		}
		out = append(out, PermissionGroup{Name: g.name, Grants: grants})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CanChangeReport layers the record rule over Can: admins only touch
// reports that are unassigned or already theirs.
func (p Policy) CanChangeReport(actor Administrator, report Report) bool {
	if !p.Can(actor.AccessLevel, ActionChange, ResourceUserReport) {
		return false
	}
	if actor.AccessLevel == AccessSuperadmin {
		return true
	}
	return report.AdministratorID == nil || *report.AdministratorID == actor.ID
}

// CanChangeAdministrator allows admins to edit only their own entry.
func (p Policy) CanChangeAdministrator(actor Administrator, targetID int64) bool {
	if !p.Can(actor.AccessLevel, ActionChange, ResourceAdministrator) {
		return false
	}
	return actor.AccessLevel == AccessSuperadmin || actor.ID == targetID
}

// CanViewArtifact allows admins to read only the artifacts they generated.
func (p Policy) CanViewArtifact(actor Administrator, artifact GeneratedArtifact) bool {
	if !p.Can(actor.AccessLevel, ActionView, ResourceAdminReport) {
		return false
	}
	return actor.AccessLevel == AccessSuperadmin || artifact.AdministratorID == actor.ID
}

func expandKinds(raw string) ([]ResourceKind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "*" {
		return resourceKinds, nil
	}
	for _, k := range resourceKinds {
		if string(k) == raw {
			return []ResourceKind{k}, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown resource kind %q", ErrInvalidInput, raw)
}

func expandActions(raw []string) ([]Action, error) {
	out := make([]Action, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "*" {
			return actions, nil
		}
		found := false
		for _, a := range actions {
			if string(a) == r {
				out = append(out, a)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, r)
		}
	}
	return out, nil
}
