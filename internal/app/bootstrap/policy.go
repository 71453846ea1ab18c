package bootstrap

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

//go:embed groups.default.yaml
var defaultGroupsYAML []byte

type groupsFile struct {
	Groups []struct {
		Name        string              `yaml:"name"`
		AccessLevel string              `yaml:"access_level"`
		Grants      map[string][]string `yaml:"grants"`
	} `yaml:"groups"`
}

// LoadPolicy reads the permission groups from path, falling back to the
// embedded defaults when the file does not exist.
func LoadPolicy(path string) (domain.Policy, error) {
	raw := defaultGroupsYAML
	if path != "" {
		fileRaw, err := os.ReadFile(path)
		switch {
		case err == nil:
			raw = fileRaw
		case !errors.Is(err, os.ErrNotExist):
			return domain.Policy{}, fmt.Errorf("read groups file: %w", err)
		}
	}
	return parsePolicy(raw)
}

func parsePolicy(raw []byte) (domain.Policy, error) {
	var f groupsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return domain.Policy{}, fmt.Errorf("parse groups file: %w", err)
	}
	if len(f.Groups) == 0 {
		return domain.Policy{}, fmt.Errorf("%w: no permission groups configured", domain.ErrInvalidInput)
	}
	defs := make([]domain.GroupDefinition, 0, len(f.Groups))
	for _, g := range f.Groups {
		level := domain.ParseAccessLevel(g.AccessLevel)
		if level == domain.AccessNone {
			return domain.Policy{}, fmt.Errorf("%w: group %s has unknown access level %q", domain.ErrInvalidInput, g.Name, g.AccessLevel)
		}
		defs = append(defs, domain.GroupDefinition{Name: g.Name, AccessLevel: level, Grants: g.Grants})
	}
	return domain.NewPolicy(defs)
}
