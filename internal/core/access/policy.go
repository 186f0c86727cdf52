package access

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Grant gives a role a set of permissions on every entity matching one of
// the patterns. Patterns use doublestar syntax ("*", "inv*", "{a,b}").
type Grant struct {
	Entities []string `yaml:"entities"`
	Add      bool     `yaml:"add"`
	Edit     bool     `yaml:"edit"`
	Delete   bool     `yaml:"delete"`
}

// Permissions is the merged result of every grant matching an entity.
type Permissions struct {
	View   bool
	Add    bool
	Edit   bool
	Delete bool
}

// Policy maps role names to grants. The zero value denies everything.
type Policy struct {
	roles map[string][]Grant
}

func NewPolicy(roles map[string][]Grant) *Policy {
	return &Policy{roles: roles}
}

// Roles returns the configured role names, sorted.
func (p *Policy) Roles() []string {
	names := make([]string, 0, len(p.roles))
	for name := range p.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasRole reports whether role is configured.
func (p *Policy) HasRole(role string) bool {
	_, ok := p.roles[role]
	return ok
}

// Resolve merges every grant of role whose pattern matches entity. A role
// holding any matching grant may view the entity.
func (p *Policy) Resolve(role, entity string) Permissions {
	var perms Permissions
	if p == nil {
		return perms
	}

	for _, g := range p.roles[role] {
		if !matchAny(g.Entities, entity) {
			continue
		}
		perms.View = true
		perms.Add = perms.Add || g.Add
		perms.Edit = perms.Edit || g.Edit
		perms.Delete = perms.Delete || g.Delete
	}

	return perms
}

// Validate checks every pattern compiles.
func (p *Policy) Validate() error {
	for role, grants := range p.roles {
		for i, g := range grants {
			for _, pattern := range g.Entities {
				if !doublestar.ValidatePattern(pattern) {
					return fmt.Errorf("role %q grant %d: invalid entity pattern %q", role, i, pattern)
				}
			}
		}
	}
	return nil
}

func matchAny(patterns []string, entity string) bool {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, entity)
		if err == nil && ok {
			return true
		}
	}
	return false
}
