package console

import (
	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/core/grid"
)

// GridSpec is a grid a role may open, with its resolved configuration.
type GridSpec struct {
	Schema entity.Schema
	Title  string
	Config grid.Config
}

// BuildGrid resolves the grid configuration of schema for role. It returns
// false when the role may not view the entity or config hides it.
func BuildGrid(cfg *config.Config, policy *access.Policy, role string, svc *EntityService) (GridSpec, bool) {
	schema := svc.Schema()
	override := cfg.Entity(string(schema.Kind))
	if override.Hidden {
		return GridSpec{}, false
	}

	perms := policy.Resolve(role, string(schema.Kind))
	if !perms.View {
		return GridSpec{}, false
	}

	title := schema.Title
	if override.Title != "" {
		title = override.Title
	}

	rules := schema.Rules()
	if schema.UniqueBy != "" {
		rules.Duplicate = svc.Duplicate
	}

	gc := grid.Config{
		Name: string(schema.Kind),
		Capabilities: grid.Capabilities{
			Addable:   perms.Add,
			Editable:  perms.Edit,
			Deletable: perms.Delete,
		},
		Rules: rules,
	}

	dialog := schema.Dialog
	if override.Dialog != nil {
		dialog = *override.Dialog
	}
	if dialog {
		gc.Dialog = &grid.Dialog{Title: title}
	}

	return GridSpec{Schema: schema, Title: title, Config: gc}, true
}
