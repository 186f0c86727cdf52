package tui

import (
	"fmt"
	"strings"

	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/tui/components"
)

// newGridInfo describes the active grid: how it edits, what the role may
// do and the columns it shows.
func newGridInfo(tab *GridView, policy *access.Policy, who access.Identity, width, height int) *components.InfoDialog {
	spec := tab.Spec()
	schema := spec.Schema

	mode := "inline"
	if spec.Config.Dialog != nil {
		mode = "dialog"
	}
	keying := "backend-issued id"
	if schema.Composite() {
		keying = "composite of " + strings.Join(schema.KeyFields, ", ")
	}

	gridItems := []components.InfoItem{
		{Label: "Entity", Value: string(schema.Kind)},
		{Label: "Editing", Value: mode},
		{Label: "Keys", Value: keying},
		{Label: "Rows", Value: fmt.Sprintf("%d", len(tab.Controller().Rows()))},
	}

	perms := policy.Resolve(who.Role, string(schema.Kind))
	permItems := []components.InfoItem{
		permItem("view", perms.View),
		permItem("add", perms.Add),
		permItem("edit", perms.Edit),
		permItem("delete", perms.Delete),
	}

	columnItems := make([]components.InfoItem, 0, len(schema.Columns))
	for _, c := range schema.Columns {
		var attrs []string
		attrs = append(attrs, string(c.Type))
		if c.Required {
			attrs = append(attrs, "required")
		}
		if c.Min != nil {
			attrs = append(attrs, fmt.Sprintf("min %g", *c.Min))
		}
		if c.ReadOnly {
			attrs = append(attrs, "read-only")
		}
		columnItems = append(columnItems, components.InfoItem{Label: c.Title, Value: strings.Join(attrs, ", ")})
	}

	return components.NewInfoDialog(components.InfoDialogOptions{
		Title: spec.Title,
		Sections: []components.InfoSection{
			{Title: "Grid", Items: gridItems},
			{Title: "Permissions for " + who.Role, Items: permItems},
			{Title: "Columns", Items: columnItems},
		},
		Notes: gridNotes(schema),
		Help:  "[j/k] scroll  [esc/i] close",
	}, width, height)
}

func permItem(name string, granted bool) components.InfoItem {
	if granted {
		return components.InfoItem{Label: name, Value: "allowed", Status: components.InfoStatusPass}
	}
	return components.InfoItem{Label: name, Value: "denied", Status: components.InfoStatusFail}
}

// gridNotes explains the save behavior of schema in markdown.
func gridNotes(schema entity.Schema) string {
	var b strings.Builder
	b.WriteString("### Saving\n\n")
	b.WriteString("A save only reaches the backend when one of these fields changed: ")
	fields := schema.Compare
	if len(fields) == 0 {
		fields = schema.Fields()
	}
	b.WriteString("`" + strings.Join(fields, "`, `") + "`.\n")
	if schema.UniqueBy != "" {
		fmt.Fprintf(&b, "\nA record whose **%s** matches an existing one asks for confirmation first.\n", schema.UniqueBy)
	}
	if schema.Composite() {
		b.WriteString("\nChanging a key field moves the record to its new key.\n")
	}
	return b.String()
}
