// Package entity defines the business tables the console edits and the
// backend contract that stores them.
package entity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/colonyops/tally/internal/core/grid"
)

// Kind names an entity table.
type Kind string

const (
	Customers   Kind = "customers"
	Products    Kind = "products"
	Invoices    Kind = "invoices"
	Salespeople Kind = "salespeople"
	Drivers     Kind = "drivers"
	Warehouses  Kind = "warehouses"
	Prices      Kind = "prices"
)

// Schema describes an entity table.
type Schema struct {
	Kind    Kind
	Title   string
	Columns []Column
	// KeyFields, when set, make the record id the composite of these
	// fields instead of a backend-issued number.
	KeyFields []string
	// Compare lists the fields a save compares to decide whether anything
	// changed. Empty compares every column.
	Compare []string
	// Dialog edits rows in a form dialog instead of inline.
	Dialog bool
	// UniqueBy names a field whose near-duplicates need confirmation.
	UniqueBy string
}

// Column returns the column for field.
func (s Schema) Column(field string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// Fields returns every column field in display order.
func (s Schema) Fields() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Field
	}
	return out
}

// Editable returns the columns a user may change.
func (s Schema) Editable() []Column {
	var out []Column
	for _, c := range s.Columns {
		if !c.ReadOnly {
			out = append(out, c)
		}
	}
	return out
}

// Composite reports whether records are keyed by their own values.
func (s Schema) Composite() bool {
	return len(s.KeyFields) > 0
}

// Normalize coerces decoded values to the column types and drops unknown
// fields.
func (s Schema) Normalize(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for field, v := range values {
		c, ok := s.Column(field)
		if !ok {
			continue
		}
		out[field] = c.Normalize(v)
	}
	return out
}

// KeyOf derives the composite key of values. It returns false for schemas
// without key fields or when a key field is blank.
func (s Schema) KeyOf(values map[string]any) (string, bool) {
	if !s.Composite() {
		return "", false
	}
	parts := make([]string, len(s.KeyFields))
	for i, f := range s.KeyFields {
		c, _ := s.Column(f)
		p := c.Format(values[f])
		if p == "" {
			return "", false
		}
		parts[i] = p
	}
	return string(grid.CompositeID(parts...)), true
}

// Rules returns the commit rules derived from the schema. The duplicate gate
// needs backend access and is attached by the caller.
func (s Schema) Rules() grid.Rules {
	rules := grid.Rules{
		Compare:    s.Compare,
		Validators: make(map[string][]grid.Validator, len(s.Columns)),
	}
	if len(rules.Compare) == 0 {
		rules.Compare = s.Fields()
	}
	for _, c := range s.Editable() {
		rules.Validators[c.Field] = c.Validators()
	}
	if s.Composite() {
		rules.Key = func(v grid.Values) (grid.ID, bool) {
			key, ok := s.KeyOf(v)
			return grid.ID(key), ok
		}
	}
	return rules
}

// ParseAssignments turns "field=value" arguments into typed values.
func (s Schema) ParseAssignments(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		field, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q: expected field=value", arg)
		}
		c, ok := s.Column(strings.TrimSpace(field))
		if !ok {
			return nil, fmt.Errorf("%s has no field %q (fields: %s)", s.Kind, field, strings.Join(s.Fields(), ", "))
		}
		if c.ReadOnly {
			return nil, fmt.Errorf("field %q is read-only", c.Field)
		}
		v, err := c.Parse(raw)
		if err != nil {
			return nil, err
		}
		out[c.Field] = v
	}
	return out, nil
}

var registry = map[Kind]Schema{}

func register(s Schema) {
	registry[s.Kind] = s
}

// Lookup returns the schema registered for kind.
func Lookup(kind string) (Schema, bool) {
	s, ok := registry[Kind(kind)]
	return s, ok
}

// MustLookup panics when kind is unknown.
func MustLookup(kind Kind) Schema {
	s, ok := registry[kind]
	if !ok {
		panic(fmt.Sprintf("entity: unknown kind %q", kind))
	}
	return s
}

// All returns every schema in tab order.
func All() []Schema {
	out := make([]Schema, 0, len(order))
	for _, k := range order {
		out = append(out, registry[k])
	}
	return out
}

// Kinds returns the registered kinds, sorted by name.
func Kinds() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
