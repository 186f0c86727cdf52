package grid

import (
	"fmt"
	"maps"
	"reflect"
	"sort"
)

// Values holds a row's field values keyed by field name.
type Values map[string]any

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}

// Merge returns a copy of v with patch applied on top.
func (v Values) Merge(patch Values) Values {
	out := v.Clone()
	maps.Copy(out, patch)
	return out
}

// Diff returns the fields of v whose value differs from old.
func (v Values) Diff(old Values) Values {
	out := Values{}
	for field, value := range v {
		if prev, ok := old[field]; ok && ValueEqual(value, prev) {
			continue
		}
		out[field] = value
	}
	return out
}

// Fields returns the field names of v, sorted.
func (v Values) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Row is one grid record. IsNew marks a row added locally and not yet
// created on the backend.
type Row struct {
	ID     ID
	IsNew  bool
	Values Values
}

// Get returns the value of field, or nil.
func (r Row) Get(field string) any {
	return r.Values[field]
}

// Clone copies the row and its values.
func (r Row) Clone() Row {
	r.Values = r.Values.Clone()
	return r
}

// With returns a copy of r with patch applied to its values.
func (r Row) With(patch Values) Row {
	r.Values = r.Values.Merge(patch)
	return r
}

// ValueEqual compares two cell values. Numbers compare by value regardless
// of their Go type, so an int64 read from a form equals a float64 decoded
// from JSON.
func ValueEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	if isEmpty(a) && isEmpty(b) {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// FormatValue renders a cell value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(val)
	}
}
