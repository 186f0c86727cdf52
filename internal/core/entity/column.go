package entity

import (
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/tally/internal/core/grid"
)

// FieldType is the storage and input type of a column.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeEmail  FieldType = "email"
	TypeInt    FieldType = "int"
	TypeMoney  FieldType = "money"
	TypeDate   FieldType = "date"
	TypeBool   FieldType = "bool"
)

// DateLayout is the wire and input format of date columns.
const DateLayout = "2006-01-02"

var (
	errRequired = errors.New("is required")
	errNotInt   = errors.New("must be a whole number")
	errNotMoney = errors.New("must be an amount")
	errNotDate  = errors.New("must be a date (YYYY-MM-DD)")
	errNotBool  = errors.New("must be yes or no")
)

// Column describes one field of an entity.
type Column struct {
	Field    string
	Title    string
	Type     FieldType
	Required bool
	// Min is the inclusive lower bound of numeric columns.
	Min      *float64
	ReadOnly bool
	Width    int
}

func floatPtr(f float64) *float64 { return &f }

// Parse converts user input into the column's value type. Blank input on a
// non-string column parses to nil.
func (c Column) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if c.Type == TypeString || c.Type == TypeEmail {
			return "", nil
		}
		return nil, nil
	}

	switch c.Type {
	case TypeInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s %w", c.Field, errNotInt)
		}
		return n, nil
	case TypeMoney:
		f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("%s %w", c.Field, errNotMoney)
		}
		return roundCents(f), nil
	case TypeDate:
		d, err := time.Parse(DateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("%s %w", c.Field, errNotDate)
		}
		return d.Format(DateLayout), nil
	case TypeBool:
		switch strings.ToLower(raw) {
		case "y", "yes", "true", "1", "on":
			return true, nil
		case "n", "no", "false", "0", "off":
			return false, nil
		}
		return nil, fmt.Errorf("%s %w", c.Field, errNotBool)
	default:
		return raw, nil
	}
}

// Format renders a value for a cell or an input field.
func (c Column) Format(v any) string {
	if v == nil {
		return ""
	}
	if c.Type == TypeMoney {
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'f', 2, 64)
		}
	}
	return grid.FormatValue(c.Normalize(v))
}

// Normalize coerces a decoded value into the column's Go type. JSON and
// DynamoDB both decode numbers as float64 or strings.
func (c Column) Normalize(v any) any {
	if v == nil {
		return nil
	}
	switch c.Type {
	case TypeInt:
		if f, ok := toFloat(v); ok {
			return int64(f)
		}
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		}
	case TypeMoney:
		if f, ok := toFloat(v); ok {
			return roundCents(f)
		}
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return roundCents(f)
			}
		}
	case TypeString, TypeEmail, TypeDate:
		if _, ok := v.(string); !ok {
			return fmt.Sprint(v)
		}
	}
	return v
}

// Validators returns the checks a value of this column must pass.
func (c Column) Validators() []grid.Validator {
	var out []grid.Validator
	if c.Required {
		out = append(out, required)
	}
	out = append(out, c.checkType)
	if c.Min != nil {
		out = append(out, atLeast(*c.Min))
	}
	if c.Type == TypeEmail {
		out = append(out, email)
	}
	return out
}

func (c Column) checkType(v any) error {
	if v == nil {
		return nil
	}
	switch c.Type {
	case TypeInt:
		f, ok := toFloat(v)
		if !ok || f != math.Trunc(f) {
			return errNotInt
		}
	case TypeMoney:
		if _, ok := toFloat(v); !ok {
			return errNotMoney
		}
	case TypeDate:
		s, ok := v.(string)
		if !ok {
			return errNotDate
		}
		if s == "" {
			return nil
		}
		if _, err := time.Parse(DateLayout, s); err != nil {
			return errNotDate
		}
	case TypeBool:
		if _, ok := v.(bool); !ok {
			return errNotBool
		}
	}
	return nil
}

func required(v any) error {
	if v == nil {
		return errRequired
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return errRequired
	}
	return nil
}

func atLeast(floor float64) grid.Validator {
	return func(v any) error {
		f, ok := toFloat(v)
		if ok && f < floor {
			return fmt.Errorf("must be at least %s", strconv.FormatFloat(floor, 'f', -1, 64))
		}
		return nil
	}
}

func email(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("must be an email address")
	}
	return nil
}

func roundCents(f float64) float64 {
	return math.Round(f*100) / 100
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
