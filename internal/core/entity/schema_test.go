package entity

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/grid"
)

func TestColumn_Parse(t *testing.T) {
	tests := []struct {
		name    string
		col     Column
		raw     string
		want    any
		wantErr bool
	}{
		{"string trims", Column{Field: "name", Type: TypeString}, "  Acme ", "Acme", false},
		{"blank string", Column{Field: "name", Type: TypeString}, "", "", false},
		{"int", Column{Field: "qty", Type: TypeInt}, "42", int64(42), false},
		{"int rejects decimals", Column{Field: "qty", Type: TypeInt}, "4.2", nil, true},
		{"blank int", Column{Field: "qty", Type: TypeInt}, " ", nil, false},
		{"money rounds", Column{Field: "price", Type: TypeMoney}, "1,234.567", 1234.57, false},
		{"money garbage", Column{Field: "price", Type: TypeMoney}, "ten", nil, true},
		{"date", Column{Field: "issued_on", Type: TypeDate}, "2026-03-01", "2026-03-01", false},
		{"bad date", Column{Field: "issued_on", Type: TypeDate}, "03/01/2026", nil, true},
		{"bool yes", Column{Field: "paid", Type: TypeBool}, "Yes", true, false},
		{"bool off", Column{Field: "paid", Type: TypeBool}, "off", false, false},
		{"bool garbage", Column{Field: "paid", Type: TypeBool}, "maybe", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.col.Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumn_FormatAndNormalize(t *testing.T) {
	money := Column{Type: TypeMoney}
	assert.Equal(t, "10.00", money.Format(float64(10)))
	assert.Equal(t, "", money.Format(nil))
	assert.Equal(t, 12.5, money.Normalize("12.5"))

	integer := Column{Type: TypeInt}
	assert.Equal(t, int64(7), integer.Normalize(float64(7)))
	assert.Equal(t, "7", integer.Format(float64(7)))

	flag := Column{Type: TypeBool}
	assert.Equal(t, "yes", flag.Format(true))
}

func TestSchema_RulesValidate(t *testing.T) {
	rules := MustLookup(Products).Rules()

	err := rules.Validate(grid.Row{Values: grid.Values{"sku": "W-1", "name": "Widget", "price": -2.0}})
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "price", fieldErrs[0].Field)

	err = rules.Validate(grid.Row{Values: grid.Values{"price": 3.0}})
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2, "sku and name are required")

	require.NoError(t, rules.Validate(grid.Row{Values: grid.Values{"sku": "W-1", "name": "Widget", "price": 3.0}}))
}

func TestSchema_EmailValidation(t *testing.T) {
	rules := MustLookup(Customers).Rules()

	err := rules.Validate(grid.Row{Values: grid.Values{"name": "Acme", "email": "not-an-email"}})
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "email", fieldErrs[0].Field)

	require.NoError(t, rules.Validate(grid.Row{Values: grid.Values{"name": "Acme", "email": "ap@acme.test"}}))
}

func TestSchema_CompositeKey(t *testing.T) {
	prices := MustLookup(Prices)

	key, ok := prices.KeyOf(map[string]any{"product_id": int64(3), "customer_id": float64(9)})
	require.True(t, ok)
	assert.Equal(t, "3|9", key)

	_, ok = prices.KeyOf(map[string]any{"product_id": int64(3)})
	assert.False(t, ok)

	_, ok = MustLookup(Customers).KeyOf(map[string]any{"name": "x"})
	assert.False(t, ok)

	rules := prices.Rules()
	require.NotNil(t, rules.Key)
	id, ok := rules.Key(grid.Values{"product_id": int64(1), "customer_id": int64(2)})
	require.True(t, ok)
	assert.Equal(t, grid.ID("1|2"), id)
}

func TestSchema_PriceUnchangedIsNoop(t *testing.T) {
	rules := MustLookup(Prices).Rules()
	old := grid.Row{ID: "3|9", Values: grid.Values{"product_id": int64(3), "customer_id": int64(9), "price": 10.0}}

	assert.False(t, rules.Changed(old.With(grid.Values{"price": 10.0}), old))
	assert.True(t, rules.Changed(old.With(grid.Values{"price": 15.0}), old))
}

func TestSchema_ParseAssignments(t *testing.T) {
	s := MustLookup(Invoices)

	values, err := s.ParseAssignments([]string{"number=INV-7", "customer_id=4", "issued_on=2026-01-31", "paid=no"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"number":      "INV-7",
		"customer_id": int64(4),
		"issued_on":   "2026-01-31",
		"paid":        false,
	}, values)

	_, err = s.ParseAssignments([]string{"color=red"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no field")

	_, err = s.ParseAssignments([]string{"number"})
	require.Error(t, err)
}

func TestSchema_Normalize(t *testing.T) {
	s := MustLookup(Warehouses)
	got := s.Normalize(map[string]any{"code": "W1", "capacity": float64(40), "bogus": 1})
	assert.Equal(t, map[string]any{"code": "W1", "capacity": int64(40)}, got)
}

func TestRegistry(t *testing.T) {
	assert.Len(t, All(), 7)
	assert.Equal(t, Customers, All()[0].Kind)
	assert.Contains(t, Kinds(), "prices")

	_, ok := Lookup("unicorns")
	assert.False(t, ok)
	assert.True(t, MustLookup(Invoices).Dialog)
}
