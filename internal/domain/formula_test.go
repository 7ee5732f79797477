package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateFormula(t *testing.T) {
	tests := []struct {
		name     string
		formula  string
		vars     map[string]float64
		expected float64
	}{
		{name: "Precedence", formula: "1+2*3", expected: 7},
		{name: "Parentheses", formula: "(1+2)*3", expected: 9},
		{name: "Variable", formula: "plantCount*2", vars: map[string]float64{"plantCount": 5}, expected: 10},
		{name: "Multiple variables", formula: "plant_count * labor_rate + 10", vars: map[string]float64{"plant_count": 4, "labor_rate": 2.5}, expected: 20},
		{name: "Division", formula: "10/4", expected: 2.5},
		{name: "Unary minus", formula: "-3+5", expected: 2},
		{name: "Nested unary", formula: "2*-3", expected: -6},
		{name: "Decimal literal", formula: "0.5*8", expected: 4},
		{name: "Leading dot literal", formula: ".5*8", expected: 4},
		{name: "Spaces everywhere", formula: "  1 +  2 * ( 3 - 1 ) ", expected: 5},
		{name: "Plain number", formula: "42", expected: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateFormula(tt.formula, tt.vars)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestEvaluateFormula_Errors(t *testing.T) {
	t.Run("Unknown variable", func(t *testing.T) {
		_, err := EvaluateFormula("plantCount*2", nil)
		var uvErr *UnknownVariableError
		require.ErrorAs(t, err, &uvErr)
		assert.Equal(t, "plantCount", uvErr.Name)
	})

	t.Run("Division by zero", func(t *testing.T) {
		_, err := EvaluateFormula("5/0", nil)
		assert.ErrorIs(t, err, ErrDivisionByZero)

		_, err = EvaluateFormula("5/(2-2)", nil)
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})

	t.Run("Disallowed characters", func(t *testing.T) {
		for _, formula := range []string{"1;2", "a=b", "x[0]", "f(x)!", `"str"`, "1+2#"} {
			_, err := EvaluateFormula(formula, map[string]float64{"a": 1, "b": 2, "x": 3, "f": 4})
			var dtErr *DisallowedTokenError
			require.ErrorAs(t, err, &dtErr, "formula %q", formula)
		}
	})

	t.Run("Injection-shaped input rejected before evaluation", func(t *testing.T) {
		_, err := EvaluateFormula("DROP TABLE", nil)
		var dtErr *DisallowedTokenError
		require.ErrorAs(t, err, &dtErr)

		_, err = EvaluateFormula("DROP TABLE users;", nil)
		require.ErrorAs(t, err, &dtErr)
	})

	t.Run("Malformed expressions", func(t *testing.T) {
		for _, formula := range []string{"1+", "(1+2", "1++*2", "1.2.3", "*3", "()"} {
			_, err := EvaluateFormula(formula, nil)
			require.Error(t, err, "formula %q", formula)
		}
	})

	t.Run("Empty formula", func(t *testing.T) {
		_, err := EvaluateFormula("   ", nil)
		assert.ErrorIs(t, err, ErrEmptyFormula)
	})
}
