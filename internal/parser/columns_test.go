package parser_test

import (
	"testing"

	"github.com/UnknownOlympus/plutus/internal/parser"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Allowance", parser.ColumnAllowance, true},
		{"Allowances", parser.ColumnAllowance, true},
		{"  allawances ", parser.ColumnAllowance, true},
		{"Deduction", parser.ColumnDeductions, true},
		{"Basic  Salary", parser.ColumnBasicSalary, true},
		{"EMAIL", parser.ColumnEmail, true},
		{"Email Address", parser.ColumnEmail, true},
		{"Employee Id", parser.ColumnEmployeeID, true},
		{"Department", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := parser.CanonicalColumn(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}
