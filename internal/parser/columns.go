package parser

import "strings"

// Canonical column names of the payroll sheet.
const (
	ColumnEmployeeID  = "Employee ID"
	ColumnName        = "Name"
	ColumnBasicSalary = "Basic Salary"
	ColumnAllowance   = "Allowance"
	ColumnDeductions  = "Deductions"
	ColumnEmail       = "Email"
)

// RequiredColumns lists every column a normalized sheet has, in display order.
var RequiredColumns = []string{
	ColumnEmployeeID,
	ColumnName,
	ColumnBasicSalary,
	ColumnAllowance,
	ColumnDeductions,
	ColumnEmail,
}

// numericColumns are coerced to numbers, invalid values become zero.
var numericColumns = map[string]bool{
	ColumnBasicSalary: true,
	ColumnAllowance:   true,
	ColumnDeductions:  true,
}

// headerAliases maps a normalized header key to its canonical column.
// Keys are lower case with single spaces; see headerKey.
var headerAliases = map[string]string{
	"employee id":   ColumnEmployeeID,
	"employeeid":    ColumnEmployeeID,
	"emp id":        ColumnEmployeeID,
	"name":          ColumnName,
	"full name":     ColumnName,
	"basic salary":  ColumnBasicSalary,
	"allowance":     ColumnAllowance,
	"allowances":    ColumnAllowance,
	"allawances":    ColumnAllowance,
	"deductions":    ColumnDeductions,
	"deduction":     ColumnDeductions,
	"email":         ColumnEmail,
	"e-mail":        ColumnEmail,
	"email address": ColumnEmail,
}

// headerKey trims the header, collapses inner whitespace and lowercases it.
func headerKey(header string) string {
	return strings.ToLower(strings.Join(strings.Fields(header), " "))
}

// CanonicalColumn returns the canonical name for a sheet header,
// or false when the header is not a payroll column.
func CanonicalColumn(header string) (string, bool) {
	column, ok := headerAliases[headerKey(header)]
	return column, ok
}

// columnIndex maps each recognized canonical column to its position in the header row.
// The first occurrence of a column wins.
func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(RequiredColumns))
	for pos, cell := range header {
		column, ok := CanonicalColumn(cell)
		if !ok {
			continue
		}
		if _, seen := index[column]; !seen {
			index[column] = pos
		}
	}

	return index
}
