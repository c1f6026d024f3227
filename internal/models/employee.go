package models

import "github.com/shopspring/decimal"

// EmployeeRecord represents one normalized row of the payroll sheet.
type EmployeeRecord struct {
	Row         int             `json:"row"`         // Row is the 1-based row number in the source sheet.
	EmployeeID  string          `json:"employeeId"`  // EmployeeID is display-only.
	Name        string          `json:"name"`        // Name is also used to derive the payslip filename.
	BasicSalary decimal.Decimal `json:"basicSalary"` // BasicSalary is zero when the source value was missing or invalid.
	Allowance   decimal.Decimal `json:"allowance"`
	Deductions  decimal.Decimal `json:"deductions"`
	Email       string          `json:"email"` // Email is optional, blank disables dispatch.
}

// NetSalary returns basic salary plus allowance minus deductions.
// It is computed on every call and never stored.
func (r EmployeeRecord) NetSalary() decimal.Decimal {
	return r.BasicSalary.Add(r.Allowance).Sub(r.Deductions)
}
