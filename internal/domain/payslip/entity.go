package payslip

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payslip is the settled per-employee artifact of a frozen run. It mirrors the
// employee's payroll line at freeze time and is immutable afterwards, except
// for append-only refund linkage in the ledger.
type Payslip struct {
	ID           string
	PayrollRunID string
	EmployeeID   string
	EmployeeName string
	GrossSalary  decimal.Decimal
	Taxes        decimal.Decimal
	Insurance    decimal.Decimal
	Penalties    decimal.Decimal
	Refunds      decimal.Decimal
	NetSalary    decimal.Decimal
	IssuedAt     time.Time
}

type Response struct {
	ID           string          `json:"id"`
	PayrollRunID string          `json:"payroll_run_id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	GrossSalary  decimal.Decimal `json:"gross_salary"`
	Taxes        decimal.Decimal `json:"taxes"`
	Insurance    decimal.Decimal `json:"insurance"`
	Penalties    decimal.Decimal `json:"penalties"`
	Refunds      decimal.Decimal `json:"refunds"`
	NetSalary    decimal.Decimal `json:"net_salary"`
	IssuedAt     string          `json:"issued_at"`
}

func ToResponse(p Payslip) Response {
	return Response{
		ID:           p.ID,
		PayrollRunID: p.PayrollRunID,
		EmployeeID:   p.EmployeeID,
		EmployeeName: p.EmployeeName,
		GrossSalary:  p.GrossSalary,
		Taxes:        p.Taxes,
		Insurance:    p.Insurance,
		Penalties:    p.Penalties,
		Refunds:      p.Refunds,
		NetSalary:    p.NetSalary,
		IssuedAt:     p.IssuedAt.Format(time.RFC3339),
	}
}
