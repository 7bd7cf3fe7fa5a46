package payslip

import "context"

// Repository defines read access for payslips. Payslips are only ever written
// as part of a freeze transaction, which the payroll run repository owns.
type Repository interface {
	GetByID(ctx context.Context, id string) (Payslip, error)
	ListByRunID(ctx context.Context, runID string) ([]Payslip, error)
	ListByEmployeeID(ctx context.Context, employeeID string) ([]Payslip, error)
	// LatestForEmployee returns the employee's payslip from the most recent
	// non-voided run, if any.
	LatestForEmployee(ctx context.Context, employeeID string) (Payslip, error)
	// LatestValidRunID returns the id of the most recent run that still exists
	// and has payslips. Used by ledger reconciliation to re-link dangling records.
	LatestValidRunID(ctx context.Context) (string, error)
}
