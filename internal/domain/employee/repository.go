package employee

import (
	"context"
	"time"
)

// Directory is the read-only view of the employee/compensation directory the
// payroll core consumes. Writes live with the (external) HR administration
// modules.
type Directory interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByIDs(ctx context.Context, ids []string) ([]Employee, error)
	GetActiveByArea(ctx context.Context, payrollAreaID string) ([]Employee, error)
	ListCompensation(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) ([]CompensationRecord, error)
	ListInfractions(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) ([]Infraction, error)
	ListTaxBrackets(ctx context.Context) ([]TaxBracket, error)
}
