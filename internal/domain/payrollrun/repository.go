package payrollrun

import (
	"context"
	"time"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
	"github.com/shopspring/decimal"
)

// ResolutionUpdate is the atomic effect of one irregularity resolution: the
// status flip plus whatever the chosen action does to the affected line.
// The whole update commits together or not at all.
type ResolutionUpdate struct {
	IrregularityID string
	Status         IrregularityStatus
	Notes          string
	AdjustedValue  *decimal.Decimal
	ResolvedBy     string

	// UpdatedLine, when non-nil, replaces the line's amounts.
	UpdatedLine *EmployeePayrollLine
	// ExcludeLine removes the employee's line from the run.
	ExcludeLine       bool
	ExcludeEmployeeID string
}

// Repository defines data access for payroll runs, lines, irregularities and
// approvals. Multi-row writes (run+lines, freeze+payslips, resolution+line)
// are single methods so a request is all-or-nothing. Status updates are
// compare-and-swap on the caller-supplied expected status; a swap miss
// surfaces ErrInvalidTransition (runs) or ErrAlreadyResolved (irregularities).
type Repository interface {
	// Runs
	CreateRunWithLines(ctx context.Context, run PayrollRun, lines []EmployeePayrollLine, irregularities []Irregularity) (PayrollRun, error)
	GetRunByID(ctx context.Context, id string) (PayrollRun, error)
	ListRuns(ctx context.Context, filter ListRunsFilter) ([]PayrollRun, int64, error)
	// HasOverlappingRun reports whether a non-voided run for the area overlaps
	// the given period.
	HasOverlappingRun(ctx context.Context, payrollAreaID string, periodStart, periodEnd time.Time) (bool, error)
	UpdateRunStatus(ctx context.Context, id string, expected, next RunStatus) error
	// TransitionWithApproval performs the status compare-and-swap and records
	// the sign-off row in one transaction.
	TransitionWithApproval(ctx context.Context, id string, expected, next RunStatus, approval RunApproval) error
	ArchiveRun(ctx context.Context, id string) error

	// Lines
	GetLinesByRunID(ctx context.Context, runID string) ([]EmployeePayrollLine, error)
	GetLine(ctx context.Context, runID, employeeID string) (EmployeePayrollLine, error)
	// GetLatestLineForEmployee returns the employee's line from the most
	// recent non-voided run in the area that started before the given date.
	// Used as the detection baseline.
	GetLatestLineForEmployee(ctx context.Context, payrollAreaID, employeeID string, before time.Time) (EmployeePayrollLine, error)

	// Irregularities
	GetIrregularityByID(ctx context.Context, id string) (Irregularity, error)
	ListIrregularitiesByRun(ctx context.Context, runID string) ([]Irregularity, error)
	// CountPendingIrregularities re-reads the live count; callers at a phase
	// boundary must use this rather than any cached value.
	CountPendingIrregularities(ctx context.Context, runID string) (int64, error)
	ResolveIrregularity(ctx context.Context, update ResolutionUpdate) error

	// Approvals
	GetApprovals(ctx context.Context, runID string) ([]RunApproval, error)
	HasApproval(ctx context.Context, runID string, role ApprovalRole, action ApprovalAction) (bool, error)

	// FreezeRun materializes one payslip per line and flips APPROVED to FROZEN
	// in a single transaction. Payslips from an earlier freeze of the same run
	// are superseded, never accumulated.
	FreezeRun(ctx context.Context, runID string, payslips []payslip.Payslip) error
}
