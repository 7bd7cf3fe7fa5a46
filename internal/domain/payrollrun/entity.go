package payrollrun

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunType enum
type RunType string

const (
	RunTypeAuto   RunType = "AUTO"
	RunTypeManual RunType = "MANUAL"
)

// RunStatus enum
type RunStatus string

const (
	StatusDraft                  RunStatus = "DRAFT"
	StatusPendingIrregularity    RunStatus = "PENDING_IRREGULARITY_RESOLUTION"
	StatusPendingFinanceApproval RunStatus = "PENDING_FINANCE_APPROVAL"
	StatusPendingManagerApproval RunStatus = "PENDING_MANAGER_APPROVAL"
	StatusApproved               RunStatus = "APPROVED"
	StatusFrozen                 RunStatus = "FROZEN"
	StatusPaid                   RunStatus = "PAID"
	StatusVoided                 RunStatus = "VOIDED"
)

// transitions holds the forward edges of the run lifecycle. The only backward
// edge is FROZEN -> PENDING_MANAGER_APPROVAL, which is the unfreeze path and
// additionally requires a recorded reason.
var transitions = map[RunStatus][]RunStatus{
	StatusDraft:                  {StatusPendingIrregularity, StatusPendingFinanceApproval, StatusVoided},
	StatusPendingIrregularity:    {StatusPendingFinanceApproval, StatusVoided},
	StatusPendingFinanceApproval: {StatusPendingManagerApproval, StatusVoided},
	StatusPendingManagerApproval: {StatusApproved, StatusVoided},
	StatusApproved:               {StatusFrozen, StatusVoided},
	StatusFrozen:                 {StatusPaid, StatusPendingManagerApproval},
	StatusPaid:                   {},
	StatusVoided:                 {},
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle edge.
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s RunStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// PayrollRun - one batch computation of pay for a payroll area over a period
type PayrollRun struct {
	ID            string
	PayrollAreaID string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	RunType       RunType
	Status        RunStatus
	GeneratedAt   time.Time
	CreatedBy     string
	ArchivedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined
	Lines []EmployeePayrollLine
}

// EmployeePayrollLine - one employee's computed pay inside a run
type EmployeePayrollLine struct {
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
	// NegativeNetApproved is the explicit override that permits a negative net,
	// set only by an approved negative-net irregularity resolution.
	NegativeNetApproved bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RecomputeNet derives net pay from the line's components.
// Net is computed here exactly once and never re-derived downstream.
func (l *EmployeePayrollLine) RecomputeNet() {
	l.NetSalary = l.GrossSalary.
		Sub(l.Taxes).
		Sub(l.Insurance).
		Sub(l.Penalties).
		Add(l.Refunds)
}

// NetConsistent reports whether the stored net matches its components.
func (l EmployeePayrollLine) NetConsistent() bool {
	want := l.GrossSalary.Sub(l.Taxes).Sub(l.Insurance).Sub(l.Penalties).Add(l.Refunds)
	return l.NetSalary.Equal(want)
}

// IrregularityKind enum
type IrregularityKind string

const (
	KindGrossDelta   IrregularityKind = "GROSS_DELTA"
	KindNegativeNet  IrregularityKind = "NEGATIVE_NET"
	KindPenaltySpike IrregularityKind = "PENALTY_SPIKE"
)

// LineComponent names the line field an irregularity was raised against and
// that a rejected/adjusted resolution rewrites.
type LineComponent string

const (
	ComponentGross     LineComponent = "gross_salary"
	ComponentPenalties LineComponent = "penalties"
)

// IrregularityStatus enum
type IrregularityStatus string

const (
	IrregularityPending  IrregularityStatus = "PENDING"
	IrregularityApproved IrregularityStatus = "APPROVED"
	IrregularityRejected IrregularityStatus = "REJECTED"
	IrregularityExcluded IrregularityStatus = "EXCLUDED"
	IrregularityAdjusted IrregularityStatus = "ADJUSTED"
)

// Irregularity - a detected anomaly on a line, pending operator resolution
type Irregularity struct {
	ID            string
	PayrollRunID  string
	EmployeeID    string
	Kind          IrregularityKind
	Component     LineComponent
	DetectedValue decimal.Decimal
	ExpectedValue decimal.Decimal
	Status        IrregularityStatus
	AdjustedValue *decimal.Decimal
	Notes         *string
	CreatedAt     time.Time
	ResolvedAt    *time.Time
	ResolvedBy    *string
}

// ApprovalRole enum
type ApprovalRole string

const (
	RoleFinance ApprovalRole = "finance"
	RoleManager ApprovalRole = "manager"
)

// ApprovalAction enum
type ApprovalAction string

const (
	ActionApprove  ApprovalAction = "approve"
	ActionUnfreeze ApprovalAction = "unfreeze"
	ActionVoid     ApprovalAction = "void"
)

// RunApproval - one recorded sign-off (or unfreeze/void) on a run
type RunApproval struct {
	ID           string
	PayrollRunID string
	Role         ApprovalRole
	Action       ApprovalAction
	ActorID      string
	Comment      *string
	CreatedAt    time.Time
}
