package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind enum
type RecordKind string

const (
	KindDispute RecordKind = "dispute"
	KindClaim   RecordKind = "claim"
	KindRefund  RecordKind = "refund"
)

// ReviewStage enum - the role chain a dispute moves through
type ReviewStage string

const (
	StageSpecialist ReviewStage = "specialist"
	StageManager    ReviewStage = "manager"
	StageFinance    ReviewStage = "finance"
)

// ReviewStep is one recorded review in a dispute's chain. Each step carries
// exactly the actor valid for its stage, replacing the old shape where
// stage-specific actor columns were present only sometimes.
type ReviewStep struct {
	ID        string
	DisputeID string
	Stage     ReviewStage
	ActorID   string
	Note      *string
	CreatedAt time.Time
}

// DisputeStatus enum
type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "OPEN"
	DisputeUnderReview DisputeStatus = "UNDER_REVIEW"
	DisputeResolved    DisputeStatus = "RESOLVED"
	DisputeRejected    DisputeStatus = "REJECTED"
)

// Dispute - employee-raised challenge against a specific payslip
type Dispute struct {
	ID         string
	PayslipID  string
	EmployeeID string
	Amount     decimal.Decimal
	Reason     string
	Status     DisputeStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined
	Reviews []ReviewStep
}

// NextStage returns the review stage a dispute in this status expects, or ""
// when no further review applies.
func (s DisputeStatus) NextStage(completed int) ReviewStage {
	switch {
	case s != DisputeOpen && s != DisputeUnderReview:
		return ""
	case completed == 0:
		return StageSpecialist
	case completed == 1:
		return StageManager
	case completed == 2:
		return StageFinance
	}
	return ""
}

// ClaimStatus enum
type ClaimStatus string

const (
	ClaimSubmitted ClaimStatus = "SUBMITTED"
	ClaimApproved  ClaimStatus = "APPROVED"
	ClaimRejected  ClaimStatus = "REJECTED"
)

// Claim - staff-raised expense claim against a payslip
type Claim struct {
	ID          string
	PayslipID   string
	EmployeeID  string
	Amount      decimal.Decimal
	Description string
	Status      ClaimStatus
	ReviewedBy  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RefundStatus enum
type RefundStatus string

const (
	RefundPending  RefundStatus = "PENDING"
	RefundApproved RefundStatus = "APPROVED"
	RefundPaid     RefundStatus = "PAID"
)

// Refund - money owed back to an employee against a payslip. An approved
// refund is picked up by the next payroll computation for that employee and
// marked PAID with the run that settled it.
type Refund struct {
	ID                 string
	PayslipID          string
	EmployeeID         string
	Amount             decimal.Decimal
	Reason             string
	Status             RefundStatus
	ApprovedBy         *string
	PaidInPayrollRunID *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
