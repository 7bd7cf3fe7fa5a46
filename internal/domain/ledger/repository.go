package ledger

import "context"

// Repository defines data access for disputes, claims, refunds and dispute
// review chains. Status updates are compare-and-swap on the expected status.
type Repository interface {
	// Disputes
	CreateDispute(ctx context.Context, d Dispute) (Dispute, error)
	GetDisputeByID(ctx context.Context, id string) (Dispute, error)
	ListDisputes(ctx context.Context) ([]Dispute, error)
	AppendReviewStep(ctx context.Context, step ReviewStep, nextStatus DisputeStatus) (ReviewStep, error)

	// Claims
	CreateClaim(ctx context.Context, c Claim) (Claim, error)
	GetClaimByID(ctx context.Context, id string) (Claim, error)
	ListClaims(ctx context.Context) ([]Claim, error)
	UpdateClaimStatus(ctx context.Context, id string, expected, next ClaimStatus, reviewedBy string) error

	// Refunds
	CreateRefund(ctx context.Context, r Refund) (Refund, error)
	GetRefundByID(ctx context.Context, id string) (Refund, error)
	ListRefunds(ctx context.Context) ([]Refund, error)
	UpdateRefundStatus(ctx context.Context, id string, expected, next RefundStatus, actorID string, paidInRunID *string) error
	// ListApprovedUnpaidRefunds returns refunds the next payroll computation
	// should settle for the given employees.
	ListApprovedUnpaidRefunds(ctx context.Context, employeeIDs []string) ([]Refund, error)
	MarkRefundsPaid(ctx context.Context, ids []string, runID string) error

	// RelinkPayslip rewrites a record's payslip reference during reconciliation.
	RelinkPayslip(ctx context.Context, kind RecordKind, id, payslipID string) error
}
