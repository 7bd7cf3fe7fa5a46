package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/ledger"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/service/reference"
	"github.com/google/uuid"
)

// Service owns the post-payout ledger: disputes, claims and refunds raised
// against payslips. Every write goes through the reference validator first, so
// a record can never be persisted pointing at a payslip or run that does not
// exist.
type Service struct {
	repo        ledger.Repository
	payslipRepo payslip.Repository
	validator   *reference.Validator
}

func NewService(repo ledger.Repository, payslipRepo payslip.Repository, validator *reference.Validator) *Service {
	return &Service{repo: repo, payslipRepo: payslipRepo, validator: validator}
}

// ========== DISPUTES ==========

func (s *Service) CreateDispute(ctx context.Context, req ledger.CreateDisputeRequest) (ledger.Dispute, error) {
	if err := req.Validate(); err != nil {
		return ledger.Dispute{}, err
	}

	if _, err := s.validator.ResolvePayslip(ctx, req.PayslipID); err != nil {
		return ledger.Dispute{}, err
	}

	dispute := ledger.Dispute{
		ID:         uuid.NewString(),
		PayslipID:  req.PayslipID,
		EmployeeID: req.EmployeeID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		Status:     ledger.DisputeOpen,
	}
	return s.repo.CreateDispute(ctx, dispute)
}

func (s *Service) GetDispute(ctx context.Context, id string) (ledger.Dispute, error) {
	return s.repo.GetDisputeByID(ctx, id)
}

func (s *Service) ListDisputes(ctx context.Context) ([]ledger.Dispute, error) {
	return s.repo.ListDisputes(ctx)
}

// ReviewDispute records the next step in the specialist -> manager -> finance
// chain. The caller's role must be the one the pending stage expects; a
// rejection at any stage closes the dispute and the finance step resolves it.
func (s *Service) ReviewDispute(ctx context.Context, id, actorID, actorRole string, approve bool, note *string) (ledger.Dispute, error) {
	dispute, err := s.repo.GetDisputeByID(ctx, id)
	if err != nil {
		return ledger.Dispute{}, err
	}

	stage := dispute.Status.NextStage(len(dispute.Reviews))
	if stage == "" {
		return ledger.Dispute{}, fmt.Errorf("dispute %s is %s: %w", id, dispute.Status, ledger.ErrAlreadyReviewed)
	}
	if actorRole != string(stage) {
		return ledger.Dispute{}, fmt.Errorf("dispute %s awaits %s review: %w", id, stage, ledger.ErrWrongReviewStage)
	}

	nextStatus := ledger.DisputeUnderReview
	if !approve {
		nextStatus = ledger.DisputeRejected
	} else if stage == ledger.StageFinance {
		nextStatus = ledger.DisputeResolved
	}

	step := ledger.ReviewStep{
		ID:        uuid.NewString(),
		DisputeID: id,
		Stage:     stage,
		ActorID:   actorID,
		Note:      note,
	}
	if _, err := s.repo.AppendReviewStep(ctx, step, nextStatus); err != nil {
		return ledger.Dispute{}, err
	}

	return s.repo.GetDisputeByID(ctx, id)
}

// ========== CLAIMS ==========

func (s *Service) CreateClaim(ctx context.Context, req ledger.CreateClaimRequest) (ledger.Claim, error) {
	if err := req.Validate(); err != nil {
		return ledger.Claim{}, err
	}

	if _, err := s.validator.ResolvePayslip(ctx, req.PayslipID); err != nil {
		return ledger.Claim{}, err
	}

	claim := ledger.Claim{
		ID:          uuid.NewString(),
		PayslipID:   req.PayslipID,
		EmployeeID:  req.EmployeeID,
		Amount:      req.Amount,
		Description: req.Description,
		Status:      ledger.ClaimSubmitted,
	}
	return s.repo.CreateClaim(ctx, claim)
}

func (s *Service) GetClaim(ctx context.Context, id string) (ledger.Claim, error) {
	return s.repo.GetClaimByID(ctx, id)
}

func (s *Service) ListClaims(ctx context.Context) ([]ledger.Claim, error) {
	return s.repo.ListClaims(ctx)
}

func (s *Service) ReviewClaim(ctx context.Context, id string, req ledger.ReviewClaimRequest) (ledger.Claim, error) {
	next := ledger.ClaimApproved
	if !req.Approve {
		next = ledger.ClaimRejected
	}

	if err := s.repo.UpdateClaimStatus(ctx, id, ledger.ClaimSubmitted, next, req.ReviewerID); err != nil {
		return ledger.Claim{}, err
	}
	return s.repo.GetClaimByID(ctx, id)
}

// ========== REFUNDS ==========

func (s *Service) CreateRefund(ctx context.Context, req ledger.CreateRefundRequest) (ledger.Refund, error) {
	if err := req.Validate(); err != nil {
		return ledger.Refund{}, err
	}

	if _, err := s.validator.ResolvePayslip(ctx, req.PayslipID); err != nil {
		return ledger.Refund{}, err
	}

	refund := ledger.Refund{
		ID:         uuid.NewString(),
		PayslipID:  req.PayslipID,
		EmployeeID: req.EmployeeID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		Status:     ledger.RefundPending,
	}
	return s.repo.CreateRefund(ctx, refund)
}

func (s *Service) GetRefund(ctx context.Context, id string) (ledger.Refund, error) {
	return s.repo.GetRefundByID(ctx, id)
}

func (s *Service) ListRefunds(ctx context.Context) ([]ledger.Refund, error) {
	return s.repo.ListRefunds(ctx)
}

func (s *Service) ApproveRefund(ctx context.Context, id, actorID string) (ledger.Refund, error) {
	if err := s.repo.UpdateRefundStatus(ctx, id, ledger.RefundPending, ledger.RefundApproved, actorID, nil); err != nil {
		return ledger.Refund{}, err
	}
	return s.repo.GetRefundByID(ctx, id)
}

// PayRefund settles an approved refund against the run that paid it out.
// The paying run must itself pass the reference check.
func (s *Service) PayRefund(ctx context.Context, id string, req ledger.PayRefundRequest) (ledger.Refund, error) {
	if err := req.Validate(); err != nil {
		return ledger.Refund{}, err
	}

	if err := s.validator.CheckRun(ctx, req.PaidInPayrollRunID); err != nil {
		return ledger.Refund{}, err
	}

	if err := s.repo.UpdateRefundStatus(ctx, id, ledger.RefundApproved, ledger.RefundPaid, req.ActorID, &req.PaidInPayrollRunID); err != nil {
		return ledger.Refund{}, err
	}

	slog.Info("refund paid", "refund_id", id, "run_id", req.PaidInPayrollRunID, "actor", req.ActorID)
	return s.repo.GetRefundByID(ctx, id)
}
