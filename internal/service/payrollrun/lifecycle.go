package payrollrun

import (
	"context"
	"fmt"
	"time"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/notifier"
	"github.com/google/uuid"
)

// Approve records a role sign-off and advances the run. Finance moves
// PENDING_FINANCE_APPROVAL to PENDING_MANAGER_APPROVAL; manager moves
// PENDING_MANAGER_APPROVAL to APPROVED and requires the finance sign-off to
// already exist. Double approval or out-of-order approval fails.
func (s *Service) Approve(ctx context.Context, runID string, req payrollrun.ApproveRequest) (payrollrun.RunResponse, error) {
	release, ok := s.locks.TryAcquire("run:" + runID)
	if !ok {
		return payrollrun.RunResponse{}, payrollrun.ErrRunBusy
	}
	defer release()

	var expected, next payrollrun.RunStatus
	switch req.Role {
	case payrollrun.RoleFinance:
		expected, next = payrollrun.StatusPendingFinanceApproval, payrollrun.StatusPendingManagerApproval
	case payrollrun.RoleManager:
		expected, next = payrollrun.StatusPendingManagerApproval, payrollrun.StatusApproved
	default:
		return payrollrun.RunResponse{}, fmt.Errorf("unknown approval role %q: %w", req.Role, payrollrun.ErrInvalidTransition)
	}

	if req.Role == payrollrun.RoleManager {
		financeApproved, err := s.runRepo.HasApproval(ctx, runID, payrollrun.RoleFinance, payrollrun.ActionApprove)
		if err != nil {
			return payrollrun.RunResponse{}, err
		}
		if !financeApproved {
			return payrollrun.RunResponse{}, fmt.Errorf("finance approval missing: %w", payrollrun.ErrInvalidTransition)
		}
	}

	approval := payrollrun.RunApproval{
		ID:           uuid.NewString(),
		PayrollRunID: runID,
		Role:         req.Role,
		Action:       payrollrun.ActionApprove,
		ActorID:      req.ActorID,
		Comment:      req.Comment,
	}
	if err := s.runRepo.TransitionWithApproval(ctx, runID, expected, next, approval); err != nil {
		return payrollrun.RunResponse{}, err
	}

	s.notify.Notify(ctx, notifier.Event{
		Kind:    "payroll_run.approved",
		RunID:   runID,
		Actor:   req.ActorID,
		Message: fmt.Sprintf("%s approval recorded", req.Role),
	})

	return s.GetRun(ctx, runID)
}

// Freeze materializes payslips from the run's lines (1:1) and flips the run to
// FROZEN. It shares the freeze guard so the scheduled backup can never overlap.
func (s *Service) Freeze(ctx context.Context, runID, actorID string) ([]payslip.Response, error) {
	release, ok := s.locks.TryAcquire("run:" + runID)
	if !ok {
		return nil, payrollrun.ErrRunBusy
	}
	defer release()

	guardRelease, ok := s.freezeGuard.TryShared()
	if !ok {
		return nil, payrollrun.ErrRunBusy
	}
	defer guardRelease()

	run, err := s.runRepo.GetRunByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != payrollrun.StatusApproved {
		return nil, fmt.Errorf("run %s is %s: %w", runID, run.Status, payrollrun.ErrInvalidTransition)
	}

	lines, err := s.runRepo.GetLinesByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now()
	payslips := make([]payslip.Payslip, 0, len(lines))
	for _, line := range lines {
		payslips = append(payslips, payslip.Payslip{
			ID:           uuid.NewString(),
			PayrollRunID: runID,
			EmployeeID:   line.EmployeeID,
			EmployeeName: line.EmployeeName,
			GrossSalary:  line.GrossSalary,
			Taxes:        line.Taxes,
			Insurance:    line.Insurance,
			Penalties:    line.Penalties,
			Refunds:      line.Refunds,
			NetSalary:    line.NetSalary,
			IssuedAt:     issuedAt,
		})
	}

	if err := s.runRepo.FreezeRun(ctx, runID, payslips); err != nil {
		return nil, err
	}

	s.notify.Notify(ctx, notifier.Event{
		Kind:    "payroll_run.frozen",
		RunID:   runID,
		Actor:   actorID,
		Message: fmt.Sprintf("run frozen, %d payslips issued", len(payslips)),
	})

	result := make([]payslip.Response, 0, len(payslips))
	for _, p := range payslips {
		result = append(result, payslip.ToResponse(p))
	}
	return result, nil
}

// Unfreeze returns a FROZEN run to manager review. Amounts are not recomputed;
// if underlying data changed, an explicit new computation is required.
func (s *Service) Unfreeze(ctx context.Context, runID string, req payrollrun.UnfreezeRequest) (payrollrun.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payrollrun.RunResponse{}, err
	}

	release, ok := s.locks.TryAcquire("run:" + runID)
	if !ok {
		return payrollrun.RunResponse{}, payrollrun.ErrRunBusy
	}
	defer release()

	approval := payrollrun.RunApproval{
		ID:           uuid.NewString(),
		PayrollRunID: runID,
		Role:         payrollrun.RoleManager,
		Action:       payrollrun.ActionUnfreeze,
		ActorID:      req.ActorID,
		Comment:      &req.Reason,
	}
	if err := s.runRepo.TransitionWithApproval(ctx, runID, payrollrun.StatusFrozen, payrollrun.StatusPendingManagerApproval, approval); err != nil {
		return payrollrun.RunResponse{}, err
	}

	s.notify.Notify(ctx, notifier.Event{
		Kind:    "payroll_run.unfrozen",
		RunID:   runID,
		Actor:   req.ActorID,
		Message: "run unfrozen: " + req.Reason,
	})

	return s.GetRun(ctx, runID)
}

// Void terminates a run before freeze. Lines are retained for audit; no
// payslips are ever produced from a voided run.
func (s *Service) Void(ctx context.Context, runID, actorID string, reason *string) (payrollrun.RunResponse, error) {
	release, ok := s.locks.TryAcquire("run:" + runID)
	if !ok {
		return payrollrun.RunResponse{}, payrollrun.ErrRunBusy
	}
	defer release()

	run, err := s.runRepo.GetRunByID(ctx, runID)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}
	if !run.Status.CanTransitionTo(payrollrun.StatusVoided) {
		return payrollrun.RunResponse{}, fmt.Errorf("run %s is %s: %w", runID, run.Status, payrollrun.ErrInvalidTransition)
	}

	approval := payrollrun.RunApproval{
		ID:           uuid.NewString(),
		PayrollRunID: runID,
		Role:         payrollrun.RoleManager,
		Action:       payrollrun.ActionVoid,
		ActorID:      actorID,
		Comment:      reason,
	}
	if err := s.runRepo.TransitionWithApproval(ctx, runID, run.Status, payrollrun.StatusVoided, approval); err != nil {
		return payrollrun.RunResponse{}, err
	}

	s.notify.Notify(ctx, notifier.Event{
		Kind:  "payroll_run.voided",
		RunID: runID,
		Actor: actorID,
	})

	return s.GetRun(ctx, runID)
}

// MarkPaid settles a FROZEN run: flips it to PAID, archives it, and marks the
// refunds the computation folded in as paid out in this run.
func (s *Service) MarkPaid(ctx context.Context, runID, actorID string) (payrollrun.RunResponse, error) {
	release, ok := s.locks.TryAcquire("run:" + runID)
	if !ok {
		return payrollrun.RunResponse{}, payrollrun.ErrRunBusy
	}
	defer release()

	if err := s.runRepo.UpdateRunStatus(ctx, runID, payrollrun.StatusFrozen, payrollrun.StatusPaid); err != nil {
		return payrollrun.RunResponse{}, err
	}
	if err := s.runRepo.ArchiveRun(ctx, runID); err != nil {
		return payrollrun.RunResponse{}, err
	}

	lines, err := s.runRepo.GetLinesByRunID(ctx, runID)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}
	employeeIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		employeeIDs = append(employeeIDs, line.EmployeeID)
	}
	settled, err := s.ledgerRepo.ListApprovedUnpaidRefunds(ctx, employeeIDs)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}
	if len(settled) > 0 {
		refundIDs := make([]string, 0, len(settled))
		for _, r := range settled {
			refundIDs = append(refundIDs, r.ID)
		}
		if err := s.ledgerRepo.MarkRefundsPaid(ctx, refundIDs, runID); err != nil {
			return payrollrun.RunResponse{}, err
		}
	}

	s.notify.Notify(ctx, notifier.Event{
		Kind:  "payroll_run.paid",
		RunID: runID,
		Actor: actorID,
	})

	return s.GetRun(ctx, runID)
}
