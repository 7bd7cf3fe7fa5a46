package payrollrun

import (
	"context"
	"fmt"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/notifier"
	"github.com/shopspring/decimal"
)

// Submit moves a run out of the draft/resolution phase toward finance
// approval. The pending-irregularity count is re-read here, at the boundary,
// so concurrent resolutions cannot leave a stale gate.
func (s *Service) Submit(ctx context.Context, runID, actorID string) (payrollrun.RunResponse, error) {
	release, ok := s.locks.TryAcquire("run:" + runID)
	if !ok {
		return payrollrun.RunResponse{}, payrollrun.ErrRunBusy
	}
	defer release()

	run, err := s.runRepo.GetRunByID(ctx, runID)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}

	if run.Status != payrollrun.StatusDraft && run.Status != payrollrun.StatusPendingIrregularity {
		return payrollrun.RunResponse{}, fmt.Errorf("run %s is %s: %w", runID, run.Status, payrollrun.ErrInvalidTransition)
	}

	pending, err := s.runRepo.CountPendingIrregularities(ctx, runID)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}
	if pending > 0 {
		if run.Status == payrollrun.StatusDraft {
			// Detection found something after the draft was created.
			if err := s.runRepo.UpdateRunStatus(ctx, runID, payrollrun.StatusDraft, payrollrun.StatusPendingIrregularity); err != nil {
				return payrollrun.RunResponse{}, err
			}
		}
		return payrollrun.RunResponse{}, fmt.Errorf("%d irregularities pending: %w", pending, payrollrun.ErrPendingIrregularity)
	}

	if err := s.runRepo.UpdateRunStatus(ctx, runID, run.Status, payrollrun.StatusPendingFinanceApproval); err != nil {
		return payrollrun.RunResponse{}, err
	}

	s.notify.Notify(ctx, notifier.Event{
		Kind:    "payroll_run.submitted",
		RunID:   runID,
		Actor:   actorID,
		Message: "payroll run submitted for finance approval",
	})

	return s.GetRun(ctx, runID)
}

// ResolveIrregularity applies one operator decision. Distinct irregularities
// of the same run may be resolved concurrently; idempotency per irregularity
// id comes from the repository's compare-and-swap on PENDING.
func (s *Service) ResolveIrregularity(ctx context.Context, irregularityID string, req payrollrun.ResolveIrregularityRequest) (payrollrun.IrregularityResponse, error) {
	if err := req.Validate(); err != nil {
		return payrollrun.IrregularityResponse{}, err
	}

	irr, err := s.runRepo.GetIrregularityByID(ctx, irregularityID)
	if err != nil {
		return payrollrun.IrregularityResponse{}, err
	}
	if irr.Status != payrollrun.IrregularityPending {
		return payrollrun.IrregularityResponse{}, payrollrun.ErrAlreadyResolved
	}

	run, err := s.runRepo.GetRunByID(ctx, irr.PayrollRunID)
	if err != nil {
		return payrollrun.IrregularityResponse{}, err
	}
	switch run.Status {
	case payrollrun.StatusDraft, payrollrun.StatusPendingIrregularity:
	default:
		return payrollrun.IrregularityResponse{}, fmt.Errorf("run %s is %s: %w", run.ID, run.Status, payrollrun.ErrInvalidTransition)
	}

	update := payrollrun.ResolutionUpdate{
		IrregularityID: irregularityID,
		Status:         req.ActionStatus(),
		Notes:          req.Notes,
		AdjustedValue:  req.AdjustedValue,
		ResolvedBy:     req.ResolvedBy,
	}

	switch update.Status {
	case payrollrun.IrregularityExcluded:
		update.ExcludeLine = true
		update.ExcludeEmployeeID = irr.EmployeeID

	case payrollrun.IrregularityApproved:
		// Detected value stands. A negative-net finding additionally records
		// the explicit override that makes the negative net legal.
		if irr.Kind == payrollrun.KindNegativeNet {
			line, err := s.runRepo.GetLine(ctx, irr.PayrollRunID, irr.EmployeeID)
			if err != nil {
				return payrollrun.IrregularityResponse{}, err
			}
			line.NegativeNetApproved = true
			update.UpdatedLine = &line
		}

	case payrollrun.IrregularityRejected:
		line, err := s.rewriteComponent(ctx, irr, irr.ExpectedValue)
		if err != nil {
			return payrollrun.IrregularityResponse{}, err
		}
		update.UpdatedLine = &line

	case payrollrun.IrregularityAdjusted:
		line, err := s.rewriteComponent(ctx, irr, *req.AdjustedValue)
		if err != nil {
			return payrollrun.IrregularityResponse{}, err
		}
		update.UpdatedLine = &line
	}

	if err := s.runRepo.ResolveIrregularity(ctx, update); err != nil {
		return payrollrun.IrregularityResponse{}, err
	}

	resolved, err := s.runRepo.GetIrregularityByID(ctx, irregularityID)
	if err != nil {
		return payrollrun.IrregularityResponse{}, err
	}
	return mapToIrregularityResponse(resolved), nil
}

// rewriteComponent substitutes a value into the irregularity's line component
// and recomputes net, keeping the net-pay invariant intact.
func (s *Service) rewriteComponent(ctx context.Context, irr payrollrun.Irregularity, value decimal.Decimal) (payrollrun.EmployeePayrollLine, error) {
	line, err := s.runRepo.GetLine(ctx, irr.PayrollRunID, irr.EmployeeID)
	if err != nil {
		return payrollrun.EmployeePayrollLine{}, err
	}

	switch irr.Component {
	case payrollrun.ComponentGross:
		line.GrossSalary = value
	case payrollrun.ComponentPenalties:
		line.Penalties = value
	default:
		return payrollrun.EmployeePayrollLine{}, fmt.Errorf("unknown line component %q", irr.Component)
	}
	line.RecomputeNet()
	return line, nil
}
