package payrollrun

import (
	"context"
	"time"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/employee"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/ledger"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/notifier"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/runlock"
)

// Service orchestrates the payroll run lifecycle: computation, irregularity
// resolution, multi-role approval, freeze and payout.
type Service struct {
	runRepo     payrollrun.Repository
	payslipRepo payslip.Repository
	ledgerRepo  ledger.Repository
	directory   employee.Directory
	detector    *Detector
	locks       *runlock.Arena
	freezeGuard *runlock.Guard
	notify      notifier.Sender
}

func NewService(
	runRepo payrollrun.Repository,
	payslipRepo payslip.Repository,
	ledgerRepo ledger.Repository,
	directory employee.Directory,
	detector *Detector,
	locks *runlock.Arena,
	freezeGuard *runlock.Guard,
	notify notifier.Sender,
) *Service {
	return &Service{
		runRepo:     runRepo,
		payslipRepo: payslipRepo,
		ledgerRepo:  ledgerRepo,
		directory:   directory,
		detector:    detector,
		locks:       locks,
		freezeGuard: freezeGuard,
		notify:      notify,
	}
}

func (s *Service) GetRun(ctx context.Context, id string) (payrollrun.RunResponse, error) {
	run, err := s.runRepo.GetRunByID(ctx, id)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}

	lines, err := s.runRepo.GetLinesByRunID(ctx, id)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}
	run.Lines = lines

	irregularities, err := s.runRepo.ListIrregularitiesByRun(ctx, id)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}

	return mapToRunResponse(run, irregularities, false), nil
}

func (s *Service) ListRuns(ctx context.Context, filter payrollrun.ListRunsFilter) ([]payrollrun.RunResponse, int64, error) {
	runs, total, err := s.runRepo.ListRuns(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]payrollrun.RunResponse, 0, len(runs))
	for _, run := range runs {
		result = append(result, mapToRunResponse(run, nil, false))
	}
	return result, total, nil
}

func (s *Service) GetIrregularity(ctx context.Context, id string) (payrollrun.IrregularityResponse, error) {
	irr, err := s.runRepo.GetIrregularityByID(ctx, id)
	if err != nil {
		return payrollrun.IrregularityResponse{}, err
	}
	return mapToIrregularityResponse(irr), nil
}

// ========== HELPERS ==========

func mapToRunResponse(run payrollrun.PayrollRun, irregularities []payrollrun.Irregularity, dryRun bool) payrollrun.RunResponse {
	resp := payrollrun.RunResponse{
		ID:            run.ID,
		PayrollAreaID: run.PayrollAreaID,
		PeriodStart:   run.PeriodStart.Format("2006-01-02"),
		PeriodEnd:     run.PeriodEnd.Format("2006-01-02"),
		RunType:       string(run.RunType),
		Status:        string(run.Status),
		GeneratedAt:   run.GeneratedAt.Format(time.RFC3339),
		CreatedBy:     run.CreatedBy,
		DryRun:        dryRun,
	}

	for _, line := range run.Lines {
		resp.Lines = append(resp.Lines, mapToLineResponse(line))
	}
	for _, irr := range irregularities {
		resp.Irregularities = append(resp.Irregularities, mapToIrregularityResponse(irr))
	}
	return resp
}

func mapToLineResponse(line payrollrun.EmployeePayrollLine) payrollrun.LineResponse {
	return payrollrun.LineResponse{
		ID:                  line.ID,
		EmployeeID:          line.EmployeeID,
		EmployeeName:        line.EmployeeName,
		GrossSalary:         line.GrossSalary,
		Taxes:               line.Taxes,
		Insurance:           line.Insurance,
		Penalties:           line.Penalties,
		Refunds:             line.Refunds,
		NetSalary:           line.NetSalary,
		NegativeNetApproved: line.NegativeNetApproved,
	}
}

func mapToIrregularityResponse(irr payrollrun.Irregularity) payrollrun.IrregularityResponse {
	return payrollrun.IrregularityResponse{
		ID:            irr.ID,
		PayrollRunID:  irr.PayrollRunID,
		EmployeeID:    irr.EmployeeID,
		Kind:          string(irr.Kind),
		Component:     string(irr.Component),
		DetectedValue: irr.DetectedValue,
		ExpectedValue: irr.ExpectedValue,
		Status:        string(irr.Status),
		AdjustedValue: irr.AdjustedValue,
		Notes:         irr.Notes,
	}
}
