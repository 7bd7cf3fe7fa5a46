package payrollrun

import (
	"context"
	"fmt"
	"time"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/employee"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/notifier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const monetaryScale = 2

// ComputeRun generates a payroll run for an area and period: one line per
// eligible employee, irregularity detection over the result, and a DRAFT run
// persisted with its lines unless DryRun is set.
func (s *Service) ComputeRun(ctx context.Context, req payrollrun.ComputeRunRequest) (payrollrun.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payrollrun.RunResponse{}, err
	}

	periodStart, periodEnd := req.Period()
	if periodStart.After(periodEnd) {
		return payrollrun.RunResponse{}, fmt.Errorf("period start after end: %w", payrollrun.ErrInvalidPeriod)
	}

	// One computation per area at a time; a concurrent request must not
	// interleave with this one.
	release, ok := s.locks.TryAcquire("area:" + req.PayrollAreaID)
	if !ok {
		return payrollrun.RunResponse{}, payrollrun.ErrRunBusy
	}
	defer release()

	overlaps, err := s.runRepo.HasOverlappingRun(ctx, req.PayrollAreaID, periodStart, periodEnd)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}
	if overlaps {
		return payrollrun.RunResponse{}, fmt.Errorf("period overlaps an existing run for area %s: %w", req.PayrollAreaID, payrollrun.ErrInvalidPeriod)
	}

	employees, err := s.eligibleEmployees(ctx, req)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}
	if len(employees) == 0 {
		return payrollrun.RunResponse{}, payrollrun.ErrNoEligibleEmployees
	}

	brackets, err := s.directory.ListTaxBrackets(ctx)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}

	employeeIDs := make([]string, 0, len(employees))
	for _, emp := range employees {
		employeeIDs = append(employeeIDs, emp.ID)
	}
	pendingRefunds, err := s.ledgerRepo.ListApprovedUnpaidRefunds(ctx, employeeIDs)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}
	refundsByEmployee := make(map[string]decimal.Decimal)
	for _, r := range pendingRefunds {
		refundsByEmployee[r.EmployeeID] = refundsByEmployee[r.EmployeeID].Add(r.Amount)
	}

	run := payrollrun.PayrollRun{
		ID:            uuid.NewString(),
		PayrollAreaID: req.PayrollAreaID,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		RunType:       payrollrun.RunType(req.RunType),
		Status:        payrollrun.StatusDraft,
		GeneratedAt:   time.Now(),
		CreatedBy:     req.CreatedBy,
	}

	// Lines are independent of each other until the per-line net check, so
	// compute them in parallel.
	lines := make([]payrollrun.EmployeePayrollLine, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	for i, emp := range employees {
		g.Go(func() error {
			line, err := s.computeLine(gctx, run, emp, refundsByEmployee[emp.ID], brackets)
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payrollrun.RunResponse{}, err
	}

	irregularities := s.detectAll(ctx, run, lines)
	if len(irregularities) > 0 {
		run.Status = payrollrun.StatusPendingIrregularity
	}

	if req.DryRun {
		run.Lines = lines
		return mapToRunResponse(run, irregularities, true), nil
	}

	created, err := s.runRepo.CreateRunWithLines(ctx, run, lines, irregularities)
	if err != nil {
		return payrollrun.RunResponse{}, err
	}
	created.Lines = lines

	s.notify.Notify(ctx, notifier.Event{
		Kind:    "payroll_run.generated",
		RunID:   created.ID,
		Actor:   req.CreatedBy,
		Message: fmt.Sprintf("payroll run generated with %d lines, %d irregularities", len(lines), len(irregularities)),
	})

	return mapToRunResponse(created, irregularities, false), nil
}

func (s *Service) eligibleEmployees(ctx context.Context, req payrollrun.ComputeRunRequest) ([]employee.Employee, error) {
	if len(req.EmployeeIDs) == 0 {
		return s.directory.GetActiveByArea(ctx, req.PayrollAreaID)
	}

	all, err := s.directory.GetByIDs(ctx, req.EmployeeIDs)
	if err != nil {
		return nil, err
	}

	var eligible []employee.Employee
	for _, emp := range all {
		if emp.Status == employee.StatusActive && emp.PayrollAreaID == req.PayrollAreaID {
			eligible = append(eligible, emp)
		}
	}
	return eligible, nil
}

// computeLine produces one employee's line. Net is derived here exactly once;
// every later mutation goes through RecomputeNet.
func (s *Service) computeLine(ctx context.Context, run payrollrun.PayrollRun, emp employee.Employee, refunds decimal.Decimal, brackets []employee.TaxBracket) (payrollrun.EmployeePayrollLine, error) {
	compensation, err := s.directory.ListCompensation(ctx, emp.ID, run.PeriodStart, run.PeriodEnd)
	if err != nil {
		return payrollrun.EmployeePayrollLine{}, err
	}

	gross := decimal.Zero
	for _, c := range compensation {
		if c.ActiveDuring(run.PeriodStart, run.PeriodEnd) {
			gross = gross.Add(c.Amount)
		}
	}

	taxes, insurance := applyBrackets(gross, brackets)

	infractions, err := s.directory.ListInfractions(ctx, emp.ID, run.PeriodStart, run.PeriodEnd)
	if err != nil {
		return payrollrun.EmployeePayrollLine{}, err
	}
	penalties := decimal.Zero
	for _, inf := range infractions {
		penalties = penalties.Add(inf.Amount)
	}

	line := payrollrun.EmployeePayrollLine{
		ID:           uuid.NewString(),
		PayrollRunID: run.ID,
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		GrossSalary:  gross.Round(monetaryScale),
		Taxes:        taxes,
		Insurance:    insurance,
		Penalties:    penalties.Round(monetaryScale),
		Refunds:      refunds.Round(monetaryScale),
	}
	line.RecomputeNet()
	return line, nil
}

func applyBrackets(gross decimal.Decimal, brackets []employee.TaxBracket) (taxes, insurance decimal.Decimal) {
	for _, b := range brackets {
		if b.Matches(gross) {
			return gross.Mul(b.TaxRate).Round(monetaryScale), gross.Mul(b.InsuranceRate).Round(monetaryScale)
		}
	}
	return decimal.Zero, decimal.Zero
}

func (s *Service) detectAll(ctx context.Context, run payrollrun.PayrollRun, lines []payrollrun.EmployeePayrollLine) []payrollrun.Irregularity {
	var irregularities []payrollrun.Irregularity
	for _, line := range lines {
		var prior *payrollrun.EmployeePayrollLine
		if baseline, err := s.runRepo.GetLatestLineForEmployee(ctx, run.PayrollAreaID, line.EmployeeID, run.PeriodStart); err == nil {
			prior = &baseline
		}
		irregularities = append(irregularities, s.detector.Detect(line, prior)...)
	}
	return irregularities
}
