package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/ledger"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
)

// referencedRecord is the common shape reconcile works over.
type referencedRecord struct {
	kind       ledger.RecordKind
	id         string
	employeeID string
	payslipID  string
}

// ReconcileReferences repairs legacy ledger records whose payslip chain no
// longer resolves. Each broken record is re-linked to a payslip for the same
// employee from the most recent valid run when one exists, otherwise to a
// deterministic fallback payslip of that run. Running it twice repairs nothing
// on the second pass. Steady-state writes never need this; the validator
// rejects dangling references up front.
func (s *Service) ReconcileReferences(ctx context.Context) (ledger.ReconcileResult, error) {
	records, err := s.collectRecords(ctx)
	if err != nil {
		return ledger.ReconcileResult{}, err
	}

	result := ledger.ReconcileResult{Details: []ledger.ReconcileChange{}}

	var candidates []payslip.Payslip
	candidatesLoaded := false
	loadCandidates := func() error {
		if candidatesLoaded {
			return nil
		}
		runID, err := s.payslipRepo.LatestValidRunID(ctx)
		if err != nil {
			return err
		}
		candidates, err = s.payslipRepo.ListByRunID(ctx, runID)
		if err != nil {
			return err
		}
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].EmployeeID < candidates[j].EmployeeID
		})
		candidatesLoaded = true
		return nil
	}

	for _, rec := range records {
		if _, err := s.validator.ResolvePayslip(ctx, rec.payslipID); err == nil {
			continue
		} else if !errors.Is(err, ledger.ErrDanglingReference) {
			return ledger.ReconcileResult{}, err
		}

		if err := loadCandidates(); err != nil {
			if errors.Is(err, payslip.ErrNoValidRun) {
				slog.Warn("reconcile: no valid run to re-link against", "kind", rec.kind, "record_id", rec.id)
				continue
			}
			return ledger.ReconcileResult{}, err
		}
		if len(candidates) == 0 {
			slog.Warn("reconcile: latest run has no payslips", "kind", rec.kind, "record_id", rec.id)
			continue
		}

		replacement := s.pickReplacement(ctx, rec, candidates)
		if err := s.repo.RelinkPayslip(ctx, rec.kind, rec.id, replacement.ID); err != nil {
			return ledger.ReconcileResult{}, err
		}

		change := ledger.ReconcileChange{
			Kind:         string(rec.kind),
			RecordID:     rec.id,
			EmployeeID:   rec.employeeID,
			OldPayslipID: rec.payslipID,
			NewPayslipID: replacement.ID,
		}
		result.Repaired++
		result.Details = append(result.Details, change)
		slog.Info("reconcile: re-linked dangling reference",
			"kind", change.Kind,
			"record_id", change.RecordID,
			"employee_id", change.EmployeeID,
			"old_payslip_id", change.OldPayslipID,
			"new_payslip_id", change.NewPayslipID,
		)
	}

	return result, nil
}

// pickReplacement prefers the employee's own payslip from the most recent
// valid run; when the employee has none, it falls back to the candidate at the
// employee's sort position modulo the available payslips, which is stable
// across repeated passes.
func (s *Service) pickReplacement(ctx context.Context, rec referencedRecord, candidates []payslip.Payslip) payslip.Payslip {
	if own, err := s.payslipRepo.LatestForEmployee(ctx, rec.employeeID); err == nil {
		if _, verr := s.validator.ResolvePayslip(ctx, own.ID); verr == nil {
			return own
		}
	}

	idx := sort.Search(len(candidates), func(i int) bool {
		return candidates[i].EmployeeID >= rec.employeeID
	})
	return candidates[idx%len(candidates)]
}

// ScanIntegrity reports every ledger record whose reference chain is broken,
// without repairing anything.
func (s *Service) ScanIntegrity(ctx context.Context) (ledger.IntegrityReport, error) {
	records, err := s.collectRecords(ctx)
	if err != nil {
		return ledger.IntegrityReport{}, err
	}

	report := ledger.IntegrityReport{Scanned: len(records), Findings: []ledger.IntegrityFinding{}}
	for _, rec := range records {
		if _, err := s.validator.ResolvePayslip(ctx, rec.payslipID); err != nil {
			if !errors.Is(err, ledger.ErrDanglingReference) {
				return ledger.IntegrityReport{}, err
			}
			report.Findings = append(report.Findings, ledger.IntegrityFinding{
				Kind:       string(rec.kind),
				RecordID:   rec.id,
				EmployeeID: rec.employeeID,
				PayslipID:  rec.payslipID,
				Problem:    fmt.Sprintf("%v: %v", ledger.ErrReferentialIntegrityViolation, err),
			})
		}
	}
	return report, nil
}

func (s *Service) collectRecords(ctx context.Context) ([]referencedRecord, error) {
	var records []referencedRecord

	disputes, err := s.repo.ListDisputes(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range disputes {
		records = append(records, referencedRecord{ledger.KindDispute, d.ID, d.EmployeeID, d.PayslipID})
	}

	claims, err := s.repo.ListClaims(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range claims {
		records = append(records, referencedRecord{ledger.KindClaim, c.ID, c.EmployeeID, c.PayslipID})
	}

	refunds, err := s.repo.ListRefunds(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range refunds {
		records = append(records, referencedRecord{ledger.KindRefund, r.ID, r.EmployeeID, r.PayslipID})
	}

	return records, nil
}
