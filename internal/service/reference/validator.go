// Package reference implements the write-time foreign-key discipline the
// document store itself does not enforce: every ledger record must point at a
// payslip whose payroll run still exists.
package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/ledger"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
)

type Validator struct {
	payslipRepo payslip.Repository
	runRepo     payrollrun.Repository
}

func NewValidator(payslipRepo payslip.Repository, runRepo payrollrun.Repository) *Validator {
	return &Validator{payslipRepo: payslipRepo, runRepo: runRepo}
}

// ResolvePayslip walks payslipID -> payslip -> payrollRunID -> run and returns
// the payslip when every hop exists. A missing hop is ErrDanglingReference.
func (v *Validator) ResolvePayslip(ctx context.Context, payslipID string) (payslip.Payslip, error) {
	p, err := v.payslipRepo.GetByID(ctx, payslipID)
	if err != nil {
		if errors.Is(err, payslip.ErrPayslipNotFound) {
			return payslip.Payslip{}, fmt.Errorf("payslip %s: %w", payslipID, ledger.ErrDanglingReference)
		}
		return payslip.Payslip{}, err
	}

	if err := v.CheckRun(ctx, p.PayrollRunID); err != nil {
		return payslip.Payslip{}, fmt.Errorf("payslip %s: %w", payslipID, err)
	}

	return p, nil
}

// CheckRun verifies the payroll run exists.
func (v *Validator) CheckRun(ctx context.Context, runID string) error {
	if _, err := v.runRepo.GetRunByID(ctx, runID); err != nil {
		if errors.Is(err, payrollrun.ErrRunNotFound) {
			return fmt.Errorf("payroll run %s: %w", runID, ledger.ErrDanglingReference)
		}
		return err
	}
	return nil
}
