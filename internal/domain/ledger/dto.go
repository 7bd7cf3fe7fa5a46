package ledger

import (
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CREATE DTOs ==========

type CreateDisputeRequest struct {
	PayslipID  string          `json:"payslip_id"`
	EmployeeID string          `json:"employee_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

func (r *CreateDisputeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PayslipID) {
		errs = append(errs, validator.ValidationError{Field: "payslip_id", Message: "is required"})
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateClaimRequest struct {
	PayslipID   string          `json:"payslip_id"`
	EmployeeID  string          `json:"employee_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (r *CreateClaimRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PayslipID) {
		errs = append(errs, validator.ValidationError{Field: "payslip_id", Message: "is required"})
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateRefundRequest struct {
	PayslipID  string          `json:"payslip_id"`
	EmployeeID string          `json:"employee_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

func (r *CreateRefundRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PayslipID) {
		errs = append(errs, validator.ValidationError{Field: "payslip_id", Message: "is required"})
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== REVIEW DTOs ==========

type ReviewDisputeRequest struct {
	Approve bool    `json:"approve"`
	Note    *string `json:"note,omitempty"`

	ReviewerID string `json:"-"`
}

type ReviewClaimRequest struct {
	Approve bool    `json:"approve"`
	Note    *string `json:"note,omitempty"`

	ReviewerID string `json:"-"`
}

type PayRefundRequest struct {
	PaidInPayrollRunID string `json:"paid_in_payroll_run_id"`

	ActorID string `json:"-"`
}

func (r *PayRefundRequest) Validate() error {
	if validator.IsEmpty(r.PaidInPayrollRunID) {
		return validator.ValidationErrors{{Field: "paid_in_payroll_run_id", Message: "is required"}}
	}
	return nil
}

// ========== RECONCILE DTOs ==========

type ReconcileChange struct {
	Kind         string `json:"kind"`
	RecordID     string `json:"record_id"`
	EmployeeID   string `json:"employee_id"`
	OldPayslipID string `json:"old_payslip_id"`
	NewPayslipID string `json:"new_payslip_id"`
}

type ReconcileResult struct {
	Repaired int               `json:"repaired"`
	Details  []ReconcileChange `json:"details"`
}

type IntegrityFinding struct {
	Kind       string `json:"kind"`
	RecordID   string `json:"record_id"`
	EmployeeID string `json:"employee_id"`
	PayslipID  string `json:"payslip_id"`
	Problem    string `json:"problem"`
}

type IntegrityReport struct {
	Scanned  int                `json:"scanned"`
	Findings []IntegrityFinding `json:"findings"`
}
