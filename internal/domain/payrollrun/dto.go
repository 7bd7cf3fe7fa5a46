package payrollrun

import (
	"time"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type ComputeRunRequest struct {
	PayrollAreaID string   `json:"payroll_area_id"`
	PeriodStart   string   `json:"period_start"` // 2006-01-02
	PeriodEnd     string   `json:"period_end"`
	RunType       string   `json:"run_type"`
	EmployeeIDs   []string `json:"employee_ids,omitempty"`
	DryRun        bool     `json:"dry_run,omitempty"`

	// Filled from the access token, not the body
	CreatedBy string `json:"-"`
}

func (r *ComputeRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PayrollAreaID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_area_id", Message: "is required"})
	}
	if !validator.IsValidDate(r.PeriodStart) {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if !validator.IsValidDate(r.PeriodEnd) {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if r.RunType != string(RunTypeAuto) && r.RunType != string(RunTypeManual) {
		errs = append(errs, validator.ValidationError{Field: "run_type", Message: "must be 'AUTO' or 'MANUAL'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period parses the request dates. Validate must have passed first.
func (r *ComputeRunRequest) Period() (start, end time.Time) {
	start, _ = time.Parse("2006-01-02", r.PeriodStart)
	end, _ = time.Parse("2006-01-02", r.PeriodEnd)
	return start, end
}

type LineResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	EmployeeName        string          `json:"employee_name"`
	GrossSalary         decimal.Decimal `json:"gross_salary"`
	Taxes               decimal.Decimal `json:"taxes"`
	Insurance           decimal.Decimal `json:"insurance"`
	Penalties           decimal.Decimal `json:"penalties"`
	Refunds             decimal.Decimal `json:"refunds"`
	NetSalary           decimal.Decimal `json:"net_salary"`
	NegativeNetApproved bool            `json:"negative_net_approved,omitempty"`
}

type RunResponse struct {
	ID             string                 `json:"id"`
	PayrollAreaID  string                 `json:"payroll_area_id"`
	PeriodStart    string                 `json:"period_start"`
	PeriodEnd      string                 `json:"period_end"`
	RunType        string                 `json:"run_type"`
	Status         string                 `json:"status"`
	GeneratedAt    string                 `json:"generated_at"`
	CreatedBy      string                 `json:"created_by"`
	DryRun         bool                   `json:"dry_run,omitempty"`
	Lines          []LineResponse         `json:"lines,omitempty"`
	Irregularities []IrregularityResponse `json:"irregularities,omitempty"`
}

type ListRunsFilter struct {
	PayrollAreaID string
	Status        string
	Page          int
	Limit         int
}

// ========== IRREGULARITY DTOs ==========

type IrregularityResponse struct {
	ID            string           `json:"id"`
	PayrollRunID  string           `json:"payroll_run_id"`
	EmployeeID    string           `json:"employee_id"`
	Kind          string           `json:"kind"`
	Component     string           `json:"component"`
	DetectedValue decimal.Decimal  `json:"detected_value"`
	ExpectedValue decimal.Decimal  `json:"expected_value"`
	Status        string           `json:"status"`
	AdjustedValue *decimal.Decimal `json:"adjusted_value,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

type ResolveIrregularityRequest struct {
	Action        string           `json:"action"` // approved|rejected|excluded|adjusted
	Notes         string           `json:"notes,omitempty"`
	AdjustedValue *decimal.Decimal `json:"adjusted_value,omitempty"`

	ResolvedBy string `json:"-"`
}

func (r *ResolveIrregularityRequest) Validate() error {
	var errs validator.ValidationErrors

	switch IrregularityStatus(r.ActionStatus()) {
	case IrregularityApproved, IrregularityRejected, IrregularityExcluded:
	case IrregularityAdjusted:
		if r.AdjustedValue == nil {
			errs = append(errs, validator.ValidationError{Field: "adjusted_value", Message: "is required for 'adjusted'"})
		} else if r.AdjustedValue.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "adjusted_value", Message: "must be non-negative"})
		}
	default:
		errs = append(errs, validator.ValidationError{Field: "action", Message: "must be one of 'approved', 'rejected', 'excluded', 'adjusted'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ActionStatus maps the request action to the irregularity status it results in.
func (r *ResolveIrregularityRequest) ActionStatus() IrregularityStatus {
	switch r.Action {
	case "approved":
		return IrregularityApproved
	case "rejected":
		return IrregularityRejected
	case "excluded":
		return IrregularityExcluded
	case "adjusted":
		return IrregularityAdjusted
	}
	return ""
}

// ========== APPROVAL DTOs ==========

type ApproveRequest struct {
	Comment *string `json:"comment,omitempty"`

	Role    ApprovalRole `json:"-"`
	ActorID string       `json:"-"`
}

type UnfreezeRequest struct {
	Reason string `json:"reason"`

	ActorID string `json:"-"`
}

func (r *UnfreezeRequest) Validate() error {
	if validator.IsEmpty(r.Reason) {
		return validator.ValidationErrors{{Field: "reason", Message: "is required"}}
	}
	return nil
}

type ApprovalResponse struct {
	Role      string  `json:"role"`
	Action    string  `json:"action"`
	ActorID   string  `json:"actor_id"`
	Comment   *string `json:"comment,omitempty"`
	CreatedAt string  `json:"created_at"`
}
