package response

import (
	"errors"
	"net/http"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/employee"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/ledger"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll run domain errors
	case errors.Is(err, payrollrun.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payrollrun.ErrLineNotFound):
		NotFound(w, "Payroll line not found")
	case errors.Is(err, payrollrun.ErrIrregularityNotFound):
		NotFound(w, "Irregularity not found")
	case errors.Is(err, payrollrun.ErrInvalidPeriod):
		BadRequest(w, "Period end must not precede period start", nil)
	case errors.Is(err, payrollrun.ErrNoEligibleEmployees):
		BadRequest(w, "No eligible employees for the requested run", nil)
	case errors.Is(err, payrollrun.ErrAdjustedValueMissing):
		BadRequest(w, "Adjusted resolution requires an adjusted value", nil)
	case errors.Is(err, payrollrun.ErrUnfreezeReasonMissing):
		BadRequest(w, "Unfreeze requires a reason", nil)
	case errors.Is(err, payrollrun.ErrAlreadyResolved):
		Conflict(w, "Irregularity already resolved")
	case errors.Is(err, payrollrun.ErrInvalidTransition):
		Conflict(w, "Run status does not allow this transition")
	case errors.Is(err, payrollrun.ErrPendingIrregularity):
		Conflict(w, "Run has unresolved irregularities")
	case errors.Is(err, payrollrun.ErrRunBusy):
		Conflict(w, "Another operation is in progress for this run")

	// Payslip domain errors
	case errors.Is(err, payslip.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")

	// Ledger domain errors
	case errors.Is(err, ledger.ErrDisputeNotFound):
		NotFound(w, "Dispute not found")
	case errors.Is(err, ledger.ErrClaimNotFound):
		NotFound(w, "Claim not found")
	case errors.Is(err, ledger.ErrRefundNotFound):
		NotFound(w, "Refund not found")
	case errors.Is(err, ledger.ErrDanglingReference):
		UnprocessableEntity(w, "DANGLING_REFERENCE", err.Error())
	case errors.Is(err, ledger.ErrReferentialIntegrityViolation):
		UnprocessableEntity(w, "REFERENTIAL_INTEGRITY_VIOLATION", err.Error())
	case errors.Is(err, ledger.ErrAlreadyReviewed):
		Conflict(w, "This review stage was already recorded")
	case errors.Is(err, ledger.ErrWrongReviewStage):
		Forbidden(w, "Your role does not match the pending review stage")
	case errors.Is(err, ledger.ErrInvalidStatus):
		Conflict(w, "Record status does not allow this action")

	// Employee directory errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
