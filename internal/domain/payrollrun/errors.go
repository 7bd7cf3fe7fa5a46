package payrollrun

import "errors"

var (
	ErrRunNotFound           = errors.New("payroll run not found")
	ErrLineNotFound          = errors.New("payroll line not found")
	ErrIrregularityNotFound  = errors.New("irregularity not found")
	ErrInvalidPeriod         = errors.New("invalid or overlapping payroll period")
	ErrNoEligibleEmployees   = errors.New("no eligible employees for payroll run")
	ErrAlreadyResolved       = errors.New("irregularity already resolved")
	ErrInvalidTransition     = errors.New("invalid payroll run state transition")
	ErrRunBusy               = errors.New("payroll run is busy with another operation")
	ErrPendingIrregularity   = errors.New("payroll run has pending irregularities")
	ErrAdjustedValueMissing  = errors.New("adjusted resolution requires an adjusted value")
	ErrUnfreezeReasonMissing = errors.New("unfreeze requires a non-empty reason")
)
