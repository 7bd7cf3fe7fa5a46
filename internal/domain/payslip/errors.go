package payslip

import "errors"

var (
	ErrPayslipNotFound = errors.New("payslip not found")
	ErrNoValidRun      = errors.New("no valid payroll run with payslips")
)
