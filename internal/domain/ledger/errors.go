package ledger

import "errors"

var (
	ErrDisputeNotFound               = errors.New("dispute not found")
	ErrClaimNotFound                 = errors.New("claim not found")
	ErrRefundNotFound                = errors.New("refund not found")
	ErrDanglingReference             = errors.New("dangling reference: payslip or payroll run does not exist")
	ErrReferentialIntegrityViolation = errors.New("referential integrity violation")
	ErrAlreadyReviewed               = errors.New("record already reviewed")
	ErrInvalidStatus                 = errors.New("record is not in a status that allows this operation")
	ErrWrongReviewStage              = errors.New("actor role does not match the pending review stage")
)
