package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/ledger"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type ledgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) ledger.Repository {
	return &ledgerRepository{db: db}
}

// ========== DISPUTES ==========

func (r *ledgerRepository) CreateDispute(ctx context.Context, d ledger.Dispute) (ledger.Dispute, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO disputes (id, payslip_id, employee_id, amount, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, d.ID, d.PayslipID, d.EmployeeID, d.Amount, d.Reason, d.Status).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return ledger.Dispute{}, fmt.Errorf("failed to create dispute: %w", err)
	}

	return d, nil
}

func (r *ledgerRepository) GetDisputeByID(ctx context.Context, id string) (ledger.Dispute, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payslip_id, employee_id, amount, reason, status, created_at, updated_at
		FROM disputes
		WHERE id = $1
	`

	var d ledger.Dispute
	err := q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.PayslipID, &d.EmployeeID, &d.Amount, &d.Reason, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ledger.Dispute{}, ledger.ErrDisputeNotFound
		}
		return ledger.Dispute{}, fmt.Errorf("failed to get dispute: %w", err)
	}

	reviewQuery := `
		SELECT id, dispute_id, stage, actor_id, note, created_at
		FROM dispute_review_steps
		WHERE dispute_id = $1
		ORDER BY created_at
	`
	rows, err := q.Query(ctx, reviewQuery, id)
	if err != nil {
		return ledger.Dispute{}, fmt.Errorf("failed to list review steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var step ledger.ReviewStep
		err := rows.Scan(&step.ID, &step.DisputeID, &step.Stage, &step.ActorID, &step.Note, &step.CreatedAt)
		if err != nil {
			return ledger.Dispute{}, fmt.Errorf("failed to scan review step: %w", err)
		}
		d.Reviews = append(d.Reviews, step)
	}

	return d, nil
}

func (r *ledgerRepository) ListDisputes(ctx context.Context) ([]ledger.Dispute, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payslip_id, employee_id, amount, reason, status, created_at, updated_at
		FROM disputes
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes: %w", err)
	}
	defer rows.Close()

	var disputes []ledger.Dispute
	for rows.Next() {
		var d ledger.Dispute
		err := rows.Scan(&d.ID, &d.PayslipID, &d.EmployeeID, &d.Amount, &d.Reason, &d.Status, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispute: %w", err)
		}
		disputes = append(disputes, d)
	}

	return disputes, nil
}

// AppendReviewStep records one review and advances the dispute's status in the
// same transaction. Duplicate stages for a dispute are rejected by the unique
// constraint, which maps to ErrAlreadyReviewed.
func (r *ledgerRepository) AppendReviewStep(ctx context.Context, step ledger.ReviewStep, nextStatus ledger.DisputeStatus) (ledger.ReviewStep, error) {
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		q := GetQuerier(txCtx, r.db)

		query := `
			INSERT INTO dispute_review_steps (id, dispute_id, stage, actor_id, note)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at
		`
		err := q.QueryRow(txCtx, query, step.ID, step.DisputeID, step.Stage, step.ActorID, step.Note).
			Scan(&step.CreatedAt)
		if err != nil {
			if strings.Contains(err.Error(), "uk_dispute_review_stage") {
				return ledger.ErrAlreadyReviewed
			}
			return fmt.Errorf("failed to create review step: %w", err)
		}

		statusQuery := `
			UPDATE disputes
			SET status = $1, updated_at = NOW()
			WHERE id = $2
		`
		tag, err := q.Exec(txCtx, statusQuery, nextStatus, step.DisputeID)
		if err != nil {
			return fmt.Errorf("failed to update dispute status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ledger.ErrDisputeNotFound
		}

		return nil
	})
	if err != nil {
		return ledger.ReviewStep{}, err
	}

	return step, nil
}

// ========== CLAIMS ==========

func (r *ledgerRepository) CreateClaim(ctx context.Context, c ledger.Claim) (ledger.Claim, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO claims (id, payslip_id, employee_id, amount, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, c.ID, c.PayslipID, c.EmployeeID, c.Amount, c.Description, c.Status).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return ledger.Claim{}, fmt.Errorf("failed to create claim: %w", err)
	}

	return c, nil
}

func (r *ledgerRepository) GetClaimByID(ctx context.Context, id string) (ledger.Claim, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payslip_id, employee_id, amount, description, status, reviewed_by, created_at, updated_at
		FROM claims
		WHERE id = $1
	`

	var c ledger.Claim
	err := q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PayslipID, &c.EmployeeID, &c.Amount, &c.Description, &c.Status, &c.ReviewedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ledger.Claim{}, ledger.ErrClaimNotFound
		}
		return ledger.Claim{}, fmt.Errorf("failed to get claim: %w", err)
	}

	return c, nil
}

func (r *ledgerRepository) ListClaims(ctx context.Context) ([]ledger.Claim, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payslip_id, employee_id, amount, description, status, reviewed_by, created_at, updated_at
		FROM claims
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []ledger.Claim
	for rows.Next() {
		var c ledger.Claim
		err := rows.Scan(&c.ID, &c.PayslipID, &c.EmployeeID, &c.Amount, &c.Description, &c.Status, &c.ReviewedBy, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, c)
	}

	return claims, nil
}

func (r *ledgerRepository) UpdateClaimStatus(ctx context.Context, id string, expected, next ledger.ClaimStatus, reviewedBy string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE claims
		SET status = $1, reviewed_by = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`

	tag, err := q.Exec(ctx, query, next, reviewedBy, id, expected)
	if err != nil {
		return fmt.Errorf("failed to update claim status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetClaimByID(ctx, id); err != nil {
			return err
		}
		return ledger.ErrInvalidStatus
	}

	return nil
}

// ========== REFUNDS ==========

func (r *ledgerRepository) CreateRefund(ctx context.Context, ref ledger.Refund) (ledger.Refund, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO refunds (id, payslip_id, employee_id, amount, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, ref.ID, ref.PayslipID, ref.EmployeeID, ref.Amount, ref.Reason, ref.Status).
		Scan(&ref.CreatedAt, &ref.UpdatedAt)
	if err != nil {
		return ledger.Refund{}, fmt.Errorf("failed to create refund: %w", err)
	}

	return ref, nil
}

func (r *ledgerRepository) GetRefundByID(ctx context.Context, id string) (ledger.Refund, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payslip_id, employee_id, amount, reason, status, approved_by, paid_in_payroll_run_id, created_at, updated_at
		FROM refunds
		WHERE id = $1
	`

	var ref ledger.Refund
	err := q.QueryRow(ctx, query, id).Scan(
		&ref.ID, &ref.PayslipID, &ref.EmployeeID, &ref.Amount, &ref.Reason, &ref.Status,
		&ref.ApprovedBy, &ref.PaidInPayrollRunID, &ref.CreatedAt, &ref.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ledger.Refund{}, ledger.ErrRefundNotFound
		}
		return ledger.Refund{}, fmt.Errorf("failed to get refund: %w", err)
	}

	return ref, nil
}

func (r *ledgerRepository) ListRefunds(ctx context.Context) ([]ledger.Refund, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payslip_id, employee_id, amount, reason, status, approved_by, paid_in_payroll_run_id, created_at, updated_at
		FROM refunds
		ORDER BY created_at DESC
	`

	return r.queryRefunds(ctx, q, query)
}

func (r *ledgerRepository) UpdateRefundStatus(ctx context.Context, id string, expected, next ledger.RefundStatus, actorID string, paidInRunID *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE refunds
		SET status = $1, approved_by = $2, paid_in_payroll_run_id = COALESCE($3, paid_in_payroll_run_id), updated_at = NOW()
		WHERE id = $4 AND status = $5
	`

	tag, err := q.Exec(ctx, query, next, actorID, paidInRunID, id, expected)
	if err != nil {
		return fmt.Errorf("failed to update refund status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetRefundByID(ctx, id); err != nil {
			return err
		}
		return ledger.ErrInvalidStatus
	}

	return nil
}

func (r *ledgerRepository) ListApprovedUnpaidRefunds(ctx context.Context, employeeIDs []string) ([]ledger.Refund, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payslip_id, employee_id, amount, reason, status, approved_by, paid_in_payroll_run_id, created_at, updated_at
		FROM refunds
		WHERE status = $1 AND paid_in_payroll_run_id IS NULL AND employee_id = ANY($2)
		ORDER BY created_at
	`

	return r.queryRefunds(ctx, q, query, ledger.RefundApproved, employeeIDs)
}

func (r *ledgerRepository) MarkRefundsPaid(ctx context.Context, ids []string, runID string) error {
	if len(ids) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE refunds
		SET status = $1, paid_in_payroll_run_id = $2, updated_at = NOW()
		WHERE id = ANY($3) AND status = $4
	`

	_, err := q.Exec(ctx, query, ledger.RefundPaid, runID, ids, ledger.RefundApproved)
	if err != nil {
		return fmt.Errorf("failed to mark refunds paid: %w", err)
	}

	return nil
}

// ========== RECONCILE ==========

func (r *ledgerRepository) RelinkPayslip(ctx context.Context, kind ledger.RecordKind, id, payslipID string) error {
	q := GetQuerier(ctx, r.db)

	var table string
	switch kind {
	case ledger.KindDispute:
		table = "disputes"
	case ledger.KindClaim:
		table = "claims"
	case ledger.KindRefund:
		table = "refunds"
	default:
		return fmt.Errorf("unknown record kind: %s", kind)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET payslip_id = $1, updated_at = NOW()
		WHERE id = $2
	`, table)

	tag, err := q.Exec(ctx, query, payslipID, id)
	if err != nil {
		return fmt.Errorf("failed to relink %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		switch kind {
		case ledger.KindDispute:
			return ledger.ErrDisputeNotFound
		case ledger.KindClaim:
			return ledger.ErrClaimNotFound
		default:
			return ledger.ErrRefundNotFound
		}
	}

	return nil
}

func (r *ledgerRepository) queryRefunds(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]ledger.Refund, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}
	defer rows.Close()

	var refunds []ledger.Refund
	for rows.Next() {
		var ref ledger.Refund
		err := rows.Scan(
			&ref.ID, &ref.PayslipID, &ref.EmployeeID, &ref.Amount, &ref.Reason, &ref.Status,
			&ref.ApprovedBy, &ref.PaidInPayrollRunID, &ref.CreatedAt, &ref.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan refund: %w", err)
		}
		refunds = append(refunds, ref)
	}

	return refunds, nil
}
