package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRunRepository struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payrollrun.Repository {
	return &payrollRunRepository{db: db}
}

// ========== RUNS ==========

func (r *payrollRunRepository) CreateRunWithLines(ctx context.Context, run payrollrun.PayrollRun, lines []payrollrun.EmployeePayrollLine, irregularities []payrollrun.Irregularity) (payrollrun.PayrollRun, error) {
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		q := GetQuerier(txCtx, r.db)

		query := `
			INSERT INTO payroll_runs (id, payroll_area_id, period_start, period_end, run_type, status, generated_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at
		`
		err := q.QueryRow(txCtx, query,
			run.ID, run.PayrollAreaID, run.PeriodStart, run.PeriodEnd,
			run.RunType, run.Status, run.GeneratedAt, run.CreatedBy,
		).Scan(&run.CreatedAt, &run.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create payroll run: %w", err)
		}

		for i := range lines {
			lineQuery := `
				INSERT INTO employee_payroll_lines (
					id, payroll_run_id, employee_id, employee_name,
					gross_salary, taxes, insurance, penalties, refunds, net_salary,
					negative_net_approved
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				RETURNING created_at, updated_at
			`
			err := q.QueryRow(txCtx, lineQuery,
				lines[i].ID, lines[i].PayrollRunID, lines[i].EmployeeID, lines[i].EmployeeName,
				lines[i].GrossSalary, lines[i].Taxes, lines[i].Insurance, lines[i].Penalties,
				lines[i].Refunds, lines[i].NetSalary, lines[i].NegativeNetApproved,
			).Scan(&lines[i].CreatedAt, &lines[i].UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to create payroll line: %w", err)
			}
		}

		for _, irr := range irregularities {
			irrQuery := `
				INSERT INTO irregularities (
					id, payroll_run_id, employee_id, kind, component,
					detected_value, expected_value, status
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`
			_, err := q.Exec(txCtx, irrQuery,
				irr.ID, irr.PayrollRunID, irr.EmployeeID, irr.Kind, irr.Component,
				irr.DetectedValue, irr.ExpectedValue, irr.Status,
			)
			if err != nil {
				return fmt.Errorf("failed to create irregularity: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return payrollrun.PayrollRun{}, err
	}

	run.Lines = lines
	return run, nil
}

func (r *payrollRunRepository) GetRunByID(ctx context.Context, id string) (payrollrun.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payroll_area_id, period_start, period_end, run_type, status,
			   generated_at, created_by, archived_at, created_at, updated_at
		FROM payroll_runs
		WHERE id = $1
	`

	var run payrollrun.PayrollRun
	err := q.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.PayrollAreaID, &run.PeriodStart, &run.PeriodEnd,
		&run.RunType, &run.Status, &run.GeneratedAt, &run.CreatedBy,
		&run.ArchivedAt, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payrollrun.PayrollRun{}, payrollrun.ErrRunNotFound
		}
		return payrollrun.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRunRepository) ListRuns(ctx context.Context, filter payrollrun.ListRunsFilter) ([]payrollrun.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.PayrollAreaID != "" {
		where += fmt.Sprintf(" AND payroll_area_id = $%d", argIdx)
		args = append(args, filter.PayrollAreaID)
		argIdx++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM payroll_runs " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT id, payroll_area_id, period_start, period_end, run_type, status,
			   generated_at, created_by, archived_at, created_at, updated_at
		FROM payroll_runs
		%s
		ORDER BY period_start DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payrollrun.PayrollRun
	for rows.Next() {
		var run payrollrun.PayrollRun
		err := rows.Scan(
			&run.ID, &run.PayrollAreaID, &run.PeriodStart, &run.PeriodEnd,
			&run.RunType, &run.Status, &run.GeneratedAt, &run.CreatedBy,
			&run.ArchivedAt, &run.CreatedAt, &run.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, total, nil
}

func (r *payrollRunRepository) HasOverlappingRun(ctx context.Context, payrollAreaID string, periodStart, periodEnd time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM payroll_runs
			WHERE payroll_area_id = $1
			  AND status != $2
			  AND period_start <= $4
			  AND period_end >= $3
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query, payrollAreaID, payrollrun.StatusVoided, periodStart, periodEnd).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping run: %w", err)
	}

	return exists, nil
}

// UpdateRunStatus flips status only when the stored status still matches
// expected. A zero-row update means a concurrent actor won the race.
func (r *payrollRunRepository) UpdateRunStatus(ctx context.Context, id string, expected, next payrollrun.RunStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	tag, err := q.Exec(ctx, query, next, id, expected)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetRunByID(ctx, id); err != nil {
			return err
		}
		return payrollrun.ErrInvalidTransition
	}

	return nil
}

func (r *payrollRunRepository) TransitionWithApproval(ctx context.Context, id string, expected, next payrollrun.RunStatus, approval payrollrun.RunApproval) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := r.UpdateRunStatus(txCtx, id, expected, next); err != nil {
			return err
		}

		q := GetQuerier(txCtx, r.db)
		query := `
			INSERT INTO run_approvals (id, payroll_run_id, role, action, actor_id, comment)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := q.Exec(txCtx, query,
			approval.ID, approval.PayrollRunID, approval.Role, approval.Action,
			approval.ActorID, approval.Comment,
		)
		if err != nil {
			return fmt.Errorf("failed to record approval: %w", err)
		}

		return nil
	})
}

func (r *payrollRunRepository) ArchiveRun(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET archived_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND archived_at IS NULL
	`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payrollrun.ErrRunNotFound
	}

	return nil
}

// ========== LINES ==========

const lineColumns = `
	id, payroll_run_id, employee_id, employee_name,
	gross_salary, taxes, insurance, penalties, refunds, net_salary,
	negative_net_approved, created_at, updated_at
`

func scanLine(row pgx.Row) (payrollrun.EmployeePayrollLine, error) {
	var l payrollrun.EmployeePayrollLine
	err := row.Scan(
		&l.ID, &l.PayrollRunID, &l.EmployeeID, &l.EmployeeName,
		&l.GrossSalary, &l.Taxes, &l.Insurance, &l.Penalties, &l.Refunds, &l.NetSalary,
		&l.NegativeNetApproved, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *payrollRunRepository) GetLinesByRunID(ctx context.Context, runID string) ([]payrollrun.EmployeePayrollLine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + lineColumns + `
		FROM employee_payroll_lines
		WHERE payroll_run_id = $1
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll lines: %w", err)
	}
	defer rows.Close()

	var lines []payrollrun.EmployeePayrollLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll line: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, nil
}

func (r *payrollRunRepository) GetLine(ctx context.Context, runID, employeeID string) (payrollrun.EmployeePayrollLine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + lineColumns + `
		FROM employee_payroll_lines
		WHERE payroll_run_id = $1 AND employee_id = $2
	`

	l, err := scanLine(q.QueryRow(ctx, query, runID, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payrollrun.EmployeePayrollLine{}, payrollrun.ErrLineNotFound
		}
		return payrollrun.EmployeePayrollLine{}, fmt.Errorf("failed to get payroll line: %w", err)
	}

	return l, nil
}

func (r *payrollRunRepository) GetLatestLineForEmployee(ctx context.Context, payrollAreaID, employeeID string, before time.Time) (payrollrun.EmployeePayrollLine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT l.id, l.payroll_run_id, l.employee_id, l.employee_name,
			   l.gross_salary, l.taxes, l.insurance, l.penalties, l.refunds, l.net_salary,
			   l.negative_net_approved, l.created_at, l.updated_at
		FROM employee_payroll_lines l
		JOIN payroll_runs r ON r.id = l.payroll_run_id
		WHERE r.payroll_area_id = $1
		  AND l.employee_id = $2
		  AND r.period_start < $3
		  AND r.status != $4
		ORDER BY r.period_start DESC
		LIMIT 1
	`

	l, err := scanLine(q.QueryRow(ctx, query, payrollAreaID, employeeID, before, payrollrun.StatusVoided))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payrollrun.EmployeePayrollLine{}, payrollrun.ErrLineNotFound
		}
		return payrollrun.EmployeePayrollLine{}, fmt.Errorf("failed to get latest payroll line: %w", err)
	}

	return l, nil
}

// ========== IRREGULARITIES ==========

const irregularityColumns = `
	id, payroll_run_id, employee_id, kind, component,
	detected_value, expected_value, status, adjusted_value, notes,
	created_at, resolved_at, resolved_by
`

func scanIrregularity(row pgx.Row) (payrollrun.Irregularity, error) {
	var irr payrollrun.Irregularity
	err := row.Scan(
		&irr.ID, &irr.PayrollRunID, &irr.EmployeeID, &irr.Kind, &irr.Component,
		&irr.DetectedValue, &irr.ExpectedValue, &irr.Status, &irr.AdjustedValue, &irr.Notes,
		&irr.CreatedAt, &irr.ResolvedAt, &irr.ResolvedBy,
	)
	return irr, err
}

func (r *payrollRunRepository) GetIrregularityByID(ctx context.Context, id string) (payrollrun.Irregularity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + irregularityColumns + `
		FROM irregularities
		WHERE id = $1
	`

	irr, err := scanIrregularity(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payrollrun.Irregularity{}, payrollrun.ErrIrregularityNotFound
		}
		return payrollrun.Irregularity{}, fmt.Errorf("failed to get irregularity: %w", err)
	}

	return irr, nil
}

func (r *payrollRunRepository) ListIrregularitiesByRun(ctx context.Context, runID string) ([]payrollrun.Irregularity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + irregularityColumns + `
		FROM irregularities
		WHERE payroll_run_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list irregularities: %w", err)
	}
	defer rows.Close()

	var irregularities []payrollrun.Irregularity
	for rows.Next() {
		irr, err := scanIrregularity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan irregularity: %w", err)
		}
		irregularities = append(irregularities, irr)
	}

	return irregularities, nil
}

func (r *payrollRunRepository) CountPendingIrregularities(ctx context.Context, runID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*) FROM irregularities
		WHERE payroll_run_id = $1 AND status = $2
	`

	var count int64
	err := q.QueryRow(ctx, query, runID, payrollrun.IrregularityPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending irregularities: %w", err)
	}

	return count, nil
}

// ResolveIrregularity flips the irregularity out of PENDING and applies the
// line effect in the same transaction. The status flip is compare-and-swap,
// so a second resolution attempt on the same irregularity fails with
// ErrAlreadyResolved no matter how the first one resolved it.
func (r *payrollRunRepository) ResolveIrregularity(ctx context.Context, update payrollrun.ResolutionUpdate) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		q := GetQuerier(txCtx, r.db)

		var runID string
		flipQuery := `
			UPDATE irregularities
			SET status = $1, adjusted_value = $2, notes = $3,
				resolved_at = NOW(), resolved_by = $4
			WHERE id = $5 AND status = $6
			RETURNING payroll_run_id
		`
		err := q.QueryRow(txCtx, flipQuery,
			update.Status, update.AdjustedValue, update.Notes,
			update.ResolvedBy, update.IrregularityID, payrollrun.IrregularityPending,
		).Scan(&runID)
		if err != nil {
			if err == pgx.ErrNoRows {
				if _, getErr := r.GetIrregularityByID(txCtx, update.IrregularityID); getErr != nil {
					return getErr
				}
				return payrollrun.ErrAlreadyResolved
			}
			return fmt.Errorf("failed to resolve irregularity: %w", err)
		}

		if update.UpdatedLine != nil {
			l := update.UpdatedLine
			lineQuery := `
				UPDATE employee_payroll_lines
				SET gross_salary = $1, taxes = $2, insurance = $3, penalties = $4,
					refunds = $5, net_salary = $6, negative_net_approved = $7,
					updated_at = NOW()
				WHERE id = $8
			`
			tag, err := q.Exec(txCtx, lineQuery,
				l.GrossSalary, l.Taxes, l.Insurance, l.Penalties,
				l.Refunds, l.NetSalary, l.NegativeNetApproved, l.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to update payroll line: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return payrollrun.ErrLineNotFound
			}
		}

		if update.ExcludeLine {
			excludeQuery := `
				DELETE FROM employee_payroll_lines
				WHERE payroll_run_id = $1 AND employee_id = $2
			`
			tag, err := q.Exec(txCtx, excludeQuery, runID, update.ExcludeEmployeeID)
			if err != nil {
				return fmt.Errorf("failed to exclude payroll line: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return payrollrun.ErrLineNotFound
			}
		}

		return nil
	})
}

// ========== APPROVALS ==========

func (r *payrollRunRepository) GetApprovals(ctx context.Context, runID string) ([]payrollrun.RunApproval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payroll_run_id, role, action, actor_id, comment, created_at
		FROM run_approvals
		WHERE payroll_run_id = $1
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	defer rows.Close()

	var approvals []payrollrun.RunApproval
	for rows.Next() {
		var a payrollrun.RunApproval
		err := rows.Scan(&a.ID, &a.PayrollRunID, &a.Role, &a.Action, &a.ActorID, &a.Comment, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		approvals = append(approvals, a)
	}

	return approvals, nil
}

func (r *payrollRunRepository) HasApproval(ctx context.Context, runID string, role payrollrun.ApprovalRole, action payrollrun.ApprovalAction) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM run_approvals
			WHERE payroll_run_id = $1 AND role = $2 AND action = $3
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query, runID, role, action).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check approval: %w", err)
	}

	return exists, nil
}

// ========== FREEZE ==========

// FreezeRun keeps the payslip fan-out 1:1 with the run's lines: a re-freeze
// after an unfreeze supersedes the previous payslip set rather than adding a
// second one.
func (r *payrollRunRepository) FreezeRun(ctx context.Context, runID string, payslips []payslip.Payslip) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := r.UpdateRunStatus(txCtx, runID, payrollrun.StatusApproved, payrollrun.StatusFrozen); err != nil {
			return err
		}

		q := GetQuerier(txCtx, r.db)
		supersedeQuery := `
			DELETE FROM payslips
			WHERE payroll_run_id = $1
		`
		if _, err := q.Exec(txCtx, supersedeQuery, runID); err != nil {
			return fmt.Errorf("failed to supersede payslips: %w", err)
		}

		for _, p := range payslips {
			query := `
				INSERT INTO payslips (
					id, payroll_run_id, employee_id, employee_name,
					gross_salary, taxes, insurance, penalties, refunds, net_salary,
					issued_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			`
			_, err := q.Exec(txCtx, query,
				p.ID, p.PayrollRunID, p.EmployeeID, p.EmployeeName,
				p.GrossSalary, p.Taxes, p.Insurance, p.Penalties, p.Refunds, p.NetSalary,
				p.IssuedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to create payslip: %w", err)
			}
		}

		return nil
	})
}
