package postgresql

import (
	"context"
	"fmt"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payslipRepository struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payslip.Repository {
	return &payslipRepository{db: db}
}

const payslipColumns = `
	id, payroll_run_id, employee_id, employee_name,
	gross_salary, taxes, insurance, penalties, refunds, net_salary,
	issued_at
`

func scanPayslip(row pgx.Row) (payslip.Payslip, error) {
	var p payslip.Payslip
	err := row.Scan(
		&p.ID, &p.PayrollRunID, &p.EmployeeID, &p.EmployeeName,
		&p.GrossSalary, &p.Taxes, &p.Insurance, &p.Penalties, &p.Refunds, &p.NetSalary,
		&p.IssuedAt,
	)
	return p, err
}

func (r *payslipRepository) GetByID(ctx context.Context, id string) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips
		WHERE id = $1
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return p, nil
}

func (r *payslipRepository) ListByRunID(ctx context.Context, runID string) ([]payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips
		WHERE payroll_run_id = $1
		ORDER BY employee_id
	`

	return r.queryPayslips(ctx, q, query, runID)
}

func (r *payslipRepository) ListByEmployeeID(ctx context.Context, employeeID string) ([]payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips
		WHERE employee_id = $1
		ORDER BY issued_at DESC
	`

	return r.queryPayslips(ctx, q, query, employeeID)
}

func (r *payslipRepository) LatestForEmployee(ctx context.Context, employeeID string) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.payroll_run_id, p.employee_id, p.employee_name,
			   p.gross_salary, p.taxes, p.insurance, p.penalties, p.refunds, p.net_salary,
			   p.issued_at
		FROM payslips p
		JOIN payroll_runs r ON r.id = p.payroll_run_id
		WHERE p.employee_id = $1 AND r.status != $2
		ORDER BY p.issued_at DESC
		LIMIT 1
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, employeeID, payrollrun.StatusVoided))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to get latest payslip: %w", err)
	}

	return p, nil
}

func (r *payslipRepository) LatestValidRunID(ctx context.Context) (string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT r.id
		FROM payroll_runs r
		WHERE r.status != $1
		  AND EXISTS (SELECT 1 FROM payslips p WHERE p.payroll_run_id = r.id)
		ORDER BY r.period_start DESC
		LIMIT 1
	`

	var runID string
	err := q.QueryRow(ctx, query, payrollrun.StatusVoided).Scan(&runID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", payslip.ErrNoValidRun
		}
		return "", fmt.Errorf("failed to get latest valid run: %w", err)
	}

	return runID, nil
}

func (r *payslipRepository) queryPayslips(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]payslip.Payslip, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var payslips []payslip.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}

	return payslips, nil
}
