package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/employee"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeDirectory struct {
	db *database.DB
}

func NewEmployeeDirectory(db *database.DB) employee.Directory {
	return &employeeDirectory{db: db}
}

func (r *employeeDirectory) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, full_name, payroll_area_id, status, hire_date
		FROM employees
		WHERE id = $1
	`

	var e employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(&e.ID, &e.FullName, &e.PayrollAreaID, &e.Status, &e.HireDate)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

func (r *employeeDirectory) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, full_name, payroll_area_id, status, hire_date
		FROM employees
		WHERE id = ANY($1)
		ORDER BY id
	`

	return r.queryEmployees(ctx, q, query, ids)
}

func (r *employeeDirectory) GetActiveByArea(ctx context.Context, payrollAreaID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, full_name, payroll_area_id, status, hire_date
		FROM employees
		WHERE payroll_area_id = $1 AND status = $2
		ORDER BY id
	`

	return r.queryEmployees(ctx, q, query, payrollAreaID, employee.StatusActive)
}

func (r *employeeDirectory) ListCompensation(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) ([]employee.CompensationRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, amount, effective_date, end_date
		FROM compensation_records
		WHERE employee_id = $1
		  AND effective_date <= $3
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY effective_date
	`

	rows, err := q.Query(ctx, query, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation records: %w", err)
	}
	defer rows.Close()

	var records []employee.CompensationRecord
	for rows.Next() {
		var c employee.CompensationRecord
		err := rows.Scan(&c.ID, &c.EmployeeID, &c.Amount, &c.EffectiveDate, &c.EndDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compensation record: %w", err)
		}
		records = append(records, c)
	}

	return records, nil
}

func (r *employeeDirectory) ListInfractions(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) ([]employee.Infraction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, amount, reason, occurred_at
		FROM infractions
		WHERE employee_id = $1
		  AND occurred_at >= $2
		  AND occurred_at <= $3
		ORDER BY occurred_at
	`

	rows, err := q.Query(ctx, query, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list infractions: %w", err)
	}
	defer rows.Close()

	var infractions []employee.Infraction
	for rows.Next() {
		var inf employee.Infraction
		err := rows.Scan(&inf.ID, &inf.EmployeeID, &inf.Amount, &inf.Reason, &inf.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan infraction: %w", err)
		}
		infractions = append(infractions, inf)
	}

	return infractions, nil
}

func (r *employeeDirectory) ListTaxBrackets(ctx context.Context) ([]employee.TaxBracket, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, lower_bound, upper_bound, tax_rate, insurance_rate
		FROM tax_brackets
		ORDER BY lower_bound
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax brackets: %w", err)
	}
	defer rows.Close()

	var brackets []employee.TaxBracket
	for rows.Next() {
		var b employee.TaxBracket
		err := rows.Scan(&b.ID, &b.LowerBound, &b.UpperBound, &b.TaxRate, &b.InsuranceRate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tax bracket: %w", err)
		}
		brackets = append(brackets, b)
	}

	return brackets, nil
}

func (r *employeeDirectory) queryEmployees(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]employee.Employee, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var e employee.Employee
		err := rows.Scan(&e.ID, &e.FullName, &e.PayrollAreaID, &e.Status, &e.HireDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	return employees, nil
}
