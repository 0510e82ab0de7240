package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type payrollPeriodRepository struct {
	db *database.DB
}

func NewPayrollPeriodRepository(db *database.DB) payroll.PeriodRepository {
	return &payrollPeriodRepository{db: db}
}

const payrollPeriodColumns = `id, company_id, name, start_date, end_date, pay_date, status, closed_at, created_at, updated_at`

func scanPayrollPeriod(row pgx.Row) (payroll.PayrollPeriod, error) {
	var p payroll.PayrollPeriod
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.StartDate, &p.EndDate, &p.PayDate,
		&p.Status, &p.ClosedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *payrollPeriodRepository) Create(ctx context.Context, p payroll.PayrollPeriod) error {
	q := GetQuerier(ctx, r.db)
	query := `INSERT INTO payroll_periods (` + payrollPeriodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := q.Exec(ctx, query, p.ID, p.CompanyID, p.Name, p.StartDate, p.EndDate, p.PayDate,
		string(p.Status), p.ClosedAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payroll period: %w", err)
	}
	return nil
}

func (r *payrollPeriodRepository) GetByID(ctx context.Context, companyID, id string) (payroll.PayrollPeriod, error) {
	return r.get(ctx, companyID, id, "")
}

func (r *payrollPeriodRepository) GetByIDForUpdate(ctx context.Context, companyID, id string) (payroll.PayrollPeriod, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *payrollPeriodRepository) get(ctx context.Context, companyID, id, lock string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + payrollPeriodColumns + ` FROM payroll_periods WHERE company_id = $1 AND id = $2` + lock
	p, err := scanPayrollPeriod(q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPayrollPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}
	return p, nil
}

func (r *payrollPeriodRepository) Update(ctx context.Context, p payroll.PayrollPeriod) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE payroll_periods SET status = $3, closed_at = $4, updated_at = $5
		WHERE company_id = $1 AND id = $2
	`, p.CompanyID, p.ID, string(p.Status), p.ClosedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update payroll period: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return payroll.ErrPayrollPeriodNotFound
	}
	return nil
}

func (r *payrollPeriodRepository) List(ctx context.Context, companyID string, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*filter.Status))
		argIdx++
	}
	if filter.Year != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("EXTRACT(YEAR FROM start_date) = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_periods`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll periods: %w", err)
	}

	query := `SELECT ` + payrollPeriodColumns + ` FROM payroll_periods` + where +
		fmt.Sprintf(" ORDER BY start_date DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	out := make([]payroll.PayrollPeriod, 0)
	for rows.Next() {
		p, err := scanPayrollPeriod(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *payrollPeriodRepository) ListRanges(ctx context.Context, companyID string) ([]validator.Ranged, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT id, start_date, end_date FROM payroll_periods WHERE company_id = $1`, companyID)
	return collectRanges(rows, err)
}

type payrollEntryRepository struct {
	db *database.DB
}

func NewPayrollEntryRepository(db *database.DB) payroll.EntryRepository {
	return &payrollEntryRepository{db: db}
}

const payrollEntrySelect = `
	SELECT pe.id, pe.company_id, pe.period_id, pe.employee_id, pe.base_salary, pe.total_allowances,
		   pe.total_deductions, pe.net_salary, pe.notes, pe.status, pe.approved_by, pe.approved_at,
		   pe.paid_by, pe.paid_at, pe.created_at, pe.updated_at, e.full_name
	FROM payroll_entries pe
	JOIN employees e ON e.id = pe.employee_id`

func scanPayrollEntry(row pgx.Row) (payroll.PayrollEntry, error) {
	var e payroll.PayrollEntry
	err := row.Scan(&e.ID, &e.CompanyID, &e.PeriodID, &e.EmployeeID, &e.BaseSalary, &e.TotalAllowances,
		&e.TotalDeductions, &e.NetSalary, &e.Notes, &e.Status, &e.ApprovedBy, &e.ApprovedAt,
		&e.PaidBy, &e.PaidAt, &e.CreatedAt, &e.UpdatedAt, &e.EmployeeName)
	return e, err
}

func (r *payrollEntryRepository) Create(ctx context.Context, e payroll.PayrollEntry) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO payroll_entries (
			id, company_id, period_id, employee_id, base_salary, total_allowances,
			total_deductions, net_salary, notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.CompanyID, e.PeriodID, e.EmployeeID, e.BaseSalary, e.TotalAllowances,
		e.TotalDeductions, e.NetSalary, e.Notes, string(e.Status), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payroll entry: %w", err)
	}
	return nil
}

func (r *payrollEntryRepository) GetByIDForUpdate(ctx context.Context, companyID, id string) (payroll.PayrollEntry, error) {
	q := GetQuerier(ctx, r.db)
	e, err := scanPayrollEntry(q.QueryRow(ctx, payrollEntrySelect+` WHERE pe.company_id = $1 AND pe.id = $2 FOR UPDATE OF pe`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollEntry{}, payroll.ErrPayrollEntryNotFound
		}
		return payroll.PayrollEntry{}, fmt.Errorf("failed to get payroll entry: %w", err)
	}
	return e, nil
}

func (r *payrollEntryRepository) Update(ctx context.Context, e payroll.PayrollEntry) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE payroll_entries
		SET base_salary = $3, total_allowances = $4, total_deductions = $5, net_salary = $6, notes = $7,
			status = $8, approved_by = $9, approved_at = $10, paid_by = $11, paid_at = $12, updated_at = $13
		WHERE company_id = $1 AND id = $2
	`, e.CompanyID, e.ID, e.BaseSalary, e.TotalAllowances, e.TotalDeductions, e.NetSalary, e.Notes,
		string(e.Status), e.ApprovedBy, e.ApprovedAt, e.PaidBy, e.PaidAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update payroll entry: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return payroll.ErrPayrollEntryNotFound
	}
	return nil
}

func (r *payrollEntryRepository) ListByPeriod(ctx context.Context, companyID, periodID string) ([]payroll.PayrollEntry, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, payrollEntrySelect+` WHERE pe.company_id = $1 AND pe.period_id = $2 ORDER BY e.full_name`, companyID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll entries: %w", err)
	}
	defer rows.Close()

	var out []payroll.PayrollEntry
	for rows.Next() {
		e, err := scanPayrollEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *payrollEntryRepository) FindByEmployee(ctx context.Context, companyID, periodID, employeeID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id FROM payroll_entries WHERE company_id = $1 AND period_id = $2 AND employee_id = $3
	`, companyID, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
