package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type loanApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLoanApplicationRepository(db *database.DB) loan.ApplicationRepository {
	return &loanApplicationRepositoryImpl{db: db}
}

const loanApplicationSelect = `
	SELECT la.id, la.company_id, la.employee_id, la.loan_type, la.principal, la.total_amount,
		   la.installments, la.purpose, la.status, la.decided_by, la.decided_at, la.rejection_reason,
		   la.created_at, la.updated_at, e.full_name
	FROM loan_applications la
	JOIN employees e ON e.id = la.employee_id`

func scanLoanApplication(row pgx.Row) (loan.LoanApplication, error) {
	var a loan.LoanApplication
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.EmployeeID, &a.LoanType, &a.Principal, &a.TotalAmount,
		&a.Installments, &a.Purpose, &a.Status, &a.DecidedBy, &a.DecidedAt, &a.RejectionReason,
		&a.CreatedAt, &a.UpdatedAt, &a.EmployeeName,
	)
	return a, err
}

// Create implements loan.ApplicationRepository.
func (r *loanApplicationRepositoryImpl) Create(ctx context.Context, a loan.LoanApplication) error {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO loan_applications (
			id, company_id, employee_id, loan_type, principal, total_amount,
			installments, purpose, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := q.Exec(ctx, query,
		a.ID, a.CompanyID, a.EmployeeID, a.LoanType, a.Principal, a.TotalAmount,
		a.Installments, a.Purpose, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create loan application: %w", err)
	}
	return nil
}

// GetByID implements loan.ApplicationRepository.
func (r *loanApplicationRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (loan.LoanApplication, error) {
	return r.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements loan.ApplicationRepository.
func (r *loanApplicationRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (loan.LoanApplication, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE OF la")
}

func (r *loanApplicationRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (loan.LoanApplication, error) {
	q := GetQuerier(ctx, r.db)
	a, err := scanLoanApplication(q.QueryRow(ctx, loanApplicationSelect+` WHERE la.company_id = $1 AND la.id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loan.LoanApplication{}, loan.ErrLoanApplicationNotFound
		}
		return loan.LoanApplication{}, err
	}
	return a, nil
}

// Update implements loan.ApplicationRepository.
func (r *loanApplicationRepositoryImpl) Update(ctx context.Context, a loan.LoanApplication) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE loan_applications
		SET status = $3, decided_by = $4, decided_at = $5, rejection_reason = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2
	`
	tag, err := q.Exec(ctx, query, a.CompanyID, a.ID, string(a.Status), a.DecidedBy, a.DecidedAt, a.RejectionReason, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update loan application: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return loan.ErrLoanApplicationNotFound
	}
	return nil
}

// FindOpen implements loan.ApplicationRepository.
func (r *loanApplicationRepositoryImpl) FindOpen(ctx context.Context, companyID, employeeID, loanType string) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT la.id
		FROM loan_applications la
		LEFT JOIN loans l ON l.application_id = la.id
		WHERE la.company_id = $1 AND la.employee_id = $2 AND la.loan_type = $3
		  AND (la.status = $4 OR l.status = ANY($5))
	`
	rows, err := q.Query(ctx, query, companyID, employeeID, loanType,
		string(loan.ApplicationPending), statusStrings([]loan.LoanStatus{loan.LoanActive, loan.LoanDefaulted}))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

type loanRepositoryImpl struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.LoanRepository {
	return &loanRepositoryImpl{db: db}
}

const loanColumns = `
	id, company_id, employee_id, application_id, loan_type,
	total_amount, remaining_balance, total_paid, installment_amount,
	status, start_date, completed_at, created_at, updated_at`

func scanLoan(row pgx.Row) (loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.EmployeeID, &l.ApplicationID, &l.LoanType,
		&l.TotalAmount, &l.RemainingBalance, &l.TotalPaid, &l.InstallmentAmount,
		&l.Status, &l.StartDate, &l.CompletedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// Create implements loan.LoanRepository.
func (r *loanRepositoryImpl) Create(ctx context.Context, l loan.Loan) error {
	q := GetQuerier(ctx, r.db)
	query := `INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := q.Exec(ctx, query,
		l.ID, l.CompanyID, l.EmployeeID, l.ApplicationID, l.LoanType,
		l.TotalAmount, l.RemainingBalance, l.TotalPaid, l.InstallmentAmount,
		string(l.Status), l.StartDate, l.CompletedAt, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create loan: %w", err)
	}
	return nil
}

// GetByID implements loan.LoanRepository.
func (r *loanRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (loan.Loan, error) {
	return r.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements loan.LoanRepository.
func (r *loanRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (loan.Loan, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *loanRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + loanColumns + ` FROM loans WHERE company_id = $1 AND id = $2` + lock
	l, err := scanLoan(q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loan.Loan{}, loan.ErrLoanNotFound
		}
		return loan.Loan{}, err
	}
	return l, nil
}

// Update implements loan.LoanRepository.
func (r *loanRepositoryImpl) Update(ctx context.Context, l loan.Loan) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE loans
		SET remaining_balance = $3, total_paid = $4, status = $5, completed_at = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2
	`
	tag, err := q.Exec(ctx, query, l.CompanyID, l.ID, l.RemainingBalance, l.TotalPaid, string(l.Status), l.CompletedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return loan.ErrLoanNotFound
	}
	return nil
}

// List implements loan.LoanRepository.
func (r *loanRepositoryImpl) List(ctx context.Context, companyID string, filter loan.ListFilter) ([]loan.Loan, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2
	if filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*filter.Status))
		argIdx++
	}
	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM loans`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count loans: %w", err)
	}

	query := `SELECT ` + loanColumns + ` FROM loans` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// CreateDeductions implements loan.LoanRepository.
func (r *loanRepositoryImpl) CreateDeductions(ctx context.Context, ds []loan.Deduction) error {
	if len(ds) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(ds))
	valueArgs := make([]interface{}, 0, len(ds)*6)
	for i, d := range ds {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		valueArgs = append(valueArgs, d.ID, d.LoanID, d.Sequence, d.DueDate, d.Amount, string(d.Status))
	}
	query := `INSERT INTO loan_deductions (id, loan_id, sequence, due_date, amount, status) VALUES ` +
		strings.Join(valueStrings, ", ")
	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("create loan deductions: %w", err)
	}
	return nil
}

// ListDeductions implements loan.LoanRepository.
func (r *loanRepositoryImpl) ListDeductions(ctx context.Context, loanID string) ([]loan.Deduction, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id, loan_id, sequence, due_date, amount, status, deducted_at
		FROM loan_deductions
		WHERE loan_id = $1
		ORDER BY sequence
	`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []loan.Deduction
	for rows.Next() {
		var d loan.Deduction
		if err := rows.Scan(&d.ID, &d.LoanID, &d.Sequence, &d.DueDate, &d.Amount, &d.Status, &d.DeductedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateDeduction implements loan.LoanRepository.
func (r *loanRepositoryImpl) UpdateDeduction(ctx context.Context, d loan.Deduction) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		UPDATE loan_deductions SET status = $2, deducted_at = $3 WHERE id = $1
	`, d.ID, string(d.Status), d.DeductedAt)
	if err != nil {
		return fmt.Errorf("update loan deduction: %w", err)
	}
	return nil
}

// CreatePayment implements loan.LoanRepository.
func (r *loanRepositoryImpl) CreatePayment(ctx context.Context, p loan.Payment) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO loan_payments (id, company_id, loan_id, amount, paid_at, reference, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.CompanyID, p.LoanID, p.Amount, p.PaidAt, p.Reference, p.RecordedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create loan payment: %w", err)
	}
	return nil
}

// ListPayments implements loan.LoanRepository.
func (r *loanRepositoryImpl) ListPayments(ctx context.Context, loanID string) ([]loan.Payment, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id, company_id, loan_id, amount, paid_at, reference, recorded_by, created_at
		FROM loan_payments
		WHERE loan_id = $1
		ORDER BY paid_at, created_at
	`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []loan.Payment
	for rows.Next() {
		var p loan.Payment
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.LoanID, &p.Amount, &p.PaidAt, &p.Reference, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
