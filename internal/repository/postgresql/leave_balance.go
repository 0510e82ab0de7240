package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const leaveBalanceColumns = `
	id, company_id, employee_id, leave_type_id, year,
	opening_balance, earned_quota, rollover_quota, adjustment_quota,
	used_quota, pending_quota,
	created_at, updated_at`

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.OpeningBalance, &b.EarnedQuota, &b.RolloverQuota, &b.AdjustmentQuota,
		&b.UsedQuota, &b.PendingQuota,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// GetForUpdate implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetForUpdate(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE company_id = $1 AND employee_id = $2 AND leave_type_id = $3 AND year = $4
		FOR UPDATE
	`
	b, err := scanLeaveBalance(q.QueryRow(ctx, query, companyID, employeeID, leaveTypeID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrLeaveBalanceNotFound
		}
		return leave.LeaveBalance{}, err
	}
	return b, nil
}

// ListByEmployee implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE company_id = $1 AND employee_id = $2 AND year = $3
		ORDER BY leave_type_id
	`
	rows, err := q.Query(ctx, query, companyID, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]leave.LeaveBalance, 0)
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// Update implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Update(ctx context.Context, b leave.LeaveBalance) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE leave_balances
		SET adjustment_quota = $3, used_quota = $4, pending_quota = $5, updated_at = $6
		WHERE company_id = $1 AND id = $2
	`
	tag, err := q.Exec(ctx, query, b.CompanyID, b.ID, b.AdjustmentQuota, b.UsedQuota, b.PendingQuota, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update leave balance: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrLeaveBalanceNotFound
	}
	return nil
}

// AppendEntry implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) AppendEntry(ctx context.Context, e leave.BalanceEntry) error {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_balance_entries (id, company_id, balance_id, kind, days, reason, actor_id, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := q.Exec(ctx, query, e.ID, e.CompanyID, e.BalanceID, string(e.Kind), e.Days, e.Reason, e.ActorID, e.ReferenceID, e.CreatedAt); err != nil {
		return fmt.Errorf("append leave balance entry: %w", err)
	}
	return nil
}
