package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type leaveApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.ApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

const leaveApplicationSelect = `
	SELECT la.id, la.company_id, la.employee_id, la.leave_type_id,
		   la.start_date, la.end_date, la.days, la.reason,
		   la.status, la.balance_reserved, la.submitted_at, la.decided_at,
		   la.cancelled_by, la.cancelled_at, la.cancellation_reason,
		   la.created_at, la.updated_at,
		   e.full_name, lt.name
	FROM leave_applications la
	JOIN employees e ON e.id = la.employee_id
	JOIN leave_types lt ON lt.id = la.leave_type_id`

func scanLeaveApplication(row pgx.Row) (leave.LeaveApplication, error) {
	var a leave.LeaveApplication
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.EmployeeID, &a.LeaveTypeID,
		&a.StartDate, &a.EndDate, &a.Days, &a.Reason,
		&a.Status, &a.BalanceReserved, &a.SubmittedAt, &a.DecidedAt,
		&a.CancelledBy, &a.CancelledAt, &a.CancellationReason,
		&a.CreatedAt, &a.UpdatedAt,
		&a.EmployeeName, &a.LeaveTypeName,
	)
	return a, err
}

// Create implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Create(ctx context.Context, a leave.LeaveApplication) error {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_applications (
			id, company_id, employee_id, leave_type_id,
			start_date, end_date, days, reason,
			status, balance_reserved, submitted_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := q.Exec(ctx, query,
		a.ID, a.CompanyID, a.EmployeeID, a.LeaveTypeID,
		a.StartDate, a.EndDate, a.Days, a.Reason,
		string(a.Status), a.BalanceReserved, a.SubmittedAt,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create leave application: %w", err)
	}
	return nil
}

// GetByID implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (leave.LeaveApplication, error) {
	return r.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (leave.LeaveApplication, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE OF la")
}

func (r *leaveApplicationRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)
	query := leaveApplicationSelect + ` WHERE la.company_id = $1 AND la.id = $2` + lock
	a, err := scanLeaveApplication(q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
		}
		return leave.LeaveApplication{}, err
	}
	return a, nil
}

// Update implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Update(ctx context.Context, a leave.LeaveApplication) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE leave_applications
		SET leave_type_id = $3, start_date = $4, end_date = $5, days = $6, reason = $7,
			status = $8, balance_reserved = $9, submitted_at = $10, decided_at = $11,
			cancelled_by = $12, cancelled_at = $13, cancellation_reason = $14,
			updated_at = $15
		WHERE company_id = $1 AND id = $2
	`
	tag, err := q.Exec(ctx, query,
		a.CompanyID, a.ID,
		a.LeaveTypeID, a.StartDate, a.EndDate, a.Days, a.Reason,
		string(a.Status), a.BalanceReserved, a.SubmittedAt, a.DecidedAt,
		a.CancelledBy, a.CancelledAt, a.CancellationReason,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update leave application: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrLeaveApplicationNotFound
	}
	return nil
}

// List implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) List(ctx context.Context, companyID string, filter leave.ListApplicationsFilter) ([]leave.LeaveApplication, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"la.company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("la.employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("la.status = $%d", argIdx))
		args = append(args, string(*filter.Status))
		argIdx++
	}
	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM leave_applications la` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leave applications: %w", err)
	}

	query := leaveApplicationSelect + where +
		fmt.Sprintf(" ORDER BY la.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps := make([]leave.LeaveApplication, 0)
	for rows.Next() {
		a, err := scanLeaveApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, a)
	}
	return apps, total, rows.Err()
}

// ListActiveRanges implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ListActiveRanges(ctx context.Context, companyID, employeeID string) ([]validator.Ranged, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, start_date, end_date
		FROM leave_applications
		WHERE company_id = $1 AND employee_id = $2 AND status = ANY($3)
	`
	return collectRanges(q.Query(ctx, query, companyID, employeeID, statusStrings(leave.ActiveStatuses)))
}

// LockEmployee implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) LockEmployee(ctx context.Context, companyID, employeeID string) error {
	q := GetQuerier(ctx, r.db)
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('leave_applications:' || $1::text || ':' || $2::text))`, companyID, employeeID); err != nil {
		return fmt.Errorf("lock employee leave: %w", err)
	}
	return nil
}

// statusStrings converts typed statuses into a text[] argument.
func statusStrings[S ~string](statuses []S) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
