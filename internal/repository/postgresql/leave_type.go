package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, company_id, name, code, color,
			   is_active, requires_balance,
			   min_notice_days, max_days_per_request, allow_backdate,
			   created_at, updated_at
		FROM leave_types
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	var lt leave.LeaveType
	err := q.QueryRow(ctx, query, companyID, id).Scan(
		&lt.ID, &lt.CompanyID, &lt.Name, &lt.Code, &lt.Color,
		&lt.IsActive, &lt.RequiresBalance,
		&lt.MinNoticeDays, &lt.MaxDaysPerRequest, &lt.AllowBackdate,
		&lt.CreatedAt, &lt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, err
	}
	return lt, nil
}
