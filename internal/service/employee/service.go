package employee

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	tx           database.Transactor
	employeeRepo employee.EmployeeRepository
	jobs         jobs.Dispatcher
	now          func() time.Time
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	dispatcher jobs.Dispatcher,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:           tx,
		employeeRepo: employeeRepo,
		jobs:         dispatcher,
		now:          time.Now,
	}
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, tc tenant.Context, id string) (employee.EmployeeResponse, error) {
	if err := tc.RequireEmployee(id); err != nil {
		return employee.EmployeeResponse{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, tc.CompanyID, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(emp), nil
}

// ChangeEmploymentStatus implements employee.EmployeeService. Seat usage is
// recomputed in the background once the change is committed.
func (s *EmployeeServiceImpl) ChangeEmploymentStatus(ctx context.Context, tc tenant.Context, id string, req employee.ChangeStatusRequest) (employee.EmployeeResponse, error) {
	if err := tc.Require(user.PermissionEmployeeManage); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	to, err := employee.EmploymentMachine.Parse(req.Status)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if tc.EmployeeID != "" && tc.EmployeeID == id {
		return employee.EmployeeResponse{}, tenant.ErrAccessDenied
	}

	var emp employee.Employee
	var from employee.EmploymentStatus
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		emp, err = s.employeeRepo.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		from = emp.EmploymentStatus
		if _, err := employee.EmploymentMachine.Transition(emp.EmploymentStatus, to); err != nil {
			return err
		}
		effective := req.Effective()
		if effective.Before(validator.Truncate(emp.HireDate)) {
			return validator.Fail("effective_date", "effective_date cannot be before the hire date")
		}

		emp.EmploymentStatus = to
		emp.ResignationDate = &effective
		emp.UpdatedAt = s.now()
		return s.employeeRepo.UpdateEmployment(ctx, emp)
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employment status changed", "employee_id", emp.ID, "from", from, "to", emp.EmploymentStatus, "actor_id", tc.UserID)
	jobs.Emit(ctx, s.jobs, subscription.JobRecomputeSeats, tc.CompanyID, subscription.RecomputeSeatsPayload{CompanyID: tc.CompanyID})
	return employee.NewEmployeeResponse(emp), nil
}
