package competency

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/competency"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type CompetencyServiceImpl struct {
	tx          database.Transactor
	assignments competency.Repository
	employees   employee.EmployeeRepository
	now         func() time.Time
}

func NewCompetencyService(tx database.Transactor, assignments competency.Repository, employees employee.EmployeeRepository) competency.Service {
	return &CompetencyServiceImpl{tx: tx, assignments: assignments, employees: employees, now: time.Now}
}

// Assign implements competency.Service.
func (s *CompetencyServiceImpl) Assign(ctx context.Context, tc tenant.Context, req competency.AssignRequest) (competency.AssignmentResponse, error) {
	if err := tc.Require(user.PermissionCompetencyManage); err != nil {
		return competency.AssignmentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return competency.AssignmentResponse{}, err
	}

	a := competency.Assignment{
		ID:           uuid.Must(uuid.NewV7()).String(),
		CompanyID:    tc.CompanyID,
		EmployeeID:   req.EmployeeID,
		CompetencyID: req.CompetencyID,
		Level:        req.Level,
		AssignedBy:   tc.UserID,
		CreatedAt:    s.now(),
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.employees.GetByID(ctx, tc.CompanyID, a.EmployeeID); err != nil {
			return err
		}
		err := validator.Collect(validator.Duplicate(ctx, "competency_id",
			validator.DuplicateFinderFunc(func(ctx context.Context, key validator.Key) ([]string, error) {
				return s.assignments.FindAssignment(ctx, tc.CompanyID, a.EmployeeID, a.CompetencyID, a.Level)
			}),
			validator.Key{a.EmployeeID, a.CompetencyID}, "",
			"competency is already assigned to this employee at this level",
		))
		if err != nil {
			return err
		}
		return s.assignments.CreateAssignment(ctx, a)
	})
	if err != nil {
		return competency.AssignmentResponse{}, err
	}

	slog.Info("Competency assigned", "assignment_id", a.ID, "employee_id", a.EmployeeID, "level", a.Level)
	return competency.NewAssignmentResponse(a), nil
}

// Unassign implements competency.Service.
func (s *CompetencyServiceImpl) Unassign(ctx context.Context, tc tenant.Context, id string) error {
	if err := tc.Require(user.PermissionCompetencyManage); err != nil {
		return err
	}
	return s.assignments.DeleteAssignment(ctx, tc.CompanyID, id)
}

// ListByEmployee implements competency.Service.
func (s *CompetencyServiceImpl) ListByEmployee(ctx context.Context, tc tenant.Context, employeeID string) ([]competency.AssignmentResponse, error) {
	employeeID, err := tc.SelfOr(employeeID)
	if err != nil {
		return nil, err
	}
	if err := tc.RequireEmployee(employeeID); err != nil {
		return nil, err
	}
	rows, err := s.assignments.ListAssignments(ctx, tc.CompanyID, employeeID)
	if err != nil {
		return nil, err
	}
	out := make([]competency.AssignmentResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, competency.NewAssignmentResponse(a))
	}
	return out, nil
}

// AssignKPI implements competency.Service.
func (s *CompetencyServiceImpl) AssignKPI(ctx context.Context, tc tenant.Context, req competency.AssignKPIRequest) (competency.KPIAssignmentResponse, error) {
	if err := tc.Require(user.PermissionCompetencyManage); err != nil {
		return competency.KPIAssignmentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return competency.KPIAssignmentResponse{}, err
	}

	a := competency.KPIAssignment{
		ID:            uuid.Must(uuid.NewV7()).String(),
		CompanyID:     tc.CompanyID,
		TemplateID:    req.TemplateID,
		ParticipantID: req.ParticipantID,
		PeriodYear:    req.PeriodYear,
		AssignedBy:    tc.UserID,
		CreatedAt:     s.now(),
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.employees.GetByID(ctx, tc.CompanyID, a.ParticipantID); err != nil {
			return err
		}
		err := validator.Collect(validator.Duplicate(ctx, "template_id",
			validator.DuplicateFinderFunc(func(ctx context.Context, key validator.Key) ([]string, error) {
				return s.assignments.FindKPIAssignment(ctx, tc.CompanyID, a.TemplateID, a.ParticipantID, a.PeriodYear)
			}),
			validator.Key{a.TemplateID, a.ParticipantID}, "",
			"KPI template is already assigned to this participant for the year",
		))
		if err != nil {
			return err
		}
		return s.assignments.CreateKPIAssignment(ctx, a)
	})
	if err != nil {
		return competency.KPIAssignmentResponse{}, err
	}

	slog.Info("KPI assigned", "assignment_id", a.ID, "participant_id", a.ParticipantID, "year", a.PeriodYear)
	return competency.NewKPIAssignmentResponse(a), nil
}

// UnassignKPI implements competency.Service.
func (s *CompetencyServiceImpl) UnassignKPI(ctx context.Context, tc tenant.Context, id string) error {
	if err := tc.Require(user.PermissionCompetencyManage); err != nil {
		return err
	}
	return s.assignments.DeleteKPIAssignment(ctx, tc.CompanyID, id)
}

// ListKPIs implements competency.Service. A zero year lists every year.
func (s *CompetencyServiceImpl) ListKPIs(ctx context.Context, tc tenant.Context, participantID string, year int) ([]competency.KPIAssignmentResponse, error) {
	participantID, err := tc.SelfOr(participantID)
	if err != nil {
		return nil, err
	}
	if err := tc.RequireEmployee(participantID); err != nil {
		return nil, err
	}
	rows, err := s.assignments.ListKPIAssignments(ctx, tc.CompanyID, participantID, year)
	if err != nil {
		return nil, err
	}
	out := make([]competency.KPIAssignmentResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, competency.NewKPIAssignmentResponse(a))
	}
	return out, nil
}
