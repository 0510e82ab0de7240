package department

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/department"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type DepartmentServiceImpl struct {
	tx          database.Transactor
	departments department.Repository
	now         func() time.Time
}

func NewDepartmentService(tx database.Transactor, departments department.Repository) department.Service {
	return &DepartmentServiceImpl{tx: tx, departments: departments, now: time.Now}
}

func (s *DepartmentServiceImpl) uniqueName(ctx context.Context, tc tenant.Context, parentID, name, excludeID string) validator.Check {
	return validator.Duplicate(ctx, "name",
		validator.DuplicateFinderFunc(func(ctx context.Context, key validator.Key) ([]string, error) {
			return s.departments.FindByName(ctx, tc.CompanyID, key[0], key[1])
		}),
		validator.Key{parentID, department.NormalizeName(name)}, excludeID,
		"a department with this name already exists at this level",
	)
}

func (s *DepartmentServiceImpl) acyclic(ctx context.Context, tc tenant.Context, nodeID, parentID string) validator.Check {
	return validator.Circular(ctx, "parent_id",
		validator.ParentLookupFunc(func(ctx context.Context, id string) (string, bool, error) {
			return s.departments.ParentOf(ctx, tc.CompanyID, id)
		}),
		nodeID, parentID,
	)
}

// Create implements department.Service.
func (s *DepartmentServiceImpl) Create(ctx context.Context, tc tenant.Context, req department.CreateRequest) (department.Response, error) {
	if err := tc.Require(user.PermissionDepartmentManage); err != nil {
		return department.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return department.Response{}, err
	}

	now := s.now()
	d := department.Department{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CompanyID: tc.CompanyID,
		Name:      strings.TrimSpace(req.Name),
		ParentID:  req.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.departments.LockTree(ctx, tc.CompanyID); err != nil {
			return err
		}
		err := validator.Collect(
			s.acyclic(ctx, tc, "", d.Parent()),
			s.uniqueName(ctx, tc, d.Parent(), d.Name, ""),
		)
		if err != nil {
			return err
		}
		return s.departments.Create(ctx, d)
	})
	if err != nil {
		return department.Response{}, err
	}

	slog.Info("Department created", "department_id", d.ID, "parent_id", d.ParentID, "actor_id", tc.UserID)
	return department.NewResponse(d), nil
}

// Rename implements department.Service.
func (s *DepartmentServiceImpl) Rename(ctx context.Context, tc tenant.Context, id string, req department.RenameRequest) (department.Response, error) {
	if err := tc.Require(user.PermissionDepartmentManage); err != nil {
		return department.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return department.Response{}, err
	}

	var d department.Department
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.departments.LockTree(ctx, tc.CompanyID); err != nil {
			return err
		}
		var err error
		d, err = s.departments.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(req.Name)
		if err := validator.Collect(s.uniqueName(ctx, tc, d.Parent(), name, d.ID)); err != nil {
			return err
		}
		d.Name = name
		d.UpdatedAt = s.now()
		return s.departments.Update(ctx, d)
	})
	if err != nil {
		return department.Response{}, err
	}
	return department.NewResponse(d), nil
}

// Move implements department.Service.
func (s *DepartmentServiceImpl) Move(ctx context.Context, tc tenant.Context, id string, req department.MoveRequest) (department.Response, error) {
	if err := tc.Require(user.PermissionDepartmentManage); err != nil {
		return department.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return department.Response{}, err
	}

	var d department.Department
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.departments.LockTree(ctx, tc.CompanyID); err != nil {
			return err
		}
		var err error
		d, err = s.departments.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		d.ParentID = req.ParentID
		err = validator.Collect(
			s.acyclic(ctx, tc, d.ID, d.Parent()),
			s.uniqueName(ctx, tc, d.Parent(), d.Name, d.ID),
		)
		if err != nil {
			return err
		}
		d.UpdatedAt = s.now()
		return s.departments.Update(ctx, d)
	})
	if err != nil {
		return department.Response{}, err
	}

	slog.Info("Department moved", "department_id", d.ID, "parent_id", d.ParentID, "actor_id", tc.UserID)
	return department.NewResponse(d), nil
}

// List implements department.Service.
func (s *DepartmentServiceImpl) List(ctx context.Context, tc tenant.Context) ([]department.Response, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.departments.List(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	out := make([]department.Response, 0, len(rows))
	for _, d := range rows {
		out = append(out, department.NewResponse(d))
	}
	return out, nil
}
