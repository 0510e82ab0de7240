package tenant

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
)

var (
	ErrMissingTenant   = apperror.New(apperror.KindForbidden, "company context is required")
	ErrMissingEmployee = apperror.New(apperror.KindForbidden, "employee profile is required")
	ErrAccessDenied    = apperror.New(apperror.KindForbidden, "access to this record is not allowed")
	ErrForbidden       = user.ErrInsufficientPermissions
)

// Context identifies who is acting and inside which company. It is passed
// explicitly into every service call.
type Context struct {
	CompanyID  string
	UserID     string
	EmployeeID string
	Role       user.Role
}

// Validate fails when the caller is not bound to a company.
func (c Context) Validate() error {
	if c.CompanyID == "" || c.UserID == "" {
		return ErrMissingTenant
	}
	return nil
}

func (c Context) IsManager() bool {
	return c.Role.IsManager()
}

func (c Context) Can(p user.Permission) bool {
	return user.HasPermission(c.Role, p)
}

// Require fails unless the role holds p.
func (c Context) Require(p user.Permission) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.Can(p) {
		return ErrForbidden
	}
	return nil
}

// CanAccessEmployee is true for the employee themself and for managers.
func (c Context) CanAccessEmployee(employeeID string) bool {
	if c.IsManager() {
		return true
	}
	return c.EmployeeID != "" && c.EmployeeID == employeeID
}

// RequireEmployee fails unless the caller is allowed to act for employeeID.
func (c Context) RequireEmployee(employeeID string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.CanAccessEmployee(employeeID) {
		return ErrAccessDenied
	}
	return nil
}

// SelfOr returns employeeID, defaulting to the caller's own employee record.
func (c Context) SelfOr(employeeID string) (string, error) {
	if employeeID != "" {
		return employeeID, nil
	}
	if c.EmployeeID == "" {
		return "", ErrMissingEmployee
	}
	return c.EmployeeID, nil
}

type ctxKey struct{}

func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext is for the HTTP layer only; services receive Context as an argument.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(Context)
	return tc, ok
}
