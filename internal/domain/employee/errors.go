package employee

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrEmployeeNotFound = apperror.New(apperror.KindNotFound, "employee not found")
)
