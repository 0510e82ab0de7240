package department

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var ErrDepartmentNotFound = apperror.New(apperror.KindNotFound, "department not found")
