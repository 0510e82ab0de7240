package competency

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrAssignmentNotFound    = apperror.New(apperror.KindNotFound, "competency assignment not found")
	ErrKPIAssignmentNotFound = apperror.New(apperror.KindNotFound, "KPI assignment not found")
)
