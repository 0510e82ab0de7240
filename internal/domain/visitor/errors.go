package visitor

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var ErrVisitNotFound = apperror.New(apperror.KindNotFound, "visit not found")
