package evaluation

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrEvaluationNotFound     = apperror.New(apperror.KindNotFound, "evaluation not found")
	ErrNotEvaluatedEmployee   = apperror.New(apperror.KindForbidden, "only the evaluated employee can acknowledge an evaluation")
	ErrRecommendationRequired = apperror.New(apperror.KindValidation, "probationary evaluations need a recommendation before submission")
	ErrEmployeeNotActive      = apperror.New(apperror.KindInvalidTransition, "cannot regularize an employee who is no longer active")
)
