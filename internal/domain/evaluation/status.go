package evaluation

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"

type Status string

const (
	StatusDraft        Status = "draft"
	StatusSubmitted    Status = "submitted"
	StatusAcknowledged Status = "acknowledged"
	StatusClosed       Status = "closed"
)

// Machine covers both performance and probationary evaluations. A submitted
// evaluation may go back to draft for corrections until it is acknowledged.
var Machine = status.NewMachine("evaluation", status.SameNoop,
	map[Status]status.Meta{
		StatusDraft:        {Label: "Draft", Color: "secondary", Editable: true},
		StatusSubmitted:    {Label: "Submitted", Color: "primary"},
		StatusAcknowledged: {Label: "Acknowledged", Color: "info"},
		StatusClosed:       {Label: "Closed", Color: "dark", Terminal: true},
	},
	map[Status][]Status{
		StatusDraft:        {StatusSubmitted},
		StatusSubmitted:    {StatusDraft, StatusAcknowledged},
		StatusAcknowledged: {StatusClosed},
	},
)

type Kind string

const (
	KindPerformance  Kind = "performance"
	KindProbationary Kind = "probationary"
)

func (k Kind) Valid() bool {
	return k == KindPerformance || k == KindProbationary
}

type Recommendation string

const (
	RecommendRegularize Recommendation = "regularize"
	RecommendExtend     Recommendation = "extend"
	RecommendTerminate  Recommendation = "terminate"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendRegularize, RecommendExtend, RecommendTerminate:
		return true
	}
	return false
}
