package approval

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type DecisionRequest struct {
	Note string `json:"note,omitempty"`
}

func (r *DecisionRequest) Validate() error {
	if len(r.Note) > 1000 {
		return validator.Fail("note", "note must not exceed 1000 characters")
	}
	return nil
}

type LevelResponse struct {
	Level      int     `json:"level"`
	ApproverID *string `json:"approver_id,omitempty"`
	Decision   string  `json:"decision"`
	DecidedBy  *string `json:"decided_by,omitempty"`
	DecidedAt  *string `json:"decided_at,omitempty"`
	Note       *string `json:"note,omitempty"`
}

func NewLevelResponses(c Chain) []LevelResponse {
	out := make([]LevelResponse, 0, len(c.Levels))
	for _, l := range c.Levels {
		var approver *string
		if l.ApproverID != "" {
			id := l.ApproverID
			approver = &id
		}
		var decidedAt *string
		if l.DecidedAt != nil {
			s := l.DecidedAt.Format(time.RFC3339)
			decidedAt = &s
		}
		out = append(out, LevelResponse{
			Level:      l.Level,
			ApproverID: approver,
			Decision:   string(l.Decision),
			DecidedBy:  l.DecidedBy,
			DecidedAt:  decidedAt,
			Note:       l.Note,
		})
	}
	return out
}
