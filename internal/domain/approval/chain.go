package approval

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
)

type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

type SubjectType string

const (
	SubjectLeave    SubjectType = "leave_application"
	SubjectOvertime SubjectType = "overtime_request"
)

var (
	ErrChainClosed        = apperror.New(apperror.KindInvalidTransition, "approval chain is already decided")
	ErrNotCurrentApprover = apperror.New(apperror.KindForbidden, "you are not the approver of the current level")
	ErrSelfApproval       = apperror.New(apperror.KindForbidden, "you cannot decide on your own request")
	ErrInvalidDecision    = apperror.New(apperror.KindValidation, "decision must be approved or rejected")
)

// Level is one step of a chain. An empty ApproverID lets any manager decide.
type Level struct {
	Level      int
	ApproverID string
	Decision   Decision
	DecidedBy  *string
	DecidedAt  *time.Time
	Note       *string
}

type Chain struct {
	Levels []Level
}

// NewChain creates one pending level per approver, in order. Without
// approvers the chain has a single level open to any manager.
func NewChain(approverIDs []string) Chain {
	if len(approverIDs) == 0 {
		return Chain{Levels: []Level{{Level: 1, Decision: DecisionPending}}}
	}
	levels := make([]Level, len(approverIDs))
	for i, id := range approverIDs {
		levels[i] = Level{Level: i + 1, ApproverID: id, Decision: DecisionPending}
	}
	return Chain{Levels: levels}
}

// Outcome is rejected as soon as any level rejected, approved once every level approved.
func (c Chain) Outcome() Decision {
	if len(c.Levels) == 0 {
		return DecisionPending
	}
	approved := 0
	for _, l := range c.Levels {
		switch l.Decision {
		case DecisionRejected:
			return DecisionRejected
		case DecisionApproved:
			approved++
		}
	}
	if approved == len(c.Levels) {
		return DecisionApproved
	}
	return DecisionPending
}

// Current returns the lowest undecided level while the chain is open.
func (c Chain) Current() (Level, bool) {
	if c.Outcome() != DecisionPending {
		return Level{}, false
	}
	for _, l := range c.Levels {
		if l.Decision == DecisionPending {
			return l, true
		}
	}
	return Level{}, false
}

// CanDecide reports whether actorID may decide the current level.
func (c Chain) CanDecide(actorID string, isManager bool) bool {
	current, ok := c.Current()
	if !ok {
		return false
	}
	if current.ApproverID == "" {
		return isManager
	}
	return current.ApproverID == actorID
}

// Decide records a decision on the current level and returns the decided level.
func (c *Chain) Decide(actorID string, isManager bool, d Decision, note string, at time.Time) (Level, error) {
	if d != DecisionApproved && d != DecisionRejected {
		return Level{}, ErrInvalidDecision
	}
	current, ok := c.Current()
	if !ok {
		return Level{}, ErrChainClosed
	}
	if !c.CanDecide(actorID, isManager) {
		return Level{}, ErrNotCurrentApprover
	}

	idx := current.Level - 1
	for i := range c.Levels {
		if c.Levels[i].Level == current.Level {
			idx = i
			break
		}
	}
	decidedBy := actorID
	decidedAt := at
	c.Levels[idx].Decision = d
	c.Levels[idx].DecidedBy = &decidedBy
	c.Levels[idx].DecidedAt = &decidedAt
	if note != "" {
		n := note
		c.Levels[idx].Note = &n
	}
	return c.Levels[idx], nil
}

type Repository interface {
	// ListApprovers returns the configured approver user ids for an employee, level order.
	ListApprovers(ctx context.Context, companyID, employeeID string) ([]string, error)
	GetChain(ctx context.Context, companyID string, subject SubjectType, subjectID string) (Chain, error)
	CreateChain(ctx context.Context, companyID string, subject SubjectType, subjectID string, chain Chain) error
	SaveLevel(ctx context.Context, companyID string, subject SubjectType, subjectID string, level Level) error
}
