package approval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)

func TestChain_AdvancesInLevelOrder(t *testing.T) {
	c := NewChain([]string{"lead", "hr"})

	_, err := c.Decide("hr", true, DecisionApproved, "", now)
	assert.ErrorIs(t, err, ErrNotCurrentApprover, "level 2 cannot decide before level 1")

	lvl, err := c.Decide("lead", false, DecisionApproved, "ok", now)
	require.NoError(t, err)
	assert.Equal(t, 1, lvl.Level)
	assert.Equal(t, DecisionPending, c.Outcome())

	current, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "hr", current.ApproverID)

	_, err = c.Decide("hr", false, DecisionApproved, "", now)
	require.NoError(t, err)
	assert.Equal(t, DecisionApproved, c.Outcome())

	_, ok = c.Current()
	assert.False(t, ok)
	_, err = c.Decide("hr", false, DecisionApproved, "", now)
	assert.ErrorIs(t, err, ErrChainClosed)
}

func TestChain_RejectEndsImmediately(t *testing.T) {
	c := NewChain([]string{"lead", "hr", "director"})

	_, err := c.Decide("lead", false, DecisionRejected, "no budget", now)
	require.NoError(t, err)

	assert.Equal(t, DecisionRejected, c.Outcome())
	require.NotNil(t, c.Levels[0].Note)
	assert.Equal(t, "no budget", *c.Levels[0].Note)
	assert.Equal(t, DecisionPending, c.Levels[1].Decision)

	_, err = c.Decide("hr", false, DecisionApproved, "", now)
	assert.ErrorIs(t, err, ErrChainClosed)
}

func TestChain_OpenLevelNeedsManager(t *testing.T) {
	c := NewChain(nil)
	require.Len(t, c.Levels, 1)

	assert.False(t, c.CanDecide("someone", false))
	_, err := c.Decide("someone", false, DecisionApproved, "", now)
	assert.ErrorIs(t, err, ErrNotCurrentApprover)

	_, err = c.Decide("boss", true, DecisionApproved, "", now)
	require.NoError(t, err)
	assert.Equal(t, DecisionApproved, c.Outcome())
	assert.Equal(t, "boss", *c.Levels[0].DecidedBy)
}

func TestChain_InvalidDecision(t *testing.T) {
	c := NewChain([]string{"lead"})
	_, err := c.Decide("lead", false, DecisionPending, "", now)
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestChain_EmptyIsPending(t *testing.T) {
	assert.Equal(t, DecisionPending, Chain{}.Outcome())
}
