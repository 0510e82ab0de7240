package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "sign nda", NormalizeTitle("  Sign   NDA "))
}

func TestSummarize(t *testing.T) {
	tasks := []Task{
		{Phase: PhasePreboarding, Status: StatusCompleted},
		{Phase: PhasePreboarding, Status: StatusWaived},
		{Phase: PhasePreboarding, Status: StatusPending},
		{Phase: PhaseOnboarding, Status: StatusInProgress},
	}
	got := Summarize(tasks)
	assert.Equal(t, []PhaseProgress{
		{Phase: PhasePreboarding, Total: 3, Completed: 1, Waived: 1},
		{Phase: PhaseOnboarding, Total: 1},
	}, got)
	assert.Equal(t, 66, got[0].Percent())
	assert.Equal(t, 0, got[1].Percent())
	assert.Equal(t, 100, Summarize(nil)[0].Percent())
}
