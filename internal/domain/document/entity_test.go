package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine(t *testing.T) {
	assert.True(t, Machine.CanTransition(StatusPending, StatusCancelled))
	assert.False(t, Machine.CanTransition(StatusProcessing, StatusCancelled), "processing requests can no longer be withdrawn")
	assert.False(t, Machine.CanTransition(StatusPending, StatusReady))

	for _, s := range OpenStatuses {
		assert.False(t, Machine.IsTerminal(s), s)
	}
}

func TestChangeStatusRequest_RejectNeedsReason(t *testing.T) {
	req := ChangeStatusRequest{Status: "rejected"}
	require.Error(t, req.Validate())

	reason := "not eligible"
	req.Reason = &reason
	assert.NoError(t, req.Validate())
}
