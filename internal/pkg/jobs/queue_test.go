package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seatsPayload struct {
	CompanyID string `json:"company_id"`
}

func TestQueue_RunsRegisteredHandler(t *testing.T) {
	q := NewQueue(Config{WorkerCount: 1, QueueSize: 4})

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 2)
	q.Register("billing.recompute_seats", func(ctx context.Context, job Job) error {
		var p seatsPayload
		if err := job.Decode(&p); err != nil {
			return err
		}
		mu.Lock()
		got = append(got, p.CompanyID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	q.Start()
	defer q.Stop()

	for _, c := range []string{"c1", "c2"} {
		job, err := NewJob("billing.recompute_seats", c, seatsPayload{CompanyID: c})
		require.NoError(t, err)
		require.NoError(t, q.Dispatch(context.Background(), job))
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"c1", "c2"}, got)
}

func TestQueue_DispatchErrors(t *testing.T) {
	q := NewQueue(Config{WorkerCount: 1, QueueSize: 1})
	q.Register("slow", func(ctx context.Context, job Job) error { return nil })

	err := q.Dispatch(context.Background(), Job{Name: "unknown"})
	assert.ErrorIs(t, err, ErrNoHandler)

	// Not started: the single slot fills up.
	require.NoError(t, q.Dispatch(context.Background(), Job{Name: "slow"}))
	assert.ErrorIs(t, q.Dispatch(context.Background(), Job{Name: "slow"}), ErrQueueFull)

	q.Start()
	q.Stop()
	assert.ErrorIs(t, q.Dispatch(context.Background(), Job{Name: "slow"}), ErrQueueStopped)
}

func TestQueue_StopDrainsQueuedJobs(t *testing.T) {
	q := NewQueue(Config{WorkerCount: 1, QueueSize: 8})
	var mu sync.Mutex
	ran := 0
	q.Register("count", func(ctx context.Context, job Job) error {
		mu.Lock()
		ran++
		mu.Unlock()
		return nil
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Dispatch(context.Background(), Job{Name: "count"}))
	}
	q.Start()
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, ran)
}

func TestQueue_HandlerPanicIsContained(t *testing.T) {
	q := NewQueue(Config{WorkerCount: 1})
	done := make(chan struct{})
	q.Register("boom", func(ctx context.Context, job Job) error { panic("boom") })
	q.Register("after", func(ctx context.Context, job Job) error {
		close(done)
		return nil
	})
	q.Start()
	defer q.Stop()

	require.NoError(t, q.Dispatch(context.Background(), Job{Name: "boom"}))
	require.NoError(t, q.Dispatch(context.Background(), Job{Name: "after"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestEmit_SwallowsDispatchFailure(t *testing.T) {
	calls := 0
	d := DispatcherFunc(func(ctx context.Context, job Job) error {
		calls++
		assert.Equal(t, "notification.status_changed", job.Name)
		assert.NotEmpty(t, job.ID)
		return errors.New("broker down")
	})

	Emit(context.Background(), d, "notification.status_changed", "c1", map[string]string{"id": "x"})
	Emit(context.Background(), nil, "ignored", "c1", nil)
	assert.Equal(t, 1, calls)
}

func TestJob_DecodeWithoutPayload(t *testing.T) {
	job, err := NewJob("empty", "c1", nil)
	require.NoError(t, err)
	assert.Error(t, job.Decode(&seatsPayload{}))
}
