package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var (
	ErrQueueFull    = errors.New("job queue is full")
	ErrQueueStopped = errors.New("job queue is stopped")
	ErrNoHandler    = errors.New("no handler registered for job")
)

// Job is a fire-and-forget unit of background work.
type Job struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	CompanyID  string          `json:"company_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

func NewJob(name, companyID string, payload any) (Job, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Job{}, fmt.Errorf("generate job id: %w", err)
	}
	var raw json.RawMessage
	if payload != nil {
		raw, err = json.Marshal(payload)
		if err != nil {
			return Job{}, fmt.Errorf("marshal %s payload: %w", name, err)
		}
	}
	return Job{ID: id.String(), Name: name, CompanyID: companyID, Payload: raw, EnqueuedAt: time.Now().UTC()}, nil
}

// Decode unmarshals the payload into v.
func (j Job) Decode(v any) error {
	if len(j.Payload) == 0 {
		return fmt.Errorf("job %s has no payload", j.Name)
	}
	return json.Unmarshal(j.Payload, v)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, job Job) error
}

type DispatcherFunc func(ctx context.Context, job Job) error

func (f DispatcherFunc) Dispatch(ctx context.Context, job Job) error {
	return f(ctx, job)
}

type Handler func(ctx context.Context, job Job) error

// Emit builds and dispatches a job, logging instead of returning failures.
// Callers invoke it after their transaction committed.
func Emit(ctx context.Context, d Dispatcher, name, companyID string, payload any) {
	if d == nil {
		return
	}
	job, err := NewJob(name, companyID, payload)
	if err != nil {
		slog.Warn("Failed to build job", "job", name, "error", err)
		return
	}
	if err := d.Dispatch(ctx, job); err != nil {
		slog.Warn("Failed to dispatch job (non-fatal)", "job", name, "job_id", job.ID, "company_id", companyID, "error", err)
		return
	}
	slog.Debug("Job dispatched", "job", name, "job_id", job.ID, "company_id", companyID)
}
