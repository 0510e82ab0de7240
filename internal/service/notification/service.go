package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
)

// Handler turns committed lifecycle changes into stored notifications.
type Handler struct {
	repo notification.Repository
	now  func() time.Time
}

func NewHandler(repo notification.Repository) *Handler {
	return &Handler{repo: repo, now: time.Now}
}

// Register binds the handler to its job names.
func (h *Handler) Register(q *jobs.Queue) {
	q.Register(notification.JobStatusChanged, h.HandleStatusChanged)
}

// HandleStatusChanged implements jobs.Handler for notification.status_changed.
func (h *Handler) HandleStatusChanged(ctx context.Context, job jobs.Job) error {
	var p notification.StatusChangedPayload
	if err := job.Decode(&p); err != nil {
		return err
	}
	if p.RecipientEmployeeID == "" || p.SubjectID == "" || p.To == "" {
		return notification.ErrInvalidPayload
	}

	recipient, ok, err := h.repo.RecipientUserID(ctx, job.CompanyID, p.RecipientEmployeeID)
	if err != nil {
		return err
	}
	if !ok {
		slog.Debug("Notification skipped, employee has no account", "employee_id", p.RecipientEmployeeID)
		return nil
	}
	if recipient == p.ActorUserID {
		// Nobody needs to hear about their own action.
		return nil
	}

	enabled, err := h.repo.IsNotificationEnabled(ctx, recipient, notification.TypeStatusChanged)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	var sender *string
	if p.ActorUserID != "" {
		actor := p.ActorUserID
		sender = &actor
	}
	label := p.ToLabel
	if label == "" {
		label = p.To
	}

	n := &notification.Notification{
		CompanyID:   job.CompanyID,
		RecipientID: recipient,
		SenderID:    sender,
		Type:        notification.TypeStatusChanged,
		Title:       fmt.Sprintf("Your %s is %s", p.Subject, label),
		Message:     fmt.Sprintf("The status of your %s changed to %s.", p.Subject, label),
		Data: map[string]interface{}{
			"subject":    p.Subject,
			"subject_id": p.SubjectID,
			"from":       p.From,
			"to":         p.To,
		},
		CreatedAt: h.now(),
	}
	if err := h.repo.Create(ctx, n); err != nil {
		return err
	}

	slog.Debug("Notification stored", "notification_id", n.ID, "recipient_id", recipient, "subject_id", p.SubjectID)
	return nil
}
