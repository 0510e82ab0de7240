package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeStatusChanged    NotificationType = "status_changed"
	TypeApprovalRequired NotificationType = "approval_required"
)

// JobStatusChanged is the background job that turns a lifecycle change into a notification.
const JobStatusChanged = "notification.status_changed"

// Notification represents a notification entity
type Notification struct {
	ID          string
	CompanyID   string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// StatusChangedPayload is emitted after a lifecycle transition committed.
type StatusChangedPayload struct {
	RecipientEmployeeID string `json:"recipient_employee_id"`
	ActorUserID         string `json:"actor_user_id"`
	Subject             string `json:"subject"`
	SubjectID           string `json:"subject_id"`
	From                string `json:"from,omitempty"`
	To                  string `json:"to"`
	ToLabel             string `json:"to_label"`
}
