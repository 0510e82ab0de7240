package notification

import (
	"context"
)

// Repository defines the notification repository interface
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	// RecipientUserID resolves the login account of an employee.
	RecipientUserID(ctx context.Context, companyID, employeeID string) (userID string, found bool, err error)
	IsNotificationEnabled(ctx context.Context, userID string, notifType NotificationType) (bool, error)
}
