package subscription

import "context"

// SubscriptionRepository handles subscription data operations
type SubscriptionRepository interface {
	// GetByCompanyIDForUpdate locks the subscription row of a company
	GetByCompanyIDForUpdate(ctx context.Context, companyID string) (Subscription, error)

	// UpdateUsedSeats writes the recounted seat usage
	UpdateUsedSeats(ctx context.Context, s Subscription) error

	// ListActiveCompanyIDs returns companies whose subscription is still live
	ListActiveCompanyIDs(ctx context.Context) ([]string, error)
}

// EmployeeCounter provides method to count active employees
// This is implemented by employee repository
type EmployeeCounter interface {
	// CountActiveByCompanyID counts active employees for a company
	CountActiveByCompanyID(ctx context.Context, companyID string) (int, error)
}
