package subscription

import "time"

// SubscriptionStatus represents the status of a subscription
type SubscriptionStatus string

const (
	StatusTrial     SubscriptionStatus = "trial"
	StatusActive    SubscriptionStatus = "active"
	StatusPastDue   SubscriptionStatus = "past_due"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

// Subscription holds the seat accounting of a company. Billing provider
// state lives elsewhere.
type Subscription struct {
	ID        string
	CompanyID string
	Status    SubscriptionStatus
	MaxSeats  int
	UsedSeats int
	UpdatedAt time.Time
}

// IsActive checks if subscription is in an active state (active, trial or past due)
func (s Subscription) IsActive() bool {
	return s.Status == StatusActive || s.Status == StatusTrial || s.Status == StatusPastDue
}

// OverLimit reports whether more seats are in use than were bought.
func (s Subscription) OverLimit() bool {
	return s.UsedSeats > s.MaxSeats
}
