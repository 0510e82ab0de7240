package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
)

// SeatService keeps subscriptions.used_seats in line with active employees.
type SeatService struct {
	tx               database.Transactor
	subscriptionRepo subscription.SubscriptionRepository
	employeeCounter  subscription.EmployeeCounter
	now              func() time.Time
}

func NewSeatService(
	tx database.Transactor,
	subscriptionRepo subscription.SubscriptionRepository,
	employeeCounter subscription.EmployeeCounter,
) *SeatService {
	return &SeatService{
		tx:               tx,
		subscriptionRepo: subscriptionRepo,
		employeeCounter:  employeeCounter,
		now:              time.Now,
	}
}

// Register binds the service to its job names.
func (s *SeatService) Register(q *jobs.Queue) {
	q.Register(subscription.JobRecomputeSeats, s.HandleRecomputeSeats)
}

// HandleRecomputeSeats implements jobs.Handler for billing.recompute_seats.
func (s *SeatService) HandleRecomputeSeats(ctx context.Context, job jobs.Job) error {
	var p subscription.RecomputeSeatsPayload
	if err := job.Decode(&p); err != nil {
		return err
	}
	if p.CompanyID == "" {
		return subscription.ErrInvalidPayload
	}
	return s.RecomputeSeats(ctx, p.CompanyID)
}

// RecomputeSeats counts active employees and stores the result. Companies
// without a subscription are skipped.
func (s *SeatService) RecomputeSeats(ctx context.Context, companyID string) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		sub, err := s.subscriptionRepo.GetByCompanyIDForUpdate(ctx, companyID)
		if err != nil {
			if errors.Is(err, subscription.ErrSubscriptionNotFound) {
				slog.Debug("Seat recompute skipped, no subscription", "company_id", companyID)
				return nil
			}
			return fmt.Errorf("get subscription: %w", err)
		}

		count, err := s.employeeCounter.CountActiveByCompanyID(ctx, companyID)
		if err != nil {
			return fmt.Errorf("count employees: %w", err)
		}
		if count == sub.UsedSeats {
			return nil
		}

		previous := sub.UsedSeats
		sub.UsedSeats = count
		sub.UpdatedAt = s.now()
		if err := s.subscriptionRepo.UpdateUsedSeats(ctx, sub); err != nil {
			return fmt.Errorf("update used seats: %w", err)
		}

		slog.Info("Used seats recomputed", "company_id", companyID, "from", previous, "to", count, "max_seats", sub.MaxSeats)
		if sub.OverLimit() {
			slog.Warn("Subscription seat usage exceeds limit", "company_id", companyID, "used_seats", count, "max_seats", sub.MaxSeats)
		}
		return nil
	})
}

// Reconcile dispatches a recompute for every company with a live
// subscription. Dispatch failures are logged by jobs.Emit.
func (s *SeatService) Reconcile(ctx context.Context, d jobs.Dispatcher) error {
	companyIDs, err := s.subscriptionRepo.ListActiveCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("list active subscriptions: %w", err)
	}
	for _, companyID := range companyIDs {
		jobs.Emit(ctx, d, subscription.JobRecomputeSeats, companyID, subscription.RecomputeSeatsPayload{CompanyID: companyID})
	}
	slog.Info("Seat reconcile dispatched", "companies", len(companyIDs))
	return nil
}
