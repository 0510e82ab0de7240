package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type subscriptionRepository struct {
	db *database.DB
}

func NewSubscriptionRepository(db *database.DB) subscription.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByCompanyIDForUpdate(ctx context.Context, companyID string) (subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, status, max_seats, used_seats, updated_at
		FROM subscriptions
		WHERE company_id = $1
		FOR UPDATE
	`

	var s subscription.Subscription
	err := q.QueryRow(ctx, query, companyID).Scan(&s.ID, &s.CompanyID, &s.Status, &s.MaxSeats, &s.UsedSeats, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscription.Subscription{}, subscription.ErrSubscriptionNotFound
		}
		return subscription.Subscription{}, err
	}
	return s, nil
}

func (r *subscriptionRepository) UpdateUsedSeats(ctx context.Context, s subscription.Subscription) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE subscriptions SET used_seats = $2, updated_at = $3
		WHERE id = $1
	`, s.ID, s.UsedSeats, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update used seats: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) ListActiveCompanyIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT company_id
		FROM subscriptions
		WHERE status = ANY($1)
		ORDER BY company_id
	`, []string{
		string(subscription.StatusTrial),
		string(subscription.StatusActive),
		string(subscription.StatusPastDue),
	})
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
