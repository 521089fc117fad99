package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"focuscoach/internal/model"
)

// SubscriptionRepository stores Web-Push subscriptions keyed by endpoint.
type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert inserts the subscription or refreshes an existing one with the
// same endpoint, making repeated subscribe calls idempotent.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *model.Subscription) error {
	db := r.db.WithContext(ctx)

	var existing model.Subscription
	err := db.First(&existing, "endpoint = ?", sub.Endpoint).Error
	switch {
	case err == nil:
		existing.UserID = sub.UserID
		existing.P256dh = sub.P256dh
		existing.Auth = sub.Auth
		if err := db.Save(&existing).Error; err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}
		*sub = existing
		return nil
	case err == gorm.ErrRecordNotFound:
		if err := db.Create(sub).Error; err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find subscription: %w", err)
	}
}

// FindByUser returns the subscriptions registered for a user.
func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID string) ([]model.Subscription, error) {
	var subs []model.Subscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *SubscriptionRepository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Subscription{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
