package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/requestdata"
	"github.com/coursova/backend/internal/types"
)

// AccessGranter is the port subscription activation uses to unlock content.
// The concrete granter is wired at composition time so this service never
// depends on the access layer directly.
type AccessGranter interface {
	GrantAccess(ctx context.Context, tx *gorm.DB, userID, subscriptionID uuid.UUID, startsAt, expiresAt time.Time) error
	RevokeAccess(ctx context.Context, tx *gorm.DB, subscriptionID uuid.UUID) error
}

type SubscriptionService interface {
	Activate(ctx context.Context, amount float64) (*types.Subscription, error)
	Cancel(ctx context.Context, subscriptionID uuid.UUID) (*types.Subscription, error)
	ListForUser(ctx context.Context) ([]*types.Subscription, error)
}

type subscriptionService struct {
	db               *gorm.DB
	log              *logger.Logger
	subscriptionRepo repos.SubscriptionRepo
	accessGranter    AccessGranter
	monthlyPrice     float64
}

func NewSubscriptionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	subscriptionRepo repos.SubscriptionRepo,
	accessGranter AccessGranter,
	monthlyPrice float64,
) SubscriptionService {
	return &subscriptionService{
		db:               db,
		log:              baseLog.With("service", "SubscriptionService"),
		subscriptionRepo: subscriptionRepo,
		accessGranter:    accessGranter,
		monthlyPrice:     monthlyPrice,
	}
}

// Activate creates a COMPLETED one-month subscription and grants content
// access in the same transaction.
func (s *subscriptionService) Activate(ctx context.Context, amount float64) (*types.Subscription, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	if amount <= 0 {
		amount = s.monthlyPrice
	}

	now := time.Now().UTC()
	sub := &types.Subscription{
		UserID:    rd.UserID,
		Amount:    amount,
		Status:    types.SubscriptionStatusCompleted,
		StartsAt:  now,
		ExpiresAt: now.AddDate(0, 1, 0),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.subscriptionRepo.Create(ctx, tx, []*types.Subscription{sub}); err != nil {
			return err
		}
		return s.accessGranter.GrantAccess(ctx, tx, sub.UserID, sub.ID, sub.StartsAt, sub.ExpiresAt)
	})
	if err != nil {
		s.log.Warn("subscription activation failed", "error", err, "user_id", rd.UserID)
		return nil, err
	}

	s.log.Info("subscription activated", "subscription_id", sub.ID, "user_id", sub.UserID, "expires_at", sub.ExpiresAt)
	return sub, nil
}

// Cancel marks the subscription CANCELLED and revokes its access grants in
// one transaction. Only the owning user may cancel.
func (s *subscriptionService) Cancel(ctx context.Context, subscriptionID uuid.UUID) (*types.Subscription, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	if subscriptionID == uuid.Nil {
		return nil, fmt.Errorf("missing subscription id")
	}

	subs, err := s.subscriptionRepo.GetByIDs(ctx, nil, []uuid.UUID{subscriptionID})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 || subs[0] == nil || subs[0].UserID != rd.UserID {
		return nil, fmt.Errorf("subscription not found")
	}
	sub := subs[0]
	if sub.Status == types.SubscriptionStatusCancelled {
		return sub, nil
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.subscriptionRepo.UpdateFields(ctx, tx, sub.ID, map[string]interface{}{
			"status":       types.SubscriptionStatusCancelled,
			"cancelled_at": now,
		}); err != nil {
			return err
		}
		return s.accessGranter.RevokeAccess(ctx, tx, sub.ID)
	})
	if err != nil {
		s.log.Warn("subscription cancellation failed", "error", err, "subscription_id", sub.ID)
		return nil, err
	}

	sub.Status = types.SubscriptionStatusCancelled
	sub.CancelledAt = &now
	s.log.Info("subscription cancelled", "subscription_id", sub.ID, "user_id", sub.UserID)
	return sub, nil
}

func (s *subscriptionService) ListForUser(ctx context.Context) ([]*types.Subscription, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	return s.subscriptionRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}
