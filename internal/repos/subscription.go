package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/types"
)

type SubscriptionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, subs []*types.Subscription) ([]*types.Subscription, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, subIDs []uuid.UUID) ([]*types.Subscription, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Subscription, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SumCompletedOverlapping(ctx context.Context, tx *gorm.DB, periodStart, periodEnd time.Time) (float64, error)
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{db: db, log: baseLog.With("repo", "SubscriptionRepo")}
}

func (r *subscriptionRepo) Create(ctx context.Context, tx *gorm.DB, subs []*types.Subscription) ([]*types.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(subs) == 0 {
		return []*types.Subscription{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subscriptionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, subIDs []uuid.UUID) ([]*types.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subscription
	if len(subIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", subIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subscriptionRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subscription
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subscriptionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.Subscription{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SumCompletedOverlapping totals COMPLETED subscriptions whose active window
// overlaps [periodStart, periodEnd].
func (r *subscriptionRepo) SumCompletedOverlapping(ctx context.Context, tx *gorm.DB, periodStart, periodEnd time.Time) (float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var total float64
	err := transaction.WithContext(ctx).
		Model(&types.Subscription{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", types.SubscriptionStatusCompleted).
		Where("starts_at <= ? AND expires_at >= ?", periodEnd, periodStart).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
