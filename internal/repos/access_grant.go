package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/types"
)

type AccessGrantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, grants []*types.AccessGrant) ([]*types.AccessGrant, error)
	RevokeBySubscriptionID(ctx context.Context, tx *gorm.DB, subscriptionID uuid.UUID, revokedAt time.Time) error
	GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) ([]*types.AccessGrant, error)
}

type accessGrantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccessGrantRepo(db *gorm.DB, baseLog *logger.Logger) AccessGrantRepo {
	return &accessGrantRepo{db: db, log: baseLog.With("repo", "AccessGrantRepo")}
}

func (r *accessGrantRepo) Create(ctx context.Context, tx *gorm.DB, grants []*types.AccessGrant) ([]*types.AccessGrant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(grants) == 0 {
		return []*types.AccessGrant{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *accessGrantRepo) RevokeBySubscriptionID(ctx context.Context, tx *gorm.DB, subscriptionID uuid.UUID, revokedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if subscriptionID == uuid.Nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.AccessGrant{}).
		Where("subscription_id = ? AND revoked_at IS NULL", subscriptionID).
		Updates(map[string]interface{}{
			"revoked_at": revokedAt,
			"updated_at": time.Now(),
		}).Error
}

func (r *accessGrantRepo) GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) ([]*types.AccessGrant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AccessGrant
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND starts_at <= ? AND expires_at >= ?", userID, at, at).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
