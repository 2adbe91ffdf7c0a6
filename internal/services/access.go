package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/types"
)

type accessGranter struct {
	log             *logger.Logger
	accessGrantRepo repos.AccessGrantRepo
}

// NewAccessGranter returns the concrete AccessGranter backed by access grant
// rows; it participates in whatever transaction the caller passes in.
func NewAccessGranter(baseLog *logger.Logger, accessGrantRepo repos.AccessGrantRepo) AccessGranter {
	return &accessGranter{
		log:             baseLog.With("service", "AccessGranter"),
		accessGrantRepo: accessGrantRepo,
	}
}

func (g *accessGranter) GrantAccess(ctx context.Context, tx *gorm.DB, userID, subscriptionID uuid.UUID, startsAt, expiresAt time.Time) error {
	grant := &types.AccessGrant{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		StartsAt:       startsAt,
		ExpiresAt:      expiresAt,
	}
	if _, err := g.accessGrantRepo.Create(ctx, tx, []*types.AccessGrant{grant}); err != nil {
		return err
	}
	g.log.Debug("access granted", "user_id", userID, "subscription_id", subscriptionID)
	return nil
}

func (g *accessGranter) RevokeAccess(ctx context.Context, tx *gorm.DB, subscriptionID uuid.UUID) error {
	return g.accessGrantRepo.RevokeBySubscriptionID(ctx, tx, subscriptionID, time.Now().UTC())
}
