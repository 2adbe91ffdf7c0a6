package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionStatusPending   = "PENDING"
	SubscriptionStatusCompleted = "COMPLETED"
	SubscriptionStatusCancelled = "CANCELLED"
)

// Subscription is one paid access window for one student.
type Subscription struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Amount      float64        `gorm:"column:amount;not null" json:"amount"`
	Status      string         `gorm:"column:status;not null;default:PENDING;index" json:"status"`
	StartsAt    time.Time      `gorm:"column:starts_at;not null;index" json:"starts_at"`
	ExpiresAt   time.Time      `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CancelledAt *time.Time     `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Subscription) TableName() string { return "subscription" }

// AccessGrant records the content-access window a subscription unlocked.
type AccessGrant struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SubscriptionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"subscription_id"`
	StartsAt       time.Time  `gorm:"column:starts_at;not null" json:"starts_at"`
	ExpiresAt      time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	RevokedAt      *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (AccessGrant) TableName() string { return "access_grant" }
