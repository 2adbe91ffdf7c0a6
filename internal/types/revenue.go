package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PoolStatusCalculating = "CALCULATING"
	PoolStatusDistributed = "DISTRIBUTED"

	RevenueSourceSubscription = "SUBSCRIPTION"

	EarningStatusAvailable = "AVAILABLE"

	// PlatformFeeRate is the fixed fraction of gross revenue the platform keeps.
	PlatformFeeRate = 0.30
)

// RevenuePool is the computed subscription revenue for one calendar month.
// Exactly one row exists per period; it flips CALCULATING -> DISTRIBUTED once.
type RevenuePool struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Period           string     `gorm:"column:period;not null;uniqueIndex" json:"period"`
	PeriodStart      time.Time  `gorm:"column:period_start;not null" json:"period_start"`
	PeriodEnd        time.Time  `gorm:"column:period_end;not null" json:"period_end"`
	TotalRevenue     float64    `gorm:"column:total_revenue;not null;default:0" json:"total_revenue"`
	PlatformFee      float64    `gorm:"column:platform_fee;not null;default:0" json:"platform_fee"`
	TeacherPool      float64    `gorm:"column:teacher_pool;not null;default:0" json:"teacher_pool"`
	TotalWatchTime   float64    `gorm:"column:total_watch_time;not null;default:0" json:"total_watch_time"`
	TotalEngagements int        `gorm:"column:total_engagements;not null;default:0" json:"total_engagements"`
	Status           string     `gorm:"column:status;not null;default:CALCULATING" json:"status"`
	DistributedAt    *time.Time `gorm:"column:distributed_at" json:"distributed_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (RevenuePool) TableName() string { return "revenue_pool" }

// TeacherEarning is one append-only ledger line crediting a teacher for one
// revenue source in one period. Corrections are new rows, never updates.
type TeacherEarning struct {
	ID                uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeacherID         uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_earning_source_period" json:"teacher_id"`
	Teacher           *User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	Period            string       `gorm:"column:period;not null;uniqueIndex:idx_earning_source_period;index" json:"period"`
	RevenueSource     string       `gorm:"column:revenue_source;not null;uniqueIndex:idx_earning_source_period" json:"revenue_source"`
	WatchTimeMinutes  float64      `gorm:"column:watch_time_minutes;not null;default:0" json:"watch_time_minutes"`
	EngagedStudents   int          `gorm:"column:engaged_students;not null;default:0" json:"engaged_students"`
	Amount            float64      `gorm:"column:amount;not null" json:"amount"`
	PlatformFeeAmount float64      `gorm:"column:platform_fee_amount;not null" json:"platform_fee_amount"`
	NetAmount         float64      `gorm:"column:net_amount;not null" json:"net_amount"`
	Status            string       `gorm:"column:status;not null;default:AVAILABLE" json:"status"`
	RevenuePoolID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"revenue_pool_id"`
	RevenuePool       *RevenuePool `gorm:"constraint:OnDelete:CASCADE;foreignKey:RevenuePoolID;references:ID" json:"revenue_pool,omitempty"`
	CreatedAt         time.Time    `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:now()" json:"updated_at"`
}

func (TeacherEarning) TableName() string { return "teacher_earning" }
