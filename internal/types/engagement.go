package types

import (
	"time"

	"github.com/google/uuid"
)

// EngagementRecord summarizes one student's watch time on one piece of content
// within one billing period. Exactly one of ProgramID / ModuleID is set; the
// other stays the zero UUID so the identity index has a stable conflict
// target.
type EngagementRecord struct {
	ID               uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_engagement_identity" json:"user_id"`
	User             *User         `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ProgramID        uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_engagement_identity" json:"program_id"`
	Program          *Program      `gorm:"foreignKey:ProgramID;references:ID" json:"program,omitempty"`
	ModuleID         uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_engagement_identity" json:"module_id"`
	Module           *CourseModule `gorm:"foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Period           string        `gorm:"column:period;not null;uniqueIndex:idx_engagement_identity;index" json:"period"`
	WatchTimeMinutes float64       `gorm:"column:watch_time_minutes;not null;default:0" json:"watch_time_minutes"`
	IsCompleted      bool          `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	LastWatchedAt    time.Time     `gorm:"column:last_watched_at;not null" json:"last_watched_at"`
	CreatedAt        time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;default:now()" json:"updated_at"`
}

func (EngagementRecord) TableName() string { return "engagement_record" }
