package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/types"
)

const pgUniqueViolation = "23505"

type TeacherEarningRepo interface {
	Create(ctx context.Context, tx *gorm.DB, earning *types.TeacherEarning) (*types.TeacherEarning, error)
	GetByTeacherIDs(ctx context.Context, tx *gorm.DB, teacherIDs []uuid.UUID) ([]*types.TeacherEarning, error)
	GetByPeriod(ctx context.Context, tx *gorm.DB, period string) ([]*types.TeacherEarning, error)
	SumAmountByPoolID(ctx context.Context, tx *gorm.DB, poolID uuid.UUID) (float64, error)
}

type teacherEarningRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeacherEarningRepo(db *gorm.DB, baseLog *logger.Logger) TeacherEarningRepo {
	return &teacherEarningRepo{db: db, log: baseLog.With("repo", "TeacherEarningRepo")}
}

// Create appends one ledger line. A second line for the same
// (teacher, period, revenue source) violates the unique index and surfaces as
// ErrDuplicateEarning so callers can treat retries as already-settled.
func (r *teacherEarningRepo) Create(ctx context.Context, tx *gorm.DB, earning *types.TeacherEarning) (*types.TeacherEarning, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if earning == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(earning).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateEarning
		}
		return nil, err
	}
	return earning, nil
}

func (r *teacherEarningRepo) GetByTeacherIDs(ctx context.Context, tx *gorm.DB, teacherIDs []uuid.UUID) ([]*types.TeacherEarning, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TeacherEarning
	if len(teacherIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("teacher_id IN ?", teacherIDs).
		Order("period DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *teacherEarningRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, period string) ([]*types.TeacherEarning, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TeacherEarning
	if period == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("period = ?", period).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *teacherEarningRepo) SumAmountByPoolID(ctx context.Context, tx *gorm.DB, poolID uuid.UUID) (float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if poolID == uuid.Nil {
		return 0, nil
	}

	var total float64
	err := transaction.WithContext(ctx).
		Model(&types.TeacherEarning{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("revenue_pool_id = ?", poolID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
