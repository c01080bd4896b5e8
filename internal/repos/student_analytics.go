package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

type StudentAnalyticsRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.StudentAnalytics) (*types.StudentAnalytics, error)
	ListForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, limit int) ([]types.StudentAnalytics, error)
}

type studentAnalyticsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentAnalyticsRepo(db *gorm.DB, baseLog *logger.Logger) StudentAnalyticsRepo {
	return &studentAnalyticsRepo{db: db, log: baseLog.With("repo", "StudentAnalyticsRepo")}
}

func (r *studentAnalyticsRepo) Create(ctx context.Context, tx *gorm.DB, record *types.StudentAnalytics) (*types.StudentAnalytics, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if record.AnalyticsID == uuid.Nil {
		record.AnalyticsID = uuid.New()
	}
	if record.DateRecorded.IsZero() {
		record.DateRecorded = time.Now().UTC()
	}

	if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *studentAnalyticsRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, limit int) ([]types.StudentAnalytics, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.StudentAnalytics
	if err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date_recorded DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
