package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

// StudentWeeklyClassificationRepo owns the weekly escalation verdicts. One
// row per (student, week start); re-running a week overwrites the verdict in
// place.
type StudentWeeklyClassificationRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, record *types.StudentWeeklyClassification) (*types.StudentWeeklyClassification, error)
	GetByID(ctx context.Context, tx *gorm.DB, weeklyClassificationID uuid.UUID) (*types.StudentWeeklyClassification, error)
	GetByStudentAndWeek(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, weekStart time.Time) (*types.StudentWeeklyClassification, error)
	GetLatestForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.StudentWeeklyClassification, error)
	ListForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, limit int) ([]types.StudentWeeklyClassification, error)
}

type studentWeeklyClassificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentWeeklyClassificationRepo(db *gorm.DB, baseLog *logger.Logger) StudentWeeklyClassificationRepo {
	return &studentWeeklyClassificationRepo{db: db, log: baseLog.With("repo", "StudentWeeklyClassificationRepo")}
}

func (r *studentWeeklyClassificationRepo) Upsert(ctx context.Context, tx *gorm.DB, record *types.StudentWeeklyClassification) (*types.StudentWeeklyClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if record.WeeklyClassificationID == uuid.Nil {
		record.WeeklyClassificationID = uuid.New()
	}
	if record.ClassifiedAt.IsZero() {
		record.ClassifiedAt = time.Now().UTC()
	}

	if err := transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "week_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"week_end",
			"dominant_classification",
			"is_flagged",
			"classified_at",
		}),
	}).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *studentWeeklyClassificationRepo) GetByID(ctx context.Context, tx *gorm.DB, weeklyClassificationID uuid.UUID) (*types.StudentWeeklyClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.StudentWeeklyClassification
	err := transaction.WithContext(ctx).
		Where("weekly_classification_id = ?", weeklyClassificationID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *studentWeeklyClassificationRepo) GetByStudentAndWeek(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, weekStart time.Time) (*types.StudentWeeklyClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.StudentWeeklyClassification
	err := transaction.WithContext(ctx).
		Where("student_id = ? AND week_start = ?", studentID, weekStart).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *studentWeeklyClassificationRepo) GetLatestForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.StudentWeeklyClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.StudentWeeklyClassification
	err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("week_start DESC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *studentWeeklyClassificationRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, limit int) ([]types.StudentWeeklyClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.StudentWeeklyClassification
	if err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("week_start DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
