package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

// StudentClassificationRepo owns the append-only daily classification log.
type StudentClassificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.StudentClassification) (*types.StudentClassification, error)
	BulkCreate(ctx context.Context, tx *gorm.DB, records []*types.StudentClassification) ([]*types.StudentClassification, error)
	GetByID(ctx context.Context, tx *gorm.DB, classificationID uuid.UUID) (*types.StudentClassification, error)
	GetLatestForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.StudentClassification, error)
	// ListForStudent returns up to limit rows, most recent first.
	ListForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, limit int) ([]types.StudentClassification, error)
	// ListInRange returns all rows with classified_at in [start, end).
	ListInRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]types.StudentClassification, error)
}

type studentClassificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentClassificationRepo(db *gorm.DB, baseLog *logger.Logger) StudentClassificationRepo {
	return &studentClassificationRepo{db: db, log: baseLog.With("repo", "StudentClassificationRepo")}
}

func fillClassificationDefaults(record *types.StudentClassification) {
	if record.ClassificationID == uuid.Nil {
		record.ClassificationID = uuid.New()
	}
	if record.ClassifiedAt.IsZero() {
		record.ClassifiedAt = time.Now().UTC()
	}
}

func (r *studentClassificationRepo) Create(ctx context.Context, tx *gorm.DB, record *types.StudentClassification) (*types.StudentClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if _, err := types.ParseLabel(string(record.Classification)); err != nil {
		return nil, err
	}
	fillClassificationDefaults(record)

	if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *studentClassificationRepo) BulkCreate(ctx context.Context, tx *gorm.DB, records []*types.StudentClassification) ([]*types.StudentClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(records) == 0 {
		return []*types.StudentClassification{}, nil
	}
	for _, record := range records {
		if _, err := types.ParseLabel(string(record.Classification)); err != nil {
			return nil, err
		}
		fillClassificationDefaults(record)
	}

	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *studentClassificationRepo) GetByID(ctx context.Context, tx *gorm.DB, classificationID uuid.UUID) (*types.StudentClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.StudentClassification
	err := transaction.WithContext(ctx).
		Where("classification_id = ?", classificationID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *studentClassificationRepo) GetLatestForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.StudentClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.StudentClassification
	err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("classified_at DESC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *studentClassificationRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, limit int) ([]types.StudentClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.StudentClassification
	if err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("classified_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studentClassificationRepo) ListInRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]types.StudentClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.StudentClassification
	if err := transaction.WithContext(ctx).
		Where("classified_at >= ? AND classified_at < ?", start, end).
		Order("classified_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
