package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/wellbeing-worker/internal/logger"
)

// GratitudeRepo checks gratitude-jar activity in the platform-owned
// gratitude_entries table.
type GratitudeRepo interface {
	HasEntryForDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (bool, error)
}

type gratitudeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGratitudeRepo(db *gorm.DB, baseLog *logger.Logger) GratitudeRepo {
	return &gratitudeRepo{db: db, log: baseLog.With("repo", "GratitudeRepo")}
}

func (r *gratitudeRepo) HasEntryForDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	start, end := dayBounds(day)

	var exists bool
	if err := transaction.WithContext(ctx).Raw(`
		SELECT EXISTS (
			SELECT 1
			FROM gratitude_entries
			WHERE user_id = ?
			  AND is_deleted = FALSE
			  AND created_at >= ? AND created_at < ?
		)
	`, userID, start, end).Scan(&exists).Error; err != nil {
		return false, err
	}
	return exists, nil
}
