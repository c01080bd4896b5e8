package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

// MoodEntryRepo reads daily mood check-ins from the platform-owned
// mood_check_ins table.
type MoodEntryRepo interface {
	// CheckInsForDate returns the latest check-in per user within the given
	// UTC day, ordered by user id.
	CheckInsForDate(ctx context.Context, tx *gorm.DB, day time.Time) ([]types.MoodCheckIn, error)
}

type moodEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMoodEntryRepo(db *gorm.DB, baseLog *logger.Logger) MoodEntryRepo {
	return &moodEntryRepo{db: db, log: baseLog.With("repo", "MoodEntryRepo")}
}

func (r *moodEntryRepo) CheckInsForDate(ctx context.Context, tx *gorm.DB, day time.Time) ([]types.MoodCheckIn, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	start, end := dayBounds(day)

	var results []types.MoodCheckIn
	if err := transaction.WithContext(ctx).Raw(`
		WITH ranked AS (
			SELECT
				user_id,
				mood_1,
				mood_2,
				mood_3,
				checked_in_at,
				ROW_NUMBER() OVER (
					PARTITION BY user_id
					ORDER BY checked_in_at DESC
				) AS rn
			FROM mood_check_ins
			WHERE checked_in_at >= ? AND checked_in_at < ?
		)
		SELECT user_id, mood_1, mood_2, mood_3
		FROM ranked
		WHERE rn = 1
		ORDER BY user_id
	`, start, end).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
