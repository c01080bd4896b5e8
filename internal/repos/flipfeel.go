package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

// FlipFeelRepo reads flip-and-feel survey sessions from the platform-owned
// flip_feel tables, reassembling each session's mood labels in response
// order.
type FlipFeelRepo interface {
	SessionsForUserDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) ([]types.FlipFeelSession, error)
	// LatestLabelsForDate returns one row per user holding the first three
	// mood labels of that user's latest session within the day. Used as a
	// check-in-shaped fallback signal source.
	LatestLabelsForDate(ctx context.Context, tx *gorm.DB, day time.Time) ([]types.MoodCheckIn, error)
}

type flipFeelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlipFeelRepo(db *gorm.DB, baseLog *logger.Logger) FlipFeelRepo {
	return &flipFeelRepo{db: db, log: baseLog.With("repo", "FlipFeelRepo")}
}

type flipFeelRow struct {
	FlipFeelID uuid.UUID  `gorm:"column:flip_feel_id"`
	UserID     uuid.UUID  `gorm:"column:user_id"`
	StartedAt  time.Time  `gorm:"column:started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
	MoodLabel  *string    `gorm:"column:mood_label"`
}

func (r *flipFeelRepo) SessionsForUserDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) ([]types.FlipFeelSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	start, end := dayBounds(day)

	var rows []flipFeelRow
	if err := transaction.WithContext(ctx).Raw(`
		SELECT ff.flip_feel_id,
		       ff.user_id,
		       ff.started_at,
		       ff.finished_at,
		       c.mood_label
		FROM flip_feel ff
		JOIN flip_feel_responses r ON ff.flip_feel_id = r.flip_feel_id
		LEFT JOIN flip_feel_choices c ON r.choice_id = c.choice_id
		WHERE ff.user_id = ?
		  AND ff.started_at >= ? AND ff.started_at < ?
		ORDER BY ff.started_at ASC, r.created_at ASC
	`, userID, start, end).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return groupSessions(rows), nil
}

func (r *flipFeelRepo) LatestLabelsForDate(ctx context.Context, tx *gorm.DB, day time.Time) ([]types.MoodCheckIn, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	start, end := dayBounds(day)

	var rows []flipFeelRow
	if err := transaction.WithContext(ctx).Raw(`
		SELECT ff.flip_feel_id,
		       ff.user_id,
		       ff.started_at,
		       ff.finished_at,
		       c.mood_label
		FROM flip_feel ff
		JOIN flip_feel_responses r ON ff.flip_feel_id = r.flip_feel_id
		LEFT JOIN flip_feel_choices c ON r.choice_id = c.choice_id
		WHERE ff.started_at >= ? AND ff.started_at < ?
		ORDER BY ff.user_id ASC, ff.started_at DESC, r.created_at ASC
	`, start, end).Scan(&rows).Error; err != nil {
		return nil, err
	}

	// Rows arrive grouped per user with the latest session first; keep only
	// that session's first three labels.
	var results []types.MoodCheckIn
	bySession := map[uuid.UUID][]types.FlipFeelSession{}
	var userOrder []uuid.UUID
	for _, row := range rows {
		sessions := bySession[row.UserID]
		if sessions == nil {
			userOrder = append(userOrder, row.UserID)
		}
		if n := len(sessions); n > 0 && sessions[n-1].FlipFeelID == row.FlipFeelID {
			sessions[n-1].MoodLabels = append(sessions[n-1].MoodLabels, row.MoodLabel)
		} else {
			sessions = append(sessions, types.FlipFeelSession{
				FlipFeelID: row.FlipFeelID,
				StartedAt:  row.StartedAt,
				FinishedAt: row.FinishedAt,
				MoodLabels: []*string{row.MoodLabel},
			})
		}
		bySession[row.UserID] = sessions
	}

	for _, userID := range userOrder {
		latest := bySession[userID][0]
		labels := latest.MoodLabels
		if len(labels) > 3 {
			labels = labels[:3]
		}
		for len(labels) < 3 {
			labels = append(labels, nil)
		}
		results = append(results, types.MoodCheckIn{
			UserID: userID,
			Mood1:  labels[0],
			Mood2:  labels[1],
			Mood3:  labels[2],
		})
	}
	return results, nil
}

func groupSessions(rows []flipFeelRow) []types.FlipFeelSession {
	var sessions []types.FlipFeelSession
	for _, row := range rows {
		if n := len(sessions); n > 0 && sessions[n-1].FlipFeelID == row.FlipFeelID {
			sessions[n-1].MoodLabels = append(sessions[n-1].MoodLabels, row.MoodLabel)
			continue
		}
		sessions = append(sessions, types.FlipFeelSession{
			FlipFeelID: row.FlipFeelID,
			StartedAt:  row.StartedAt,
			FinishedAt: row.FinishedAt,
			MoodLabels: []*string{row.MoodLabel},
		})
	}
	return sessions
}
