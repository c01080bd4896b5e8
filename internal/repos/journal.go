package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

// JournalRepo reads journal entries from the platform-owned journal_entries
// table. Only the wellness_state payload is fetched; entry content stays
// encrypted at rest and is never needed here.
type JournalRepo interface {
	EntriesForUserDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) ([]types.JournalEntry, error)
}

type journalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJournalRepo(db *gorm.DB, baseLog *logger.Logger) JournalRepo {
	return &journalRepo{db: db, log: baseLog.With("repo", "JournalRepo")}
}

func (r *journalRepo) EntriesForUserDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) ([]types.JournalEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	start, end := dayBounds(day)

	var results []types.JournalEntry
	if err := transaction.WithContext(ctx).Raw(`
		SELECT wellness_state
		FROM journal_entries
		WHERE user_id = ?
		  AND is_deleted = FALSE
		  AND created_at >= ? AND created_at < ?
		ORDER BY created_at ASC
	`, userID, start, end).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
