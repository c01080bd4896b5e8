package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Read models for the signal tables owned by the main platform. This worker
// only queries them; their schemas are managed elsewhere.

// JournalEntry carries the wellness probabilities attached to one journal
// entry. WellnessState is either a JSON object of L1..L5 scores or a
// JSON-encoded string of the same; malformed payloads are tolerated at the
// aggregation layer.
type JournalEntry struct {
	WellnessState datatypes.JSON `json:"wellness_state"`
}

// MoodCheckIn is the latest mood check-in for one user on one day, carrying
// up to three selected mood labels.
type MoodCheckIn struct {
	UserID uuid.UUID `json:"user_id"`
	Mood1  *string   `json:"mood_1"`
	Mood2  *string   `json:"mood_2"`
	Mood3  *string   `json:"mood_3"`
}

// Moods returns the check-in's selections in order.
func (m MoodCheckIn) Moods() []*string {
	return []*string{m.Mood1, m.Mood2, m.Mood3}
}

// FlipFeelSession is one flip-and-feel survey session with the mood labels
// chosen in response order. Labels may be nil when a response references a
// deleted choice.
type FlipFeelSession struct {
	FlipFeelID uuid.UUID  `json:"flip_feel_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	MoodLabels []*string  `json:"mood_labels"`
}
