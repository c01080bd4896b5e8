package types

import (
	"time"

	"github.com/google/uuid"
)

// StudentWeeklyClassification is the persisted weekly verdict for one
// (student, week_start) pair. The composite unique index makes weekly reruns
// idempotent: a repeated run upserts instead of inserting a duplicate.
type StudentWeeklyClassification struct {
	WeeklyClassificationID uuid.UUID `gorm:"type:uuid;primaryKey;column:weekly_classification_id" json:"weekly_classification_id"`
	StudentID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_student_week_start;column:student_id" json:"student_id"`
	WeekStart              time.Time `gorm:"not null;uniqueIndex:uniq_student_week_start;column:week_start" json:"week_start"`
	WeekEnd                time.Time `gorm:"not null;column:week_end" json:"week_end"`

	// DominantClassification is nil when the window held no valid labels.
	DominantClassification *Label `gorm:"type:text;column:dominant_classification" json:"dominant_classification"`

	IsFlagged    bool      `gorm:"not null;default:false;column:is_flagged" json:"is_flagged"`
	ClassifiedAt time.Time `gorm:"not null;column:classified_at" json:"classified_at"`
}

func (StudentWeeklyClassification) TableName() string { return "student_weekly_classification" }
