package types

import (
	"time"

	"github.com/google/uuid"
)

// StudentClassification is the append-only daily classification log. One row
// per successful daily classification per student; rows are never mutated.
type StudentClassification struct {
	ClassificationID uuid.UUID `gorm:"type:uuid;primaryKey;column:classification_id" json:"classification_id"`
	StudentID        uuid.UUID `gorm:"type:uuid;not null;index;column:student_id" json:"student_id"`
	Classification   Label     `gorm:"type:text;not null;column:classification" json:"classification"`
	IsFlagged        bool      `gorm:"not null;default:false;column:is_flagged" json:"is_flagged"`
	ClassifiedAt     time.Time `gorm:"not null;index;column:classified_at" json:"classified_at"`
}

func (StudentClassification) TableName() string { return "student_classification" }
