package types

import (
	"time"

	"github.com/google/uuid"
)

// StudentAnalytics captures one classification run for one student: the full
// feature vector that was fed to the model plus the resulting prediction.
// DateRecorded is the run timestamp, not the signal date. Written once by the
// daily pipeline, never updated.
type StudentAnalytics struct {
	AnalyticsID  uuid.UUID `gorm:"type:uuid;primaryKey;column:analytics_id" json:"analytics_id"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null;index;column:student_id" json:"student_id"`
	DateRecorded time.Time `gorm:"not null;index;column:date_recorded" json:"date_recorded"`

	GratitudeFlag bool `gorm:"not null;default:false;column:gratitude_flag" json:"gratitude_flag"`

	PAnxiety   *float64 `gorm:"column:p_anxiety" json:"p_anxiety"`
	PNormal    *float64 `gorm:"column:p_normal" json:"p_normal"`
	PStressed  *float64 `gorm:"column:p_stressed" json:"p_stressed"`
	PSuicidal  *float64 `gorm:"column:p_suicidal" json:"p_suicidal"`
	PDepressed *float64 `gorm:"column:p_depressed" json:"p_depressed"`

	MoodHappy     *int `gorm:"column:mood_happy" json:"mood_happy"`
	MoodEnergized *int `gorm:"column:mood_energized" json:"mood_energized"`
	MoodExcited   *int `gorm:"column:mood_excited" json:"mood_excited"`
	MoodMotivated *int `gorm:"column:mood_motivated" json:"mood_motivated"`
	MoodCalm      *int `gorm:"column:mood_calm" json:"mood_calm"`
	MoodRelaxed   *int `gorm:"column:mood_relaxed" json:"mood_relaxed"`
	MoodPeaceful  *int `gorm:"column:mood_peaceful" json:"mood_peaceful"`
	MoodContent   *int `gorm:"column:mood_content" json:"mood_content"`
	MoodAnxious   *int `gorm:"column:mood_anxious" json:"mood_anxious"`
	MoodAngry     *int `gorm:"column:mood_angry" json:"mood_angry"`
	MoodStressed  *int `gorm:"column:mood_stressed" json:"mood_stressed"`
	MoodRestless  *int `gorm:"column:mood_restless" json:"mood_restless"`
	MoodDepressed *int `gorm:"column:mood_depressed" json:"mood_depressed"`
	MoodSad       *int `gorm:"column:mood_sad" json:"mood_sad"`
	MoodExhausted *int `gorm:"column:mood_exhausted" json:"mood_exhausted"`
	MoodHopeless  *int `gorm:"column:mood_hopeless" json:"mood_hopeless"`

	FAndFInCrisis      *float64 `gorm:"column:f_and_f_in_crisis" json:"f_and_f_in_crisis"`
	FAndFStruggling    *float64 `gorm:"column:f_and_f_struggling" json:"f_and_f_struggling"`
	FAndFThriving      *float64 `gorm:"column:f_and_f_thriving" json:"f_and_f_thriving"`
	FAndFExcelling     *float64 `gorm:"column:f_and_f_excelling" json:"f_and_f_excelling"`
	FAndFFinalCategory *float64 `gorm:"column:f_and_f_final_category" json:"f_and_f_final_category"`

	Classification *Label `gorm:"type:text;column:classification" json:"classification"`
}

func (StudentAnalytics) TableName() string { return "student_analytics" }
