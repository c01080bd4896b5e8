package app

import (
	"gorm.io/gorm"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/repos"
)

type Repos struct {
	Journal               repos.JournalRepo
	MoodEntry             repos.MoodEntryRepo
	Gratitude             repos.GratitudeRepo
	FlipFeel              repos.FlipFeelRepo
	StudentAnalytics      repos.StudentAnalyticsRepo
	StudentClassification repos.StudentClassificationRepo
	StudentWeekly         repos.StudentWeeklyClassificationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Journal:               repos.NewJournalRepo(db, log),
		MoodEntry:             repos.NewMoodEntryRepo(db, log),
		Gratitude:             repos.NewGratitudeRepo(db, log),
		FlipFeel:              repos.NewFlipFeelRepo(db, log),
		StudentAnalytics:      repos.NewStudentAnalyticsRepo(db, log),
		StudentClassification: repos.NewStudentClassificationRepo(db, log),
		StudentWeekly:         repos.NewStudentWeeklyClassificationRepo(db, log),
	}
}
