package app

import (
	"github.com/brightpath/wellbeing-worker/internal/features"
	"github.com/brightpath/wellbeing-worker/internal/inference"
	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/services"
)

type Services struct {
	Assembler *features.Assembler
	Inference *inference.Service
	Daily     *services.DailyClassificationService
	Weekly    *services.WeeklyClassificationService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos) Services {
	log.Info("Wiring services...")

	assembler := features.NewAssembler(
		reposet.Journal,
		reposet.Gratitude,
		reposet.FlipFeel,
		cfg.FetchPolicy,
		log,
	)

	client := inference.NewFromEnv(log)
	inferenceSvc := inference.NewService(client, log)

	daily := services.NewDailyClassificationService(
		reposet.MoodEntry,
		assembler,
		inferenceSvc,
		reposet.StudentAnalytics,
		reposet.StudentClassification,
		cfg.AssemblyConcurrency,
		log,
	)
	weekly := services.NewWeeklyClassificationService(
		reposet.StudentClassification,
		reposet.StudentWeekly,
		cfg.AssemblyConcurrency,
		log,
	)

	return Services{
		Assembler: assembler,
		Inference: inferenceSvc,
		Daily:     daily,
		Weekly:    weekly,
	}
}
