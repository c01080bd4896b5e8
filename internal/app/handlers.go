package app

import (
	"github.com/brightpath/wellbeing-worker/internal/handlers"
	"github.com/brightpath/wellbeing-worker/internal/logger"
)

type Handlers struct {
	Classification *handlers.ClassificationHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, reposet Repos) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Classification: handlers.NewClassificationHandler(
			serviceset.Daily,
			serviceset.Weekly,
			reposet.StudentClassification,
			reposet.StudentWeekly,
			log,
		),
	}
}
