package app

import (
	"github.com/brightpath/wellbeing-worker/internal/features"
	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/utils"
)

type Config struct {
	Port                string
	TopKDefault         int
	WeeklyLookbackDays  int
	AssemblyConcurrency int
	FetchPolicy         features.FetchPolicy
}

func LoadConfig(log *logger.Logger) Config {
	policy := features.DefaultFetchPolicy()
	policy.LenientJournal = utils.GetEnvAsBool("WB_LENIENT_JOURNAL", policy.LenientJournal, log)
	policy.LenientGratitude = utils.GetEnvAsBool("WB_LENIENT_GRATITUDE", policy.LenientGratitude, log)
	policy.LenientFlipFeel = utils.GetEnvAsBool("WB_LENIENT_FLIPFEEL", policy.LenientFlipFeel, log)

	return Config{
		Port:                utils.GetEnv("PORT", "8080", log),
		TopKDefault:         utils.GetEnvAsInt("WB_TOP_K_DEFAULT", 1, log),
		WeeklyLookbackDays:  utils.GetEnvAsInt("WB_WEEKLY_LOOKBACK_DAYS", 7, log),
		AssemblyConcurrency: utils.GetEnvAsInt("WB_ASSEMBLY_CONCURRENCY", 8, log),
		FetchPolicy:         policy,
	}
}
