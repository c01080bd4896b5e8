package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brightpath/wellbeing-worker/internal/features"
	"github.com/brightpath/wellbeing-worker/internal/inference"
	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/repos"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

// DailyResult is the outcome of one student's daily classification: the
// assembled features plus the model verdict.
type DailyResult struct {
	StudentID     uuid.UUID          `json:"student_id"`
	Date          string             `json:"date"`
	Features      features.Vector    `json:"model_input"`
	Prediction    string             `json:"prediction"`
	Probabilities map[string]float64 `json:"probabilities"`
	IsFlagged     bool               `json:"is_flagged"`
}

// DailyClassificationService runs the daily pipeline: find today's check-ins,
// assemble feature vectors concurrently, score the batch once, persist per
// student.
type DailyClassificationService struct {
	log         *logger.Logger
	moods       repos.MoodEntryRepo
	assembler   *features.Assembler
	inference   *inference.Service
	analytics   repos.StudentAnalyticsRepo
	results     repos.StudentClassificationRepo
	concurrency int
}

func NewDailyClassificationService(
	moods repos.MoodEntryRepo,
	assembler *features.Assembler,
	inferenceSvc *inference.Service,
	analytics repos.StudentAnalyticsRepo,
	results repos.StudentClassificationRepo,
	concurrency int,
	baseLog *logger.Logger,
) *DailyClassificationService {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &DailyClassificationService{
		log:         baseLog.With("service", "DailyClassificationService"),
		moods:       moods,
		assembler:   assembler,
		inference:   inferenceSvc,
		analytics:   analytics,
		results:     results,
		concurrency: concurrency,
	}
}

// ClassifyToday classifies every student who checked in today (UTC). A model
// failure aborts the whole run; a persistence failure for one student is
// logged and does not stop the others.
func (s *DailyClassificationService) ClassifyToday(ctx context.Context, topK int) ([]DailyResult, error) {
	if topK <= 0 {
		topK = 1
	}
	day := time.Now().UTC()

	checkIns, err := s.moods.CheckInsForDate(ctx, nil, day)
	if err != nil {
		return nil, fmt.Errorf("fetch mood check-ins: %w", err)
	}
	if len(checkIns) == 0 {
		s.log.Info("no mood check-ins found", "date", day.Format("2006-01-02"))
		return []DailyResult{}, nil
	}

	// Assemble concurrently; indexed placement keeps vectors aligned with
	// check-ins regardless of completion order.
	vectors := make([]features.Vector, len(checkIns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, checkIn := range checkIns {
		g.Go(func() error {
			vec, err := s.assembler.Build(gctx, checkIn.UserID, day, checkIn)
			if err != nil {
				return fmt.Errorf("assemble features for user %s: %w", checkIn.UserID, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.log.Info("built model inputs", "count", len(vectors), "date", day.Format("2006-01-02"), "top_k", topK)

	inputs := make([][]float64, len(vectors))
	for i, vec := range vectors {
		inputs[i] = vec.Encode()
	}
	verdicts, err := s.inference.Classify(ctx, inputs, topK)
	if err != nil {
		return nil, fmt.Errorf("classify batch: %w", err)
	}

	results := make([]DailyResult, 0, len(checkIns))
	for i, checkIn := range checkIns {
		verdict := verdicts[i]
		flagged := verdict.Prediction == "InCrisis" || verdict.Prediction == "Struggling"

		result := DailyResult{
			StudentID:     checkIn.UserID,
			Date:          day.Format("2006-01-02"),
			Features:      vectors[i],
			Prediction:    verdict.Prediction,
			Probabilities: verdict.Probabilities,
			IsFlagged:     flagged,
		}
		results = append(results, result)

		label, err := types.ParseLabel(verdict.Prediction)
		if err != nil {
			s.log.Error("model returned unknown label, skipping persistence",
				"student_id", checkIn.UserID, "prediction", verdict.Prediction)
			continue
		}

		if err := s.persist(ctx, checkIn.UserID, vectors[i], label, flagged); err != nil {
			s.log.Error("failed to persist analytics/classification",
				"student_id", checkIn.UserID, "error", err)
		}
	}
	return results, nil
}

func (s *DailyClassificationService) persist(ctx context.Context, studentID uuid.UUID, vec features.Vector, label types.Label, flagged bool) error {
	now := time.Now().UTC()

	record := &types.StudentAnalytics{
		StudentID:     studentID,
		DateRecorded:  now,
		GratitudeFlag: vec["gratitude_entry"] != 0,

		PAnxiety:   floatPtr(vec["p_anxiety"]),
		PNormal:    floatPtr(vec["p_normal"]),
		PStressed:  floatPtr(vec["p_stressed"]),
		PSuicidal:  floatPtr(vec["p_suicidal"]),
		PDepressed: floatPtr(vec["p_depressed"]),

		MoodHappy:     intPtr(vec["Happy"]),
		MoodEnergized: intPtr(vec["Energized"]),
		MoodExcited:   intPtr(vec["Excited"]),
		MoodMotivated: intPtr(vec["Motivated"]),
		MoodCalm:      intPtr(vec["Calm"]),
		MoodRelaxed:   intPtr(vec["Relaxed"]),
		MoodPeaceful:  intPtr(vec["Peaceful"]),
		MoodContent:   intPtr(vec["Content"]),
		MoodAnxious:   intPtr(vec["Anxious"]),
		MoodAngry:     intPtr(vec["Angry"]),
		MoodStressed:  intPtr(vec["Stressed"]),
		MoodRestless:  intPtr(vec["Restless"]),
		MoodDepressed: intPtr(vec["Depressed"]),
		MoodSad:       intPtr(vec["Sad"]),
		MoodExhausted: intPtr(vec["Exhausted"]),
		MoodHopeless:  intPtr(vec["Hopeless"]),

		FAndFInCrisis:      floatPtr(vec["flipfeel_incrisis_pct"]),
		FAndFStruggling:    floatPtr(vec["flipfeel_struggling_pct"]),
		FAndFThriving:      floatPtr(vec["flipfeel_thriving_pct"]),
		FAndFExcelling:     floatPtr(vec["flipfeel_excelling_pct"]),
		FAndFFinalCategory: floatPtr(0),

		Classification: &label,
	}
	if _, err := s.analytics.Create(ctx, nil, record); err != nil {
		return fmt.Errorf("create analytics: %w", err)
	}

	if _, err := s.results.Create(ctx, nil, &types.StudentClassification{
		StudentID:      studentID,
		Classification: label,
		IsFlagged:      flagged,
		ClassifiedAt:   now,
	}); err != nil {
		return fmt.Errorf("create classification: %w", err)
	}
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v float64) *int {
	n := int(v)
	return &n
}
