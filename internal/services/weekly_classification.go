package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/repos"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

const weeklyLookbackLimit = 200

// WeeklyResult reports one student's weekly evaluation: counters, trend
// inputs, the rule verdict and the persisted row when the upsert succeeded.
type WeeklyResult struct {
	StudentID              uuid.UUID                          `json:"student_id"`
	WeekStart              time.Time                          `json:"week_start"`
	WeekEnd                time.Time                          `json:"week_end"`
	DominantClassification *types.Label                       `json:"dominant_classification"`
	CountInCrisis          int                                `json:"count_in_crisis"`
	CountStruggling        int                                `json:"count_struggling"`
	TotalValidDays         int                                `json:"total_valid_days"`
	Last3Labels            []types.Label                      `json:"last_3_labels"`
	Flagged                bool                               `json:"flagged"`
	ReviewForMissing       bool                               `json:"review_for_missing"`
	Reasons                []string                           `json:"reasons"`
	PersistedRow           *types.StudentWeeklyClassification `json:"persisted_row"`
}

// WeeklyClassificationService is the rule-based escalation engine. It reads
// the daily classification log and decides, per student per week, whether the
// student should be flagged for counselor review.
type WeeklyClassificationService struct {
	log         *logger.Logger
	dailies     repos.StudentClassificationRepo
	weeklies    repos.StudentWeeklyClassificationRepo
	concurrency int
}

func NewWeeklyClassificationService(
	dailies repos.StudentClassificationRepo,
	weeklies repos.StudentWeeklyClassificationRepo,
	concurrency int,
	baseLog *logger.Logger,
) *WeeklyClassificationService {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &WeeklyClassificationService{
		log:         baseLog.With("service", "WeeklyClassificationService"),
		dailies:     dailies,
		weeklies:    weeklies,
		concurrency: concurrency,
	}
}

type dailyEntry struct {
	at    time.Time
	label types.Label
}

// ClassifyAndRecordWeek evaluates one student's week [weekStart, weekEnd) and
// upserts the verdict. A persistence failure is reported in the reasons list
// rather than failing the evaluation.
func (s *WeeklyClassificationService) ClassifyAndRecordWeek(ctx context.Context, studentID uuid.UUID, weekStart, weekEnd time.Time) (*WeeklyResult, error) {
	items, err := s.dailies.ListForStudent(ctx, nil, studentID, weeklyLookbackLimit)
	if err != nil {
		return nil, fmt.Errorf("list daily classifications: %w", err)
	}

	var entries []dailyEntry
	for _, it := range items {
		if it.ClassifiedAt.Before(weekStart) || !it.ClassifiedAt.Before(weekEnd) {
			continue
		}
		entries = append(entries, dailyEntry{at: it.ClassifiedAt, label: it.Classification})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	labels := make([]types.Label, 0, len(entries))
	for _, e := range entries {
		if e.label != "" {
			labels = append(labels, e.label)
		}
	}

	dominant := dominantLabel(entries, labels)

	countInCrisis := 0
	countStruggling := 0
	for _, l := range labels {
		switch {
		case strings.EqualFold(string(l), "incrisis"):
			countInCrisis++
		case strings.EqualFold(string(l), "struggling"):
			countStruggling++
		}
	}
	totalValidDays := len(labels)

	last3 := labels
	if len(last3) > 3 {
		last3 = last3[len(last3)-3:]
	}

	var reasons []string
	flag := false
	reviewForMissing := false

	// R6: missing data
	if totalValidDays < 4 {
		reviewForMissing = true
		reasons = append(reasons, "R6: <4 valid daily classifications (data anomaly)")
	}

	// R1: critical frequency
	if countInCrisis >= 2 {
		flag = true
		reasons = append(reasons, "R1: count_in_crisis >= 2")
	}

	// R2: persistent struggle
	if countStruggling >= 4 {
		flag = true
		reasons = append(reasons, "R2: count_struggling >= 4")
	}

	// R3: strictly worsening severity over the last 3 days
	if len(last3) == 3 {
		s0, ok0 := last3[0].Severity()
		s1, ok1 := last3[1].Severity()
		s2, ok2 := last3[2].Severity()
		if ok0 && ok1 && ok2 && s0 < s1 && s1 < s2 {
			flag = true
			reasons = append(reasons, "R3: downward trend in last 3 days")
		}
	}

	// R4: mixed but worrying
	if countInCrisis+countStruggling >= 3 {
		var lastLabel types.Label
		if len(last3) > 0 {
			lastLabel = last3[len(last3)-1]
		} else if len(labels) > 0 {
			lastLabel = labels[len(labels)-1]
		}
		lower := strings.ToLower(string(lastLabel))
		if lower == "struggling" || lower == "incrisis" {
			flag = true
			reasons = append(reasons, "R4: mixed but worrying counts and last is Struggling or InCrisis")
		}
	}

	// R5: stable improvement override, drops the accumulated rule reasons
	if len(last3) == 3 && allImproving(last3) {
		flag = false
		kept := reasons[:0]
		for _, r := range reasons {
			if !strings.HasPrefix(r, "R") {
				kept = append(kept, r)
			}
		}
		reasons = kept
		reasons = append(reasons, "R5: stable improvement (do not flag)")
	}

	persisted, err := s.weeklies.Upsert(ctx, nil, &types.StudentWeeklyClassification{
		StudentID:              studentID,
		WeekStart:              weekStart,
		WeekEnd:                weekEnd,
		DominantClassification: dominant,
		IsFlagged:              flag,
	})
	if err != nil {
		s.log.Error("failed to persist weekly classification", "student_id", studentID, "error", err)
		persisted = nil
		reasons = append(reasons, fmt.Sprintf("persist_error: %v", err))
	}

	return &WeeklyResult{
		StudentID:              studentID,
		WeekStart:              weekStart,
		WeekEnd:                weekEnd,
		DominantClassification: dominant,
		CountInCrisis:          countInCrisis,
		CountStruggling:        countStruggling,
		TotalValidDays:         totalValidDays,
		Last3Labels:            last3,
		Flagged:                flag,
		ReviewForMissing:       reviewForMissing,
		Reasons:                reasons,
		PersistedRow:           persisted,
	}, nil
}

// RunTrailingWeek evaluates every student with at least one daily
// classification in the trailing window of the given length (default 7 days,
// ending today inclusive). Per-student failures are logged and omitted from
// the result set.
func (s *WeeklyClassificationService) RunTrailingWeek(ctx context.Context, days int) ([]WeeklyResult, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekEnd := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -(days - 1))

	rows, err := s.dailies.ListInRange(ctx, nil, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("list daily classifications in range: %w", err)
	}

	seen := map[uuid.UUID]bool{}
	var studentIDs []uuid.UUID
	for _, row := range rows {
		if !seen[row.StudentID] {
			seen[row.StudentID] = true
			studentIDs = append(studentIDs, row.StudentID)
		}
	}
	s.log.Info("running weekly evaluation", "students", len(studentIDs),
		"week_start", weekStart.Format("2006-01-02"), "week_end", weekEnd.Format("2006-01-02"))

	results := make([]*WeeklyResult, len(studentIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, studentID := range studentIDs {
		g.Go(func() error {
			result, err := s.ClassifyAndRecordWeek(gctx, studentID, weekStart, weekEnd)
			if err != nil {
				s.log.Error("weekly evaluation failed", "student_id", studentID, "error", err)
				return nil
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]WeeklyResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// dominantLabel picks the most frequent label; ties go to the label whose
// latest occurrence in the window is most recent.
func dominantLabel(entries []dailyEntry, labels []types.Label) *types.Label {
	if len(labels) == 0 {
		return nil
	}

	counts := map[types.Label]int{}
	for _, l := range labels {
		counts[l]++
	}
	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	candidates := map[types.Label]bool{}
	for l, c := range counts {
		if c == best {
			candidates[l] = true
		}
	}
	if len(candidates) == 1 {
		for l := range candidates {
			return &l
		}
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if candidates[entries[i].label] {
			l := entries[i].label
			return &l
		}
	}
	return nil
}

func allImproving(last3 []types.Label) bool {
	for _, l := range last3 {
		lower := strings.ToLower(string(l))
		if lower != "thriving" && lower != "excelling" {
			return false
		}
	}
	return true
}
