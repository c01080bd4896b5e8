package features

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/repos"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

// Vector is a student's daily feature vector keyed by feature name. Every
// vector carries the same fixed key set so downstream encoding is positional.
type Vector map[string]float64

// ProbKeys lists the five journal-derived probability features.
var ProbKeys = []string{"p_anxiety", "p_normal", "p_depressed", "p_suicidal", "p_stressed"}

// FetchPolicy controls what happens when a signal source fails for one
// student. A lenient source degrades to its zero-valued defaults; a strict
// source fails the whole assembly.
type FetchPolicy struct {
	LenientJournal   bool
	LenientGratitude bool
	LenientFlipFeel  bool
}

// DefaultFetchPolicy treats flip-and-feel as best-effort and the other two
// sources as required.
func DefaultFetchPolicy() FetchPolicy {
	return FetchPolicy{LenientFlipFeel: true}
}

// Assembler builds per-student daily feature vectors by fanning out to the
// three signal sources concurrently.
type Assembler struct {
	log       *logger.Logger
	journal   repos.JournalRepo
	gratitude repos.GratitudeRepo
	flipFeel  repos.FlipFeelRepo
	policy    FetchPolicy
}

func NewAssembler(
	journal repos.JournalRepo,
	gratitude repos.GratitudeRepo,
	flipFeel repos.FlipFeelRepo,
	policy FetchPolicy,
	baseLog *logger.Logger,
) *Assembler {
	return &Assembler{
		log:       baseLog.With("component", "FeatureAssembler"),
		journal:   journal,
		gratitude: gratitude,
		flipFeel:  flipFeel,
		policy:    policy,
	}
}

// Keys returns the fixed feature key set in encoding order: gratitude flag,
// five probabilities, sixteen mood one-hots, four flip-and-feel buckets.
func Keys() []string {
	keys := make([]string, 0, 1+len(ProbKeys)+len(Emotions)+len(FlipFeelKeys))
	keys = append(keys, "gratitude_entry")
	keys = append(keys, ProbKeys...)
	keys = append(keys, Emotions...)
	keys = append(keys, FlipFeelKeys...)
	return keys
}

// Build assembles the feature vector for one student on one UTC day. The
// mood one-hots come from the supplied check-in; the journal, gratitude and
// flip-and-feel signals are fetched concurrently.
func (a *Assembler) Build(ctx context.Context, userID uuid.UUID, day time.Time, checkIn types.MoodCheckIn) (Vector, error) {
	var (
		entries  []types.JournalEntry
		hasGrat  bool
		sessions []types.FlipFeelSession
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := a.journal.EntriesForUserDate(gctx, nil, userID, day)
		if err != nil {
			if a.policy.LenientJournal {
				a.log.Warn("journal fetch failed, defaulting probabilities", "user_id", userID, "error", err)
				return nil
			}
			return fmt.Errorf("fetch journal entries: %w", err)
		}
		entries = fetched
		return nil
	})
	g.Go(func() error {
		fetched, err := a.gratitude.HasEntryForDate(gctx, nil, userID, day)
		if err != nil {
			if a.policy.LenientGratitude {
				a.log.Warn("gratitude fetch failed, defaulting flag", "user_id", userID, "error", err)
				return nil
			}
			return fmt.Errorf("fetch gratitude flag: %w", err)
		}
		hasGrat = fetched
		return nil
	})
	g.Go(func() error {
		fetched, err := a.flipFeel.SessionsForUserDate(gctx, nil, userID, day)
		if err != nil {
			if a.policy.LenientFlipFeel {
				a.log.Warn("flip-and-feel fetch failed, defaulting buckets", "user_id", userID, "error", err)
				return nil
			}
			return fmt.Errorf("fetch flip-and-feel sessions: %w", err)
		}
		sessions = fetched
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vec := make(Vector, 1+len(ProbKeys)+len(Emotions)+len(FlipFeelKeys))
	if hasGrat {
		vec["gratitude_entry"] = 1
	} else {
		vec["gratitude_entry"] = 0
	}
	for k, v := range AggregateWellnessProbs(entries) {
		vec[k] = v
	}
	for name, hot := range OneHotMoods(checkIn.Moods()) {
		vec[name] = float64(hot)
	}
	for k, v := range FlipFeelPercentages(sessions) {
		vec[k] = v
	}
	return vec, nil
}

// Encode flattens a vector into the model's positional input order.
func (v Vector) Encode() []float64 {
	keys := Keys()
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = v[k]
	}
	return out
}
