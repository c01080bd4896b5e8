package features

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

type fakeJournalRepo struct {
	entries []types.JournalEntry
	err     error
	delay   time.Duration
}

func (f *fakeJournalRepo) EntriesForUserDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) ([]types.JournalEntry, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.entries, f.err
}

type fakeGratitudeRepo struct {
	has   bool
	err   error
	delay time.Duration
}

func (f *fakeGratitudeRepo) HasEntryForDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (bool, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.has, f.err
}

type fakeFlipFeelRepo struct {
	sessions []types.FlipFeelSession
	err      error
	delay    time.Duration
}

func (f *fakeFlipFeelRepo) SessionsForUserDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) ([]types.FlipFeelSession, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.sessions, f.err
}

func (f *fakeFlipFeelRepo) LatestLabelsForDate(ctx context.Context, tx *gorm.DB, day time.Time) ([]types.MoodCheckIn, error) {
	return nil, nil
}

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

func TestBuildMergesAllSources(t *testing.T) {
	journal := &fakeJournalRepo{entries: []types.JournalEntry{
		{WellnessState: datatypes.JSON(`{"L1": 0.7, "L3": 0.1}`)},
	}}
	gratitude := &fakeGratitudeRepo{has: true}
	flipFeel := &fakeFlipFeelRepo{sessions: []types.FlipFeelSession{
		{MoodLabels: []*string{strPtr("Thriving")}},
	}}

	a := NewAssembler(journal, gratitude, flipFeel, DefaultFetchPolicy(), testLog(t))
	checkIn := types.MoodCheckIn{Mood1: strPtr("happy"), Mood2: strPtr("calm")}

	vec, err := a.Build(context.Background(), uuid.New(), time.Now().UTC(), checkIn)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(vec) != len(Keys()) {
		t.Fatalf("vector has %d keys, want %d", len(vec), len(Keys()))
	}
	if vec["gratitude_entry"] != 1 {
		t.Fatalf("gratitude_entry = %v, want 1", vec["gratitude_entry"])
	}
	if !almostEqual(vec["p_anxiety"], 0.7) {
		t.Fatalf("p_anxiety = %v, want 0.7", vec["p_anxiety"])
	}
	if vec["Happy"] != 1 || vec["Calm"] != 1 {
		t.Fatalf("mood one-hots wrong: Happy=%v Calm=%v", vec["Happy"], vec["Calm"])
	}
	if vec["Sad"] != 0 {
		t.Fatalf("Sad = %v, want 0", vec["Sad"])
	}
	if !almostEqual(vec["flipfeel_thriving_pct"], 1.0) {
		t.Fatalf("flipfeel_thriving_pct = %v, want 1.0", vec["flipfeel_thriving_pct"])
	}
}

func TestBuildConcurrentFetchOrderIndependent(t *testing.T) {
	// Randomized delays should never change the assembled vector.
	journal := &fakeJournalRepo{
		entries: []types.JournalEntry{{WellnessState: datatypes.JSON(`{"L2": 0.9}`)}},
		delay:   time.Duration(rand.Intn(20)) * time.Millisecond,
	}
	gratitude := &fakeGratitudeRepo{has: true, delay: time.Duration(rand.Intn(20)) * time.Millisecond}
	flipFeel := &fakeFlipFeelRepo{delay: time.Duration(rand.Intn(20)) * time.Millisecond}

	a := NewAssembler(journal, gratitude, flipFeel, DefaultFetchPolicy(), testLog(t))
	for i := 0; i < 5; i++ {
		vec, err := a.Build(context.Background(), uuid.New(), time.Now().UTC(), types.MoodCheckIn{})
		if err != nil {
			t.Fatalf("Build returned error: %v", err)
		}
		if !almostEqual(vec["p_normal"], 0.9) || vec["gratitude_entry"] != 1 {
			t.Fatalf("run %d produced inconsistent vector: %v", i, vec)
		}
	}
}

func TestBuildLenientFlipFeelDefaultsToZero(t *testing.T) {
	journal := &fakeJournalRepo{}
	gratitude := &fakeGratitudeRepo{}
	flipFeel := &fakeFlipFeelRepo{err: errors.New("flip_feel table unreachable")}

	a := NewAssembler(journal, gratitude, flipFeel, DefaultFetchPolicy(), testLog(t))
	vec, err := a.Build(context.Background(), uuid.New(), time.Now().UTC(), types.MoodCheckIn{})
	if err != nil {
		t.Fatalf("Build should tolerate flip-and-feel failure, got: %v", err)
	}
	for _, k := range FlipFeelKeys {
		if vec[k] != 0 {
			t.Fatalf("%s = %v, want 0 after lenient failure", k, vec[k])
		}
	}
}

func TestBuildStrictJournalFailureAborts(t *testing.T) {
	journal := &fakeJournalRepo{err: errors.New("journal query failed")}
	gratitude := &fakeGratitudeRepo{}
	flipFeel := &fakeFlipFeelRepo{}

	a := NewAssembler(journal, gratitude, flipFeel, DefaultFetchPolicy(), testLog(t))
	if _, err := a.Build(context.Background(), uuid.New(), time.Now().UTC(), types.MoodCheckIn{}); err == nil {
		t.Fatal("Build should fail when the journal fetch fails under the strict policy")
	}
}

func TestEncodePositional(t *testing.T) {
	vec := Vector{}
	for _, k := range Keys() {
		vec[k] = 0
	}
	vec["gratitude_entry"] = 1
	vec["p_stressed"] = 0.3

	encoded := vec.Encode()
	if len(encoded) != 26 {
		t.Fatalf("encoded length = %d, want 26", len(encoded))
	}
	if encoded[0] != 1 {
		t.Fatalf("encoded[0] = %v, want gratitude_entry value 1", encoded[0])
	}
	// p_stressed is the last of the five probability keys.
	if !almostEqual(encoded[5], 0.3) {
		t.Fatalf("encoded[5] = %v, want 0.3", encoded[5])
	}
}
