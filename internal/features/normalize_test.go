package features

import (
	"math"
	"testing"

	"gorm.io/datatypes"

	"github.com/brightpath/wellbeing-worker/internal/types"
)

func strPtr(s string) *string { return &s }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalizeMood(t *testing.T) {
	cases := []struct {
		in   *string
		want string
		ok   bool
	}{
		{strPtr("happy"), "Happy", true},
		{strPtr("HAPPY"), "Happy", true},
		{strPtr("  anxious  "), "Anxious", true},
		{strPtr(""), "", false},
		{strPtr("   "), "", false},
		{nil, "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeMood(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("NormalizeMood(%v) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestOneHotMoodsIgnoresUnknownAndDuplicates(t *testing.T) {
	hot := OneHotMoods([]*string{strPtr("happy"), strPtr("happy"), strPtr("Bored"), nil})
	if len(hot) != len(Emotions) {
		t.Fatalf("one-hot has %d keys, want %d", len(hot), len(Emotions))
	}
	if hot["Happy"] != 1 {
		t.Fatalf("Happy = %d, want 1", hot["Happy"])
	}
	total := 0
	for _, v := range hot {
		total += v
	}
	if total != 1 {
		t.Fatalf("one-hot sum = %d, want 1", total)
	}
}

func TestAggregateWellnessProbsCountedAverage(t *testing.T) {
	// Two entries: both carry L1, only the first carries L3. Both are counted,
	// so every key divides by 2.
	entries := []types.JournalEntry{
		{WellnessState: datatypes.JSON(`{"L1": 0.8, "L3": 0.2}`)},
		{WellnessState: datatypes.JSON(`{"L1": 0.6}`)},
	}
	probs := AggregateWellnessProbs(entries)
	if !almostEqual(probs["p_anxiety"], 0.7) {
		t.Fatalf("p_anxiety = %v, want 0.7", probs["p_anxiety"])
	}
	if !almostEqual(probs["p_depressed"], 0.1) {
		t.Fatalf("p_depressed = %v, want 0.1", probs["p_depressed"])
	}
	if !almostEqual(probs["p_normal"], 0) {
		t.Fatalf("p_normal = %v, want 0", probs["p_normal"])
	}
}

func TestAggregateWellnessProbsDoubleEncodedString(t *testing.T) {
	entries := []types.JournalEntry{
		{WellnessState: datatypes.JSON(`"{\"L2\": 0.5}"`)},
	}
	probs := AggregateWellnessProbs(entries)
	if !almostEqual(probs["p_normal"], 0.5) {
		t.Fatalf("p_normal = %v, want 0.5", probs["p_normal"])
	}
}

func TestAggregateWellnessProbsMalformedYieldsZeros(t *testing.T) {
	entries := []types.JournalEntry{
		{WellnessState: datatypes.JSON(`not json at all`)},
		{WellnessState: nil},
		{WellnessState: datatypes.JSON(`{"L1": "not-a-number-either!"}`)},
	}
	probs := AggregateWellnessProbs(entries)
	for _, k := range ProbKeys {
		if !almostEqual(probs[k], 0) {
			t.Fatalf("%s = %v, want 0 for malformed input", k, probs[k])
		}
	}
}

func TestAggregateWellnessProbsNumericStrings(t *testing.T) {
	entries := []types.JournalEntry{
		{WellnessState: datatypes.JSON(`{"L5": "0.4"}`)},
	}
	probs := AggregateWellnessProbs(entries)
	if !almostEqual(probs["p_stressed"], 0.4) {
		t.Fatalf("p_stressed = %v, want 0.4", probs["p_stressed"])
	}
}

func TestFlipFeelPercentagesBuckets(t *testing.T) {
	sessions := []types.FlipFeelSession{
		{MoodLabels: []*string{strPtr("In Crisis"), strPtr("Thriving"), strPtr("thriving today")}},
		{MoodLabels: []*string{strPtr("Struggling"), nil, strPtr("unrelated")}},
	}
	pcts := FlipFeelPercentages(sessions)
	if !almostEqual(pcts["flipfeel_incrisis_pct"], 0.25) {
		t.Fatalf("incrisis = %v, want 0.25", pcts["flipfeel_incrisis_pct"])
	}
	if !almostEqual(pcts["flipfeel_thriving_pct"], 0.5) {
		t.Fatalf("thriving = %v, want 0.5", pcts["flipfeel_thriving_pct"])
	}
	if !almostEqual(pcts["flipfeel_struggling_pct"], 0.25) {
		t.Fatalf("struggling = %v, want 0.25", pcts["flipfeel_struggling_pct"])
	}

	sum := 0.0
	for _, k := range FlipFeelKeys {
		sum += pcts[k]
	}
	if !almostEqual(sum, 1.0) {
		t.Fatalf("bucket sum = %v, want 1.0", sum)
	}
}

func TestFlipFeelPercentagesNoRecognizedLabels(t *testing.T) {
	sessions := []types.FlipFeelSession{
		{MoodLabels: []*string{nil, strPtr("meh")}},
	}
	pcts := FlipFeelPercentages(sessions)
	for _, k := range FlipFeelKeys {
		if !almostEqual(pcts[k], 0) {
			t.Fatalf("%s = %v, want 0", k, pcts[k])
		}
	}
}

func TestBucketOrderCrisisBeforeStruggling(t *testing.T) {
	// "crisis" wins even when the label also mentions struggling.
	bucket, ok := bucketForLabel(strPtr("struggling into crisis"))
	if !ok || bucket != "flipfeel_incrisis_pct" {
		t.Fatalf("bucket = %q, %v; want flipfeel_incrisis_pct", bucket, ok)
	}
}
