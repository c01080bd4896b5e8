package features

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/brightpath/wellbeing-worker/internal/types"
)

// Emotions is the fixed one-hot universe for mood check-in selections. The
// order matches the model's training columns.
var Emotions = []string{
	"Depressed", "Sad", "Exhausted", "Hopeless",
	"Anxious", "Angry", "Stressed", "Restless",
	"Calm", "Relaxed", "Peaceful", "Content",
	"Happy", "Energized", "Excited", "Motivated",
}

// wellnessLabels maps journal L1..L5 scores to probability feature names.
var wellnessLabels = []string{"L1", "L2", "L3", "L4", "L5"}

var labelToProbKey = map[string]string{
	"L1": "p_anxiety",
	"L2": "p_normal",
	"L3": "p_depressed",
	"L4": "p_suicidal",
	"L5": "p_stressed",
}

// FlipFeelKeys are the four session-severity bucket features.
var FlipFeelKeys = []string{
	"flipfeel_incrisis_pct",
	"flipfeel_struggling_pct",
	"flipfeel_thriving_pct",
	"flipfeel_excelling_pct",
}

// NormalizeMood canonicalizes a raw mood selection: trimmed, first rune
// uppercased, the rest lowercased. Nil and empty values are rejected. Raw
// survey IDs must be resolved to label strings before they reach this layer.
func NormalizeMood(raw *string) (string, bool) {
	if raw == nil {
		return "", false
	}
	name := strings.TrimSpace(*raw)
	if name == "" {
		return "", false
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:]), true
}

// OneHotMoods encodes up to three mood selections against the fixed emotion
// universe. Duplicates and unrecognized selections are silently ignored.
func OneHotMoods(selected []*string) map[string]int {
	hot := make(map[string]int, len(Emotions))
	for _, e := range Emotions {
		hot[e] = 0
	}
	for _, raw := range selected {
		name, ok := NormalizeMood(raw)
		if !ok {
			continue
		}
		if _, known := hot[name]; known {
			hot[name] = 1
		}
	}
	return hot
}

// decodeWellnessState tolerates both a JSON object payload and a
// double-encoded JSON string. Anything unparseable yields an empty map.
func decodeWellnessState(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var ws map[string]any
	if err := json.Unmarshal(raw, &ws); err == nil {
		return ws
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &ws); err == nil {
			return ws
		}
	}
	return map[string]any{}
}

// asNumber converts a decoded JSON value to a float where possible. Numeric
// strings and booleans count as numbers, mirroring the original training
// pipeline's coercion.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AggregateWellnessProbs averages journal L1..L5 scores into the five p_*
// probability features. An entry is counted once if any of its five labels is
// numeric, and every label's sum is divided by that same count — this is a
// deliberate simplification carried over from the training pipeline, not a
// per-key average. With no counted entries every feature is 0.
func AggregateWellnessProbs(entries []types.JournalEntry) map[string]float64 {
	totals := make(map[string]float64, len(wellnessLabels))
	counted := 0

	for _, entry := range entries {
		ws := decodeWellnessState(entry.WellnessState)
		anyNum := false
		for _, k := range wellnessLabels {
			v, present := ws[k]
			if !present || v == nil {
				continue
			}
			if f, ok := asNumber(v); ok {
				totals[k] += f
				anyNum = true
			}
		}
		if anyNum {
			counted++
		}
	}

	probs := make(map[string]float64, len(wellnessLabels))
	for _, k := range wellnessLabels {
		if counted > 0 {
			probs[labelToProbKey[k]] = totals[k] / float64(counted)
		} else {
			probs[labelToProbKey[k]] = 0
		}
	}
	return probs
}

// bucketForLabel maps a raw flip-and-feel mood label to its severity bucket.
// Substring matching, first match wins in crisis → excelling → thriving →
// struggling order; unmatched labels are dropped.
func bucketForLabel(raw *string) (string, bool) {
	if raw == nil {
		return "", false
	}
	label := strings.ToLower(strings.TrimSpace(*raw))
	switch {
	case label == "":
		return "", false
	case strings.Contains(label, "crisis"):
		return "flipfeel_incrisis_pct", true
	case strings.Contains(label, "excelling"):
		return "flipfeel_excelling_pct", true
	case strings.Contains(label, "thriv"):
		return "flipfeel_thriving_pct", true
	case strings.Contains(label, "struggl"):
		return "flipfeel_struggling_pct", true
	}
	return "", false
}

// FlipFeelPercentages computes the share of recognized session mood labels
// falling into each severity bucket. All zeros when no label is recognized.
func FlipFeelPercentages(sessions []types.FlipFeelSession) map[string]float64 {
	counts := make(map[string]int, len(FlipFeelKeys))
	total := 0
	for _, session := range sessions {
		for _, raw := range session.MoodLabels {
			bucket, ok := bucketForLabel(raw)
			if !ok {
				continue
			}
			counts[bucket]++
			total++
		}
	}

	pcts := make(map[string]float64, len(FlipFeelKeys))
	for _, k := range FlipFeelKeys {
		if total > 0 {
			pcts[k] = float64(counts[k]) / float64(total)
		} else {
			pcts[k] = 0
		}
	}
	return pcts
}
