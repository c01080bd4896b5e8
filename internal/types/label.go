package types

import (
	"fmt"
	"strings"
)

// Label is the closed set of wellbeing classifications produced by the model
// and consumed by the weekly rule engine.
type Label string

const (
	LabelExcelling  Label = "Excelling"
	LabelThriving   Label = "Thriving"
	LabelStruggling Label = "Struggling"
	LabelInCrisis   Label = "InCrisis"
)

// Labels lists every valid classification label.
func Labels() []Label {
	return []Label{LabelExcelling, LabelThriving, LabelStruggling, LabelInCrisis}
}

// ParseLabel resolves a raw string to a canonical Label. Matching ignores
// case, surrounding whitespace and -/_ separators ("in_crisis", "InCrisis"
// and "incrisis" all resolve to LabelInCrisis). Unrecognized input is an
// error rather than a silent default.
func ParseLabel(raw string) (Label, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	for _, l := range Labels() {
		if strings.ToLower(string(l)) == normalized {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown classification label: %q", raw)
}

// severityOrder ranks labels from best to worst for trend detection.
var severityOrder = map[Label]int{
	LabelExcelling:  0,
	LabelThriving:   1,
	LabelStruggling: 2,
	LabelInCrisis:   3,
}

// Severity returns the label's position in the severity order
// (Excelling=0 .. InCrisis=3). Lookup is case-insensitive.
func (l Label) Severity() (int, bool) {
	if sev, ok := severityOrder[l]; ok {
		return sev, true
	}
	parsed, err := ParseLabel(string(l))
	if err != nil {
		return 0, false
	}
	return severityOrder[parsed], true
}

// Equals reports whether the label matches other ignoring case.
func (l Label) Equals(other Label) bool {
	return strings.EqualFold(string(l), string(other))
}
