package classify

import "math"

// MatchResult is the outcome of comparing a region against one template.
type MatchResult struct {
	Ratio    float64 // Percentage of matches surviving the ratio test
	Rotation float64 // Absolute rotation in degrees
}

// Scored is a MatchResult tagged with its template name.
type Scored struct {
	Name string
	MatchResult
}

// Result is the classification of a reference region. An empty Label means
// no template matched with confidence; an empty Size means no size marker.
type Result struct {
	Label string
	Size  string
}

// SelectLabel picks the label among scores according to p.Rule.
//
// Under RuleJoint the initial best ratio is 0 and the initial best rotation
// is p.DefaultRotation, so a template with ratio 0 is never selected.
//
// Under RuleRatioFirst every template whose ratio lies within TieEpsilon of
// the highest ratio competes, and the lowest rotation among them wins.
func SelectLabel(scores []Scored, p Params) string {
	if p.Rule == RuleRatioFirst {
		return selectRatioFirst(scores, p.TieEpsilon)
	}

	bestRatio := 0.0
	bestRotation := p.DefaultRotation
	best := ""
	for _, s := range scores {
		if s.Ratio > bestRatio && s.Rotation < bestRotation {
			bestRatio = s.Ratio
			bestRotation = s.Rotation
			best = s.Name
		}
	}
	return best
}

func selectRatioFirst(scores []Scored, eps float64) string {
	maxRatio := 0.0
	for _, s := range scores {
		maxRatio = math.Max(maxRatio, s.Ratio)
	}
	if maxRatio <= 0 {
		return ""
	}

	best := -1
	for i, s := range scores {
		if s.Ratio <= 0 || maxRatio-s.Ratio > eps {
			continue
		}
		if best < 0 || s.Rotation < scores[best].Rotation ||
			(s.Rotation == scores[best].Rotation && s.Ratio > scores[best].Ratio) {
			best = i
		}
	}
	return scores[best].Name
}

// SelectSize returns the size with the highest ratio, or "" when that ratio
// is below floor.
func SelectSize(scores []Scored, floor float64) string {
	bestRatio := 0.0
	best := ""
	for _, s := range scores {
		if s.Ratio > bestRatio {
			bestRatio = s.Ratio
			best = s.Name
		}
	}
	if bestRatio < floor {
		return ""
	}
	return best
}
