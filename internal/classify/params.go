package classify

// LabelRule decides how rotation takes part in label selection.
type LabelRule int

const (
	// RuleJoint replaces the best label only when the ratio is strictly
	// higher AND the rotation strictly lower than the current best.
	RuleJoint LabelRule = iota
	// RuleRatioFirst ranks by ratio and uses rotation only to break ties
	// between ratios within TieEpsilon of each other.
	RuleRatioFirst
)

func (r LabelRule) String() string {
	switch r {
	case RuleJoint:
		return "joint"
	case RuleRatioFirst:
		return "ratio-first"
	default:
		return "unknown"
	}
}

// ParseLabelRule maps a configuration string to a rule. Unknown values
// select RuleJoint.
func ParseLabelRule(s string) LabelRule {
	if s == "ratio-first" {
		return RuleRatioFirst
	}
	return RuleJoint
}

// Params holds keypoint matching and selection parameters.
type Params struct {
	// ORB detector
	MaxFeatures   int
	ScaleFactor   float32
	Levels        int
	EdgeThreshold int
	PatchSize     int
	FastThreshold int

	LoweRatio float64 // Keep a match when nearest < LoweRatio * second nearest

	MinHomographyMatches int     // Matches needed before a homography is fitted
	RansacThreshold      float64 // Reprojection threshold in pixels
	RansacIterations     int
	RansacConfidence     float64
	DefaultRotation      float64 // Rotation reported when no homography is available

	SizeFloor  float64 // Best size ratio below this means no size marker
	Rule       LabelRule
	TieEpsilon float64 // Ratio band treated as a tie under RuleRatioFirst
}

// DefaultParams returns the parameters used for form icons.
func DefaultParams() Params {
	return Params{
		MaxFeatures:   2000,
		ScaleFactor:   1.2,
		Levels:        8,
		EdgeThreshold: 31,
		PatchSize:     31,
		FastThreshold: 20,

		LoweRatio: 0.75,

		MinHomographyMatches: 5,
		RansacThreshold:      3.0,
		RansacIterations:     2000,
		RansacConfidence:     0.995,
		DefaultRotation:      90,

		SizeFloor:  20,
		Rule:       RuleJoint,
		TieEpsilon: 1.0,
	}
}

// WithRule returns a copy of params using a different label rule.
func (p Params) WithRule(rule LabelRule) Params {
	p.Rule = rule
	return p
}

// WithSizeFloor returns a copy of params with a different size confidence floor.
func (p Params) WithSizeFloor(floor float64) Params {
	p.SizeFloor = floor
	return p
}
