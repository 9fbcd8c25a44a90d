package engine

import "math"

// Rating tiers by overall percentage. Lower bounds are closed: a score of
// exactly 80 is Governance Ready.
const (
	RatingReady    = "Governance Ready"
	RatingPartial  = "Partially Governed"
	RatingExposed  = "Exposed"
	RatingCritical = "Critical Exposure"
)

// CIThreshold is the pass/fail gate consumed by CI wrappers: a scan below
// 70% is a failing build. The threshold is part of the engine's output
// contract, not a renderer concern.
const CIThreshold = 70.0

// CategoryScore is one category's awarded points against its pool.
type CategoryScore struct {
	Category Category `json:"category"`
	Awarded  float64  `json:"awarded"`
	Max      int      `json:"max"`
}

// Summary counts findings by status.
type Summary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Critical int `json:"critical"`
}

// Result is the complete outcome of one scan. It is constructed once per
// scan and never mutated afterward; it carries no timestamps so that two
// scans of an unchanged project serialize byte-identically.
type Result struct {
	Project    string          `json:"project"`
	Framework  string          `json:"framework"`
	Categories []CategoryScore `json:"categories"`
	Score      float64         `json:"score"`
	MaxScore   int             `json:"max_score"`
	Percent    float64         `json:"pct"`
	Rating     string          `json:"rating"`
	Summary    Summary         `json:"summary"`
	Findings   []Finding       `json:"findings"`
}

// CIPass reports whether the scan clears the CI gate.
func (r *Result) CIPass() bool {
	return r.Percent >= CIThreshold
}

// RatingFor maps an overall percentage to its tier.
func RatingFor(pct float64) string {
	switch {
	case pct >= 80:
		return RatingReady
	case pct >= 60:
		return RatingPartial
	case pct >= 40:
		return RatingExposed
	default:
		return RatingCritical
	}
}

// round1 keeps scores at one-decimal precision so the 69.9 / 70.0 gate
// boundary is well-defined.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
