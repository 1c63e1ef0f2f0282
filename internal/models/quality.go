package models

// QualityReport is the rubric result for a piece of post text
type QualityReport struct {
	Score            int      `json:"score"` // 0-100
	Issues           []string `json:"issues"`
	HasBusinessValue bool     `json:"has_business_value"`
	HasMetrics       bool     `json:"has_metrics"`
	HasEngagement    bool     `json:"has_engagement"`
	HasCTA           bool     `json:"has_cta"`
}

// Passes reports whether the score meets min. A zero min always passes.
func (q *QualityReport) Passes(min int) bool {
	if min <= 0 {
		return true
	}
	return q.Score >= min
}
