package model

// Verdict is the result of evaluating a URL against the safety heuristics.
// A Verdict is produced once per evaluation and never cached.
type Verdict struct {
	// Safe reports whether navigation to the URL is allowed.
	Safe bool `json:"safe"`

	// Score is the accumulated risk score. High-risk signals add a large
	// penalty so an unsafe verdict always scores above any safe one.
	Score int `json:"score"`

	// Reasons lists human-readable explanations. High-risk reasons come
	// first, low-weight warnings after.
	Reasons []string `json:"reasons,omitempty"`

	// Domain is the registrable domain (eTLD+1) of the host when it could
	// be determined. Empty for IP hosts and malformed input.
	Domain string `json:"domain,omitempty"`
}

// HasWarnings reports whether the verdict is safe but still carries reasons.
func (v Verdict) HasWarnings() bool {
	return v.Safe && len(v.Reasons) > 0
}
