package model

// PreflightResult is the outcome of the pre-assessment screen.
// Passed is false whenever Blocks is non-empty; a blocked assessment must
// not proceed until the caller resolves every block.
type PreflightResult struct {
	Passed          bool     `json:"passed"`
	Blocks          []string `json:"blocks"`
	Escalations     []string `json:"escalations"`
	HighRiskDomains []string `json:"high_risk_domain_detected"`
	ForcedMotion    []string `json:"forced_motion_detected"`
	EpistemicWeak   []string `json:"epistemic_weakness_detected"`
	Underspecified  bool     `json:"underspecified"`
}

// Blocked reports whether any block was raised.
func (p PreflightResult) Blocked() bool {
	return len(p.Blocks) > 0
}

// FinalizationGateResult is the outcome of the post-decision gate.
// Any invalidation reason means the requested outcome was overridden to
// ESCALATE and a fresh assessment is required.
type FinalizationGateResult struct {
	Valid               bool            `json:"valid"`
	InvalidationReasons []string        `json:"invalidation_reasons"`
	Warnings            []string        `json:"warnings"`
	RequiresRerun       bool            `json:"requires_rerun"`
	RequestedOutcome    DecisionOutcome `json:"requested_outcome"`
}
