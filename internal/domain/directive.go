package domain

// StrategyDirective is the structured instruction produced by an external
// planning collaborator. Fields the planner may omit are pointers or
// omitempty-tagged so the translator can tell "absent" from "empty".
type StrategyDirective struct {
	RiskPolicy RiskPolicy `json:"risk_policy"`
	Strategy   Strategy   `json:"strategy"`
}

// RiskPolicy captures the planner's risk stance for the current cycle.
type RiskPolicy struct {
	// RiskAppetite one of "conservative", "balanced", "aggressive".
	RiskAppetite string `json:"risk_appetite"`
	// MinRating the lowest credit rating the planner will trade under.
	MinRating string `json:"min_rating,omitempty"`
	// MaxLtv maximum loan-to-value the planner tolerates.
	MaxLtv float64 `json:"max_ltv,omitempty"`
	// SectorAdvice free-text guidance about sector exposure.
	SectorAdvice string `json:"sector_advice,omitempty"`
}

// Strategy is the actionable half of a directive.
type Strategy struct {
	// TargetSectors symbols the planner wants exposure to, in priority order.
	TargetSectors []string `json:"target_sectors"`
	// ActionDirective free-text instruction, e.g. "accumulate VIRTUAL on dips".
	ActionDirective string `json:"action_directive"`
	// ArbitrageOpportunity optional note about a spotted spread.
	ArbitrageOpportunity *string `json:"arbitrage_opportunity,omitempty"`
	// AuditSummary provenance trail of the planning run.
	AuditSummary string `json:"audit_summary,omitempty"`
}
