package models

// Verdict is the categorical outcome of one scoring pass
type Verdict string

const (
	VerdictPassed           Verdict = "passed"
	VerdictBlockedBot       Verdict = "blocked_bot_detected"
	VerdictBlockedRateLimit Verdict = "blocked_rate_limit"
)

// Layer names used as keys in AnalysisResult.Layers
const (
	LayerTiming       = "timing"
	LayerHeadless     = "headless"
	LayerFingerprint  = "fingerprint"
	LayerRateLimiting = "rate_limiting"
	LayerIPReputation = "ip_reputation"
)

// LayerDetail is the fixed-shape contribution of one analyzer layer:
// the score delta it added, the flags it raised, an optional status,
// and layer-specific diagnostic data.
type LayerDetail struct {
	Score  int            `json:"score_delta"`
	Flags  []string       `json:"flags"`
	Status string         `json:"status,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// HasFlag reports whether the layer raised the named flag
func (d LayerDetail) HasFlag(name string) bool {
	for _, f := range d.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// AnalysisResult is the per-request composite verdict. It is ephemeral;
// TotalScore and Blocked are folded into the persisted LoginAttempt.
type AnalysisResult struct {
	TotalScore int                    `json:"total_score"`
	Verdict    Verdict                `json:"verdict"`
	Blocked    bool                   `json:"blocked"`
	Layers     map[string]LayerDetail `json:"layers"`
}
