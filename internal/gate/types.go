package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoScoreBounds      VetoType = "score_out_of_bounds"
	VetoConfidenceBounds VetoType = "confidence_out_of_bounds"
	VetoConfidenceDrop   VetoType = "confidence_decreased"
	VetoTraitSet         VetoType = "trait_set_changed"
	VetoDeltaCap         VetoType = "delta_exceeds_cap"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type    VetoType
	TraitID string
	Reason  string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds thresholds for gate decisions.
type GateConfig struct {
	MaxScoreDelta float64 // largest |Δscore| one call may apply to one trait; 0 disables
}

// DefaultGateConfig returns defaults. The per-call delta cap is off; set
// MaxScoreDelta to opt in.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MaxScoreDelta: 0,
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string // "commit" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal
}

// #endregion gate-decision
