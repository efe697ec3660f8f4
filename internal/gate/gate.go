package gate

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// #region gate
// Gate checks a refined vector against its predecessor before it is
// persisted. The refinement engine already upholds these bounds; the gate
// guards the store against vectors that arrived from anywhere else.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate compares old and proposed trait by trait. Any veto rejects.
func (g *Gate) Evaluate(old, proposed refine.Vector) GateDecision {
	var vetoes []VetoSignal

	if len(old) != len(proposed) {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoTraitSet,
			Reason: fmt.Sprintf("trait count changed from %d to %d", len(old), len(proposed)),
		})
	}

	for _, p := range proposed {
		if math.IsNaN(p.Score) || p.Score < refine.MinScore || p.Score > refine.MaxScore {
			vetoes = append(vetoes, VetoSignal{
				Type:    VetoScoreBounds,
				TraitID: p.TraitID,
				Reason:  fmt.Sprintf("score %.4f outside [0, 100]", p.Score),
			})
		}
		if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
			vetoes = append(vetoes, VetoSignal{
				Type:    VetoConfidenceBounds,
				TraitID: p.TraitID,
				Reason:  fmt.Sprintf("confidence %.4f outside [0, 1]", p.Confidence),
			})
		}

		prev, ok := old.Get(p.TraitID)
		if !ok {
			vetoes = append(vetoes, VetoSignal{
				Type:    VetoTraitSet,
				TraitID: p.TraitID,
				Reason:  "trait not present in previous vector",
			})
			continue
		}
		if p.Confidence < prev.Confidence {
			vetoes = append(vetoes, VetoSignal{
				Type:    VetoConfidenceDrop,
				TraitID: p.TraitID,
				Reason:  fmt.Sprintf("confidence fell from %.4f to %.4f", prev.Confidence, p.Confidence),
			})
		}
		if d := math.Abs(p.Score - prev.Score); g.config.MaxScoreDelta > 0 && d > g.config.MaxScoreDelta {
			vetoes = append(vetoes, VetoSignal{
				Type:    VetoDeltaCap,
				TraitID: p.TraitID,
				Reason:  fmt.Sprintf("score moved %.4f, cap %.4f", d, g.config.MaxScoreDelta),
			})
		}
	}

	if len(vetoes) > 0 {
		return GateDecision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}
	return GateDecision{Action: "commit", Reason: "passed gate"}
}

// #endregion gate
