package replay

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/adaptive-profile/internal/catalog"
	"github.com/danielpatrickdp/adaptive-profile/internal/gate"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// #region types
// Step kinds.
const (
	KindAnswer = "answer"
	KindEvent  = "event"
)

// Interaction is a single recorded answer or behavioral event.
type Interaction struct {
	StepID  string
	Kind    string
	UserID  string
	Answer  refine.AnswerInput
	Signals []refine.EventSignal
}

// ReplayConfig bundles refinement and gate configs for a replay run.
type ReplayConfig struct {
	RefineConfig refine.Config
	GateConfig   gate.GateConfig
}

// DefaultReplayConfig returns defaults for both pipeline stages.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		RefineConfig: refine.DefaultConfig(),
		GateConfig:   gate.DefaultGateConfig(),
	}
}

// ReplayResult captures the outcome of replaying one step.
type ReplayResult struct {
	StepID string
	Action string // "commit" | "gate_reject" | "error" | "no_op"
	Reason string

	Metrics      refine.Metrics
	Warnings     []refine.Warning
	GateDecision *gate.GateDecision // nil unless the gate ran

	// Traits after this step; equals the previous vector unless committed.
	Traits refine.Vector
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalSteps  int
	Commits     int
	GateRejects int
	Errors      int
	NoOps       int
	Warnings    int
	FinalTraits refine.Vector
}

// #endregion types

// #region replay
// Replay applies interactions in order: refine → gate → commit/reject.
// It runs in memory and is deterministic for a given start vector and step list.
func Replay(cat *catalog.Catalog, start refine.Vector, interactions []Interaction, config ReplayConfig) []ReplayResult {
	engine := refine.NewEngine(cat, config.RefineConfig, zerolog.Nop())
	gateInst := gate.NewGate(config.GateConfig)

	current := start.Clone()
	results := make([]ReplayResult, 0, len(interactions))

	for _, inter := range interactions {
		var res refine.Result
		switch inter.Kind {
		case KindAnswer:
			r, err := engine.FromAnswer(inter.Answer, current)
			if err != nil {
				results = append(results, ReplayResult{
					StepID: inter.StepID,
					Action: "error",
					Reason: err.Error(),
					Traits: current,
				})
				continue
			}
			res = r
		case KindEvent:
			res = engine.FromEvent(inter.UserID, inter.Signals, current)
		default:
			results = append(results, ReplayResult{
				StepID: inter.StepID,
				Action: "error",
				Reason: fmt.Sprintf("unknown step kind %q", inter.Kind),
				Traits: current,
			})
			continue
		}

		if res.Decision.Action == "no_op" {
			results = append(results, ReplayResult{
				StepID:   inter.StepID,
				Action:   "no_op",
				Reason:   res.Decision.Reason,
				Metrics:  res.Metrics,
				Warnings: res.Warnings,
				Traits:   current,
			})
			continue
		}

		decision := gateInst.Evaluate(current, res.Traits)
		if decision.Action == "reject" {
			results = append(results, ReplayResult{
				StepID:       inter.StepID,
				Action:       "gate_reject",
				Reason:       decision.Reason,
				Metrics:      res.Metrics,
				Warnings:     res.Warnings,
				GateDecision: &decision,
				Traits:       current,
			})
			continue
		}

		current = res.Traits
		results = append(results, ReplayResult{
			StepID:       inter.StepID,
			Action:       "commit",
			Reason:       res.Decision.Reason,
			Metrics:      res.Metrics,
			Warnings:     res.Warnings,
			GateDecision: &decision,
			Traits:       current,
		})
	}

	return results
}

// Summarize computes aggregate stats. The final vector is the last step's, or
// start when there were no steps.
func Summarize(results []ReplayResult, start refine.Vector) ReplaySummary {
	s := ReplaySummary{
		TotalSteps:  len(results),
		FinalTraits: start,
	}
	for _, r := range results {
		switch r.Action {
		case "commit":
			s.Commits++
		case "gate_reject":
			s.GateRejects++
		case "error":
			s.Errors++
		case "no_op":
			s.NoOps++
		}
		s.Warnings += len(r.Warnings)
	}
	if len(results) > 0 {
		s.FinalTraits = results[len(results)-1].Traits
	}
	return s
}

// #endregion replay
