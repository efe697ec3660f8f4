package replay

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/adaptive-profile/internal/provenance"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// #region from-provenance

// Recorded is a step list rebuilt from the decision log, with the action the
// live service took for each step.
type Recorded struct {
	Interactions []Interaction
	Expected     []FixtureExpectedResult
	Skipped      int  // layer-only answers, which never touch traits
	RolledBack   bool // the live chain was reset; final vectors will differ
}

// FromProvenance converts one user's log (oldest first) into replayable steps.
func FromProvenance(entries []provenance.Entry) (Recorded, error) {
	var rec Recorded
	for i, e := range entries {
		stepID := fmt.Sprintf("entry-%d", i+1)

		switch e.TriggerType {
		case "rollback":
			rec.RolledBack = true
			continue
		case string(refine.SourceAnswer):
			if e.Decision == "recorded" {
				rec.Skipped++
				continue
			}
			var in refine.AnswerInput
			if err := json.Unmarshal([]byte(e.InputJSON), &in); err != nil {
				return Recorded{}, fmt.Errorf("%s: decode answer input: %w", stepID, err)
			}
			rec.Interactions = append(rec.Interactions, Interaction{
				StepID: stepID,
				Kind:   KindAnswer,
				UserID: e.UserID,
				Answer: in,
			})
		case string(refine.SourceEvent):
			var signals []refine.EventSignal
			if err := json.Unmarshal([]byte(e.InputJSON), &signals); err != nil {
				return Recorded{}, fmt.Errorf("%s: decode event input: %w", stepID, err)
			}
			rec.Interactions = append(rec.Interactions, Interaction{
				StepID:  stepID,
				Kind:    KindEvent,
				UserID:  e.UserID,
				Signals: signals,
			})
		default:
			return Recorded{}, fmt.Errorf("%s: unknown trigger type %q", stepID, e.TriggerType)
		}

		rec.Expected = append(rec.Expected, FixtureExpectedResult{
			StepID: stepID,
			Action: replayAction(e.Decision),
		})
	}
	return rec, nil
}

// replayAction maps a logged decision onto the replay vocabulary.
func replayAction(decision string) string {
	if decision == "reject" {
		return "gate_reject"
	}
	return decision
}

// #endregion from-provenance
