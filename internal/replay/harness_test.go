package replay

import (
	"reflect"
	"testing"

	"github.com/danielpatrickdp/adaptive-profile/internal/catalog"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// helper: neutral vector over the full Blueprint trait set.
func neutralStart() refine.Vector {
	return refine.Seed(catalog.Default().TraitIDs())
}

func answerStep(stepID, questionID string, value any) Interaction {
	return Interaction{
		StepID: stepID,
		Kind:   KindAnswer,
		UserID: "u1",
		Answer: refine.AnswerInput{UserID: "u1", QuestionID: questionID, Value: value},
	}
}

func eventStep(stepID string, signals ...refine.EventSignal) Interaction {
	return Interaction{StepID: stepID, Kind: KindEvent, UserID: "u1", Signals: signals}
}

// cappedConfig opts into a per-call score cap of 25 points.
func cappedConfig() ReplayConfig {
	config := DefaultReplayConfig()
	config.GateConfig.MaxScoreDelta = 25
	return config
}

// 1. Full commit path: state advances and the gate ran.
func TestReplay_FullCommitPath(t *testing.T) {
	start := neutralStart()
	results := Replay(catalog.Default(), start, []Interaction{answerStep("s1", "BLUEPRINT.02", 4)}, DefaultReplayConfig())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Action != "commit" {
		t.Fatalf("expected action=commit, got %s (%s)", r.Action, r.Reason)
	}
	if r.GateDecision == nil || r.GateDecision.Vetoed {
		t.Error("expected a passing GateDecision")
	}
	got, _ := r.Traits.Get("self_clarity")
	if got.Score != 60.5 {
		t.Errorf("expected self_clarity=60.5, got %v", got.Score)
	}
	if before, _ := start.Get("self_clarity"); before.Score != 50 {
		t.Errorf("start vector mutated: %v", before.Score)
	}
}

// 2. Gate rejection: with a cap configured, an oversized event delta leaves
// the vector unchanged.
func TestReplay_GateRejection(t *testing.T) {
	start := neutralStart()
	results := Replay(catalog.Default(), start, []Interaction{
		eventStep("s1", refine.EventSignal{TraitID: "curiosity", Delta: 30, Reliability: 1}),
	}, cappedConfig())

	r := results[0]
	if r.Action != "gate_reject" {
		t.Fatalf("expected gate_reject, got %s", r.Action)
	}
	if r.GateDecision == nil || len(r.GateDecision.VetoSignals) == 0 {
		t.Fatal("expected veto signals on rejection")
	}
	if !reflect.DeepEqual(r.Traits, start) {
		t.Error("expected traits unchanged after rejection")
	}
}

// 2b. Without a cap, a large event delta is applied in full.
func TestReplay_DefaultConfigAppliesLargeEvent(t *testing.T) {
	results := Replay(catalog.Default(), neutralStart(), []Interaction{
		eventStep("s1", refine.EventSignal{TraitID: "curiosity", Delta: 30, Reliability: 1}),
	}, DefaultReplayConfig())

	r := results[0]
	if r.Action != "commit" {
		t.Fatalf("expected commit, got %s (%s)", r.Action, r.Reason)
	}
	got, _ := r.Traits.Get("curiosity")
	if got.Score != 80 {
		t.Errorf("expected curiosity=80, got %v", got.Score)
	}
}

// 3. Error path: unknown question and unreadable response.
func TestReplay_ErrorSteps(t *testing.T) {
	results := Replay(catalog.Default(), neutralStart(), []Interaction{
		answerStep("s1", "BLUEPRINT.99", 2),
		answerStep("s2", "BLUEPRINT.02", 9),
		{StepID: "s3", Kind: "chat", UserID: "u1"},
	}, DefaultReplayConfig())

	for _, r := range results {
		if r.Action != "error" {
			t.Errorf("%s: expected error, got %s", r.StepID, r.Action)
		}
		if r.Reason == "" {
			t.Errorf("%s: expected a reason", r.StepID)
		}
		if r.GateDecision != nil {
			t.Errorf("%s: gate must not run on error", r.StepID)
		}
	}
}

// 4. No-op: events touching no known trait carry a warning.
func TestReplay_NoOp(t *testing.T) {
	results := Replay(catalog.Default(), neutralStart(), []Interaction{
		eventStep("s1", refine.EventSignal{TraitID: "ghost", Delta: 1, Reliability: 1}),
		eventStep("s2"),
	}, DefaultReplayConfig())

	for _, r := range results {
		if r.Action != "no_op" {
			t.Errorf("%s: expected no_op, got %s", r.StepID, r.Action)
		}
	}
	if len(results[0].Warnings) != 1 {
		t.Errorf("expected 1 warning on s1, got %d", len(results[0].Warnings))
	}
}

// 5. Steps chain: each commit starts from the previous committed vector.
func TestReplay_Chaining(t *testing.T) {
	results := Replay(catalog.Default(), neutralStart(), []Interaction{
		answerStep("s1", "BLUEPRINT.02", 4),
		answerStep("s2", "BLUEPRINT.02", 4),
	}, DefaultReplayConfig())

	got, _ := results[1].Traits.Get("self_clarity")
	if got.Score != 71 {
		t.Errorf("expected self_clarity=71 after two answers, got %v", got.Score)
	}
	if got.Confidence < 0.039 || got.Confidence > 0.041 {
		t.Errorf("expected confidence≈0.04, got %v", got.Confidence)
	}
}

// 6. Determinism: same inputs, same outputs.
func TestReplay_Deterministic(t *testing.T) {
	steps := []Interaction{
		answerStep("s1", "BLUEPRINT.02", 4),
		answerStep("s2", "BLUEPRINT.09", "A"),
		eventStep("s3", refine.EventSignal{TraitID: "curiosity", Delta: 5, Reliability: 0.8}),
		answerStep("s4", "BLUEPRINT.20", "B"),
	}

	a := Replay(catalog.Default(), neutralStart(), steps, DefaultReplayConfig())
	b := Replay(catalog.Default(), neutralStart(), steps, DefaultReplayConfig())
	if !reflect.DeepEqual(a, b) {
		t.Fatal("replay not deterministic")
	}
}

func TestSummarize(t *testing.T) {
	start := neutralStart()
	results := Replay(catalog.Default(), start, []Interaction{
		answerStep("s1", "BLUEPRINT.02", 4),
		answerStep("s2", "BLUEPRINT.99", 4),
		eventStep("s3", refine.EventSignal{TraitID: "ghost", Delta: 1, Reliability: 1}),
		eventStep("s4", refine.EventSignal{TraitID: "curiosity", Delta: 90, Reliability: 1}),
	}, cappedConfig())

	s := Summarize(results, start)
	if s.TotalSteps != 4 || s.Commits != 1 || s.Errors != 1 || s.NoOps != 1 || s.GateRejects != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.Warnings != 1 {
		t.Errorf("expected 1 warning, got %d", s.Warnings)
	}
	if !reflect.DeepEqual(s.FinalTraits, results[0].Traits) {
		t.Error("final traits should equal the last committed vector")
	}

	empty := Summarize(nil, start)
	if empty.TotalSteps != 0 || !reflect.DeepEqual(empty.FinalTraits, start) {
		t.Errorf("empty summary should keep start vector: %+v", empty)
	}
}
