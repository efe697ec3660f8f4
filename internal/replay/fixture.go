package replay

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/adaptive-profile/internal/gate"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	StartTraits     refine.Vector           `json:"start_traits"`
	Config          *FixtureConfig          `json:"config,omitempty"`
	Steps           []FixtureStep           `json:"steps"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
	ExpectedFinal   []FixtureExpectedScore  `json:"expected_final"`
}

// FixtureStep mirrors Interaction with JSON tags.
type FixtureStep struct {
	StepID     string               `json:"step_id"`
	Kind       string               `json:"kind"`
	UserID     string               `json:"user_id"`
	QuestionID string               `json:"question_id,omitempty"`
	Value      any                  `json:"value,omitempty"`
	Signals    []refine.EventSignal `json:"signals,omitempty"`
}

// FixtureExpectedResult captures the expected action per step.
type FixtureExpectedResult struct {
	StepID string `json:"step_id"`
	Action string `json:"action"`
}

// FixtureExpectedScore pins a trait's final score and confidence.
type FixtureExpectedScore struct {
	TraitID    string  `json:"trait_id"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// FixtureConfig overrides the default pipeline configuration.
type FixtureConfig struct {
	LearningRate         float64 `json:"learning_rate"`
	AnswerReliability    float64 `json:"answer_reliability"`
	AnswerConfidenceStep float64 `json:"answer_confidence_step"`
	EventConfidenceStep  float64 `json:"event_confidence_step"`
	MaxScoreDelta        float64 `json:"max_score_delta"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToInteraction converts a FixtureStep to a domain Interaction.
func (fs *FixtureStep) ToInteraction() Interaction {
	return Interaction{
		StepID: fs.StepID,
		Kind:   fs.Kind,
		UserID: fs.UserID,
		Answer: refine.AnswerInput{
			UserID:     fs.UserID,
			QuestionID: fs.QuestionID,
			Value:      fs.Value,
		},
		Signals: fs.Signals,
	}
}

// Interactions converts every step.
func (f *Fixture) Interactions() []Interaction {
	out := make([]Interaction, 0, len(f.Steps))
	for i := range f.Steps {
		out = append(out, f.Steps[i].ToInteraction())
	}
	return out
}

// ReplayConfig returns the fixture's config, or defaults when absent.
func (f *Fixture) ReplayConfig() ReplayConfig {
	if f.Config == nil {
		return DefaultReplayConfig()
	}
	return ReplayConfig{
		RefineConfig: refine.Config{
			LearningRate:         f.Config.LearningRate,
			AnswerReliability:    f.Config.AnswerReliability,
			AnswerConfidenceStep: f.Config.AnswerConfidenceStep,
			EventConfidenceStep:  f.Config.EventConfidenceStep,
		},
		GateConfig: gate.GateConfig{MaxScoreDelta: f.Config.MaxScoreDelta},
	}
}

// #endregion fixture-loader

// #region fixture-check

// Mismatch describes one deviation from a fixture's expectations.
type Mismatch struct {
	Subject  string
	Expected string
	Got      string
}

// Check compares replay results to the fixture's expectations. Scores match
// within tolerance.
func (f *Fixture) Check(results []ReplayResult, tolerance float64) []Mismatch {
	var out []Mismatch

	byStep := make(map[string]ReplayResult, len(results))
	for _, r := range results {
		byStep[r.StepID] = r
	}
	for _, exp := range f.ExpectedResults {
		r, ok := byStep[exp.StepID]
		switch {
		case !ok:
			out = append(out, Mismatch{Subject: exp.StepID, Expected: exp.Action, Got: "missing"})
		case r.Action != exp.Action:
			out = append(out, Mismatch{Subject: exp.StepID, Expected: exp.Action, Got: r.Action})
		}
	}

	final := Summarize(results, f.StartTraits).FinalTraits
	for _, exp := range f.ExpectedFinal {
		got, ok := final.Get(exp.TraitID)
		if !ok {
			out = append(out, Mismatch{Subject: exp.TraitID, Expected: fmt.Sprintf("%.4f", exp.Score), Got: "missing"})
			continue
		}
		if diff(got.Score, exp.Score) > tolerance || diff(got.Confidence, exp.Confidence) > tolerance {
			out = append(out, Mismatch{
				Subject:  exp.TraitID,
				Expected: fmt.Sprintf("score=%.4f confidence=%.4f", exp.Score, exp.Confidence),
				Got:      fmt.Sprintf("score=%.4f confidence=%.4f", got.Score, got.Confidence),
			})
		}
	}
	return out
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// #endregion fixture-check
