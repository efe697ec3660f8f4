package refine

import "time"

// #region trait-score
// TraitScore is one entry of the persisted trait vector.
type TraitScore struct {
	TraitID    string  `json:"trait_id"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// Vector is an ordered trait vector. The engine never mutates a caller's
// Vector; every call returns a fresh copy.
type Vector []TraitScore

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Get returns the score for a trait.
func (v Vector) Get(traitID string) (TraitScore, bool) {
	if i := v.index(traitID); i >= 0 {
		return v[i], true
	}
	return TraitScore{}, false
}

func (v Vector) index(traitID string) int {
	for i := range v {
		if v[i].TraitID == traitID {
			return i
		}
	}
	return -1
}

// Seed builds a starting vector at the neutral score with zero confidence.
func Seed(traitIDs []string) Vector {
	out := make(Vector, 0, len(traitIDs))
	for _, id := range traitIDs {
		out = append(out, TraitScore{TraitID: id, Score: NeutralScore})
	}
	return out
}

// #endregion trait-score

// #region inputs
// AnswerInput is a discrete Blueprint answer routed through the catalog.
type AnswerInput struct {
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	Value      any       `json:"value"`
	AnsweredAt time.Time `json:"answered_at,omitempty"`
}

// EventSignal is a precomputed behavioral delta for one trait.
type EventSignal struct {
	TraitID     string  `json:"trait_id"`
	Delta       float64 `json:"delta"`
	Reliability float64 `json:"reliability"`
}

// #endregion inputs

// #region config
// Config holds the update constants.
type Config struct {
	LearningRate         float64 // damping on answer deltas (default 0.15)
	AnswerReliability    float64 // trust in explicit answers (default 0.7)
	AnswerConfidenceStep float64 // confidence gain per touched trait, answers (default 0.02)
	EventConfidenceStep  float64 // confidence gain per touched trait, events (default 0.01)
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		LearningRate:         0.15,
		AnswerReliability:    0.7,
		AnswerConfidenceStep: 0.02,
		EventConfidenceStep:  0.01,
	}
}

const (
	MinScore     = 0.0
	MaxScore     = 100.0
	NeutralScore = 50.0
	scoreScale   = 100.0
)

// #endregion config

// #region result
// Source tags where evidence came from.
type Source string

const (
	SourceAnswer Source = "answer"
	SourceEvent  Source = "event"
)

// Warning is a recoverable problem: the mapping was skipped, the rest applied.
type Warning struct {
	TraitID    string `json:"trait_id"`
	QuestionID string `json:"question_id,omitempty"`
	Message    string `json:"message"`
}

// Decision records what the refinement did.
type Decision struct {
	Action string // "commit" | "no_op"
	Reason string
}

// TraitDelta records the applied change to one trait.
type TraitDelta struct {
	TraitID    string  `json:"trait_id"`
	Raw        float64 `json:"raw"`
	Applied    float64 `json:"applied"`
	Confidence float64 `json:"confidence"`
}

// Metrics summarises a refinement call.
type Metrics struct {
	Source        Source
	TraitsTouched []string
	Deltas        []TraitDelta
	DeltaNorm     float64
}

// Result bundles everything returned by a refinement call.
type Result struct {
	Traits   Vector
	Decision Decision
	Metrics  Metrics
	Warnings []Warning
}

// #endregion result
