package refine

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/adaptive-profile/internal/catalog"
)

// #region engine
// Engine applies answers and behavioral events to trait vectors. It keeps no
// state between calls; the caller persists the returned vector and must
// serialize calls per user.
type Engine struct {
	catalog *catalog.Catalog
	config  Config
	log     zerolog.Logger
}

// NewEngine creates an engine. Use zerolog.Nop() to silence warnings; they
// are always returned in Result.Warnings as well.
func NewEngine(cat *catalog.Catalog, config Config, log zerolog.Logger) *Engine {
	return &Engine{catalog: cat, config: config, log: log}
}

// Config returns the active constants.
func (e *Engine) Config() Config {
	return e.config
}

// Catalog returns the question catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// #endregion engine

// #region from-answer
// FromAnswer refines the vector from one catalog answer. Unknown questions
// and unreadable responses return an error and the zero Result; current is
// never touched.
func (e *Engine) FromAnswer(input AnswerInput, current Vector) (Result, error) {
	q, err := e.catalog.Lookup(input.QuestionID)
	if err != nil {
		return Result{}, err
	}
	normalized, err := catalog.Normalize(q.Type, input.Value)
	if err != nil {
		return Result{}, fmt.Errorf("question %s: %w", q.ID, err)
	}

	vec := current.Clone()
	metrics := Metrics{Source: SourceAnswer}
	var warnings []Warning

	for _, m := range q.MapsTo {
		i := vec.index(m.TraitID)
		if i < 0 {
			warnings = append(warnings, e.warnMissing(input.UserID, q.ID, m.TraitID))
			continue
		}
		raw := m.Weight * normalized * e.config.LearningRate * scoreScale * e.config.AnswerReliability
		metrics.add(apply(&vec[i], raw, e.config.AnswerConfidenceStep))
	}

	return finish(vec, metrics, warnings), nil
}

// #endregion from-answer

// #region from-event
// FromEvent refines the vector from precomputed behavioral deltas. Reliability
// is clamped to [0, 1]. Events carry less trust than answers, so confidence
// grows by the smaller step.
func (e *Engine) FromEvent(userID string, signals []EventSignal, current Vector) Result {
	vec := current.Clone()
	metrics := Metrics{Source: SourceEvent}
	var warnings []Warning

	for _, s := range signals {
		i := vec.index(s.TraitID)
		if i < 0 {
			warnings = append(warnings, e.warnMissing(userID, "", s.TraitID))
			continue
		}
		if !finite(s.Delta) || !finite(s.Reliability) {
			warnings = append(warnings, Warning{TraitID: s.TraitID, Message: "non-finite delta or reliability"})
			continue
		}
		raw := s.Delta * clamp(s.Reliability, 0, 1)
		metrics.add(apply(&vec[i], raw, e.config.EventConfidenceStep))
	}

	return finish(vec, metrics, warnings)
}

// #endregion from-event

// #region helpers
// apply adds raw to the score, clamps, and bumps confidence. Confidence only
// ever rises.
func apply(ts *TraitScore, raw, confidenceStep float64) TraitDelta {
	before := ts.Score
	ts.Score = clamp(ts.Score+raw, MinScore, MaxScore)
	ts.Confidence = clamp(ts.Confidence+math.Max(confidenceStep, 0), 0, 1)
	return TraitDelta{
		TraitID:    ts.TraitID,
		Raw:        raw,
		Applied:    ts.Score - before,
		Confidence: ts.Confidence,
	}
}

func (m *Metrics) add(d TraitDelta) {
	m.Deltas = append(m.Deltas, d)
	for _, id := range m.TraitsTouched {
		if id == d.TraitID {
			return
		}
	}
	m.TraitsTouched = append(m.TraitsTouched, d.TraitID)
}

func finish(vec Vector, metrics Metrics, warnings []Warning) Result {
	var sumSq float64
	for _, d := range metrics.Deltas {
		sumSq += d.Applied * d.Applied
	}
	metrics.DeltaNorm = math.Sqrt(sumSq)

	decision := Decision{Action: "no_op", Reason: "no known trait touched"}
	if len(metrics.TraitsTouched) > 0 {
		decision = Decision{
			Action: "commit",
			Reason: fmt.Sprintf("%s touched %v, delta norm: %.4f", metrics.Source, metrics.TraitsTouched, metrics.DeltaNorm),
		}
	}
	return Result{Traits: vec, Decision: decision, Metrics: metrics, Warnings: warnings}
}

func (e *Engine) warnMissing(userID, questionID, traitID string) Warning {
	e.log.Warn().
		Str("user_id", userID).
		Str("question_id", questionID).
		Str("trait_id", traitID).
		Msg("trait missing from vector, mapping skipped")
	return Warning{
		TraitID:    traitID,
		QuestionID: questionID,
		Message:    "trait missing from vector",
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
