package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielpatrickdp/adaptive-profile/internal/catalog"
	"github.com/danielpatrickdp/adaptive-profile/internal/climate"
	"github.com/danielpatrickdp/adaptive-profile/internal/evidence"
	"github.com/danielpatrickdp/adaptive-profile/internal/gate"
	"github.com/danielpatrickdp/adaptive-profile/internal/insight"
	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
	"github.com/danielpatrickdp/adaptive-profile/internal/metrics"
	"github.com/danielpatrickdp/adaptive-profile/internal/provenance"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
	"github.com/danielpatrickdp/adaptive-profile/internal/traitstore"
)

var tracer = otel.Tracer("github.com/danielpatrickdp/adaptive-profile/internal/profile")

// #region service
// Service coordinates refinement, gating, persistence and provenance for
// every user. Calls for one user are serialized; different users run in
// parallel.
type Service struct {
	store    *traitstore.Store
	engine   *refine.Engine
	gate     *gate.Gate
	insights *insight.Generator
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time
	locks    *userLocks
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMetrics records counters and latencies into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithInsightGenerator replaces the card generator, for stable ids in tests.
func WithInsightGenerator(g *insight.Generator) Option {
	return func(s *Service) { s.insights = g }
}

// NewService wires a service over an open store.
func NewService(store *traitstore.Store, engine *refine.Engine, g *gate.Gate, opts ...Option) *Service {
	s := &Service{
		store:    store,
		engine:   engine,
		gate:     g,
		insights: insight.NewGenerator(),
		log:      zerolog.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
		locks:    newUserLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the question catalog in use.
func (s *Service) Catalog() *catalog.Catalog {
	return s.engine.Catalog()
}

// #endregion service

// #region submit-answer
// SubmitAnswer stores the answer and refines the user's traits from it.
// Answers to layer-only questions (such as the free-text self description)
// are stored as evidence without touching traits. Unknown questions and
// unreadable values return an error and change nothing.
func (s *Service) SubmitAnswer(ctx context.Context, input refine.AnswerInput) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "profile.SubmitAnswer")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", input.UserID),
		attribute.String("question_id", input.QuestionID),
	)

	if input.UserID == "" || input.QuestionID == "" {
		return Outcome{}, fmt.Errorf("%w: user_id and question_id are required", ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if input.AnsweredAt.IsZero() {
		input.AnsweredAt = s.now()
	}

	unlock := s.locks.lock(input.UserID)
	defer unlock()
	start := s.now()

	current, err := s.current(input.UserID)
	if err != nil {
		return s.fail(span, refine.SourceAnswer, input.UserID, input, err)
	}

	answer := evidence.Derive(evidence.Answer{
		UserID:     input.UserID,
		QuestionID: input.QuestionID,
		AnsweredAt: input.AnsweredAt,
		Value:      input.Value,
	})

	_, lookupErr := s.engine.Catalog().Lookup(input.QuestionID)
	if errors.Is(lookupErr, catalog.ErrQuestionNotFound) {
		if _, ok := layer.EvidenceFor(input.QuestionID); !ok {
			return s.fail(span, refine.SourceAnswer, input.UserID, input, lookupErr)
		}
		if err := s.store.SaveAnswer(answer); err != nil {
			return s.fail(span, refine.SourceAnswer, input.UserID, input, err)
		}
		out := Outcome{
			Action:    ActionRecorded,
			Reason:    "layer evidence stored, no trait mapping",
			VersionID: current.VersionID,
			Traits:    current.Traits,
		}
		s.logProvenance(refine.SourceAnswer, input.UserID, "", input, nil, out)
		s.metrics.IncrementRefinement(string(refine.SourceAnswer), out.Action)
		return out, nil
	}

	res, err := s.engine.FromAnswer(input, current.Traits)
	if err != nil {
		return s.fail(span, refine.SourceAnswer, input.UserID, input, err)
	}
	if err := s.store.SaveAnswer(answer); err != nil {
		return s.fail(span, refine.SourceAnswer, input.UserID, input, err)
	}

	out, err := s.apply(refine.SourceAnswer, current, input, res)
	if err != nil {
		return s.fail(span, refine.SourceAnswer, input.UserID, input, err)
	}
	s.metrics.ObserveRefineLatency(string(refine.SourceAnswer), s.now().Sub(start))
	span.SetAttributes(attribute.String("action", out.Action))
	return out, nil
}

// #endregion submit-answer

// #region submit-event
// SubmitEvent refines the user's traits from precomputed behavioral deltas.
func (s *Service) SubmitEvent(ctx context.Context, userID string, signals []refine.EventSignal) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "profile.SubmitEvent")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("signals", len(signals)),
	)

	if userID == "" {
		return Outcome{}, fmt.Errorf("%w: user_id is required", ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()
	start := s.now()

	current, err := s.current(userID)
	if err != nil {
		return s.fail(span, refine.SourceEvent, userID, signals, err)
	}

	res := s.engine.FromEvent(userID, signals, current.Traits)
	out, err := s.apply(refine.SourceEvent, current, signals, res)
	if err != nil {
		return s.fail(span, refine.SourceEvent, userID, signals, err)
	}
	s.metrics.ObserveRefineLatency(string(refine.SourceEvent), s.now().Sub(start))
	span.SetAttributes(attribute.String("action", out.Action))
	return out, nil
}

// #endregion submit-event

// #region apply
// apply gates a refinement result and commits it when it passes. Caller holds
// the user lock.
func (s *Service) apply(source refine.Source, current traitstore.Record, input any, res refine.Result) (Outcome, error) {
	s.metrics.AddWarnings(string(source), len(res.Warnings))

	out := Outcome{
		VersionID: current.VersionID,
		Traits:    current.Traits,
		Warnings:  res.Warnings,
	}

	if res.Decision.Action == "no_op" {
		out.Action = ActionNoOp
		out.Reason = res.Decision.Reason
		s.logProvenance(source, current.UserID, "", input, res.Warnings, out)
		s.metrics.IncrementRefinement(string(source), out.Action)
		return out, nil
	}

	decision := s.gate.Evaluate(current.Traits, res.Traits)
	if decision.Vetoed {
		out.Action = ActionGateReject
		out.Reason = decision.Reason
		s.log.Warn().
			Str("user_id", current.UserID).
			Str("source", string(source)).
			Str("reason", decision.Reason).
			Msg("refinement rejected by gate")
		s.logProvenance(source, current.UserID, "", input, res.Warnings, out)
		s.metrics.IncrementRefinement(string(source), out.Action)
		return out, nil
	}

	metricsJSON, err := json.Marshal(res.Metrics)
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal metrics: %w", err)
	}
	next := traitstore.Record{
		VersionID:   uuid.New().String(),
		ParentID:    current.VersionID,
		UserID:      current.UserID,
		Traits:      res.Traits,
		CreatedAt:   s.now(),
		MetricsJSON: string(metricsJSON),
	}
	if err := s.store.CommitState(next); err != nil {
		return Outcome{}, err
	}

	out.Action = ActionCommit
	out.Reason = res.Decision.Reason
	out.VersionID = next.VersionID
	out.Traits = next.Traits
	s.log.Debug().
		Str("user_id", current.UserID).
		Str("version_id", next.VersionID).
		Float64("delta_norm", res.Metrics.DeltaNorm).
		Msg("traits committed")
	s.logProvenance(source, current.UserID, next.VersionID, input, res.Warnings, out)
	s.metrics.IncrementRefinement(string(source), out.Action)
	return out, nil
}

// current loads the active vector, seeding a neutral one on first contact.
func (s *Service) current(userID string) (traitstore.Record, error) {
	rec, err := s.store.GetCurrent(userID)
	if errors.Is(err, traitstore.ErrNotFound) {
		return s.store.CreateInitial(userID, refine.Seed(s.engine.Catalog().TraitIDs()))
	}
	return rec, err
}

// fail records an errored attempt and returns err unchanged.
func (s *Service) fail(span trace.Span, source refine.Source, userID string, input any, err error) (Outcome, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.log.Error().Err(err).Str("user_id", userID).Str("source", string(source)).Msg("refinement failed")
	s.logProvenance(source, userID, "", input, nil, Outcome{Action: ActionError, Reason: err.Error()})
	s.metrics.IncrementRefinement(string(source), ActionError)
	return Outcome{}, err
}

// logProvenance appends to the decision log. Failures are logged, not returned.
func (s *Service) logProvenance(source refine.Source, userID, versionID string, input any, warnings []refine.Warning, out Outcome) {
	inputJSON, _ := json.Marshal(input)
	var warningsJSON []byte
	if len(warnings) > 0 {
		warningsJSON, _ = json.Marshal(warnings)
	}
	decision := out.Action
	if decision == ActionGateReject {
		decision = "reject"
	}
	err := provenance.LogDecision(s.store.DB(), provenance.Entry{
		VersionID:    versionID,
		UserID:       userID,
		TriggerType:  string(source),
		InputJSON:    string(inputJSON),
		WarningsJSON: string(warningsJSON),
		Decision:     decision,
		Reason:       out.Reason,
		CreatedAt:    s.now(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("provenance write failed")
	}
}

// #endregion apply

// #region reads
// Traits returns the user's active vector. Users with no history get the
// neutral seed and an empty version id; nothing is written.
func (s *Service) Traits(ctx context.Context, userID string) (traitstore.Record, error) {
	_, span := tracer.Start(ctx, "profile.Traits")
	defer span.End()

	if userID == "" {
		return traitstore.Record{}, fmt.Errorf("%w: user_id is required", ErrInvalidArgument)
	}
	rec, err := s.store.GetCurrent(userID)
	if errors.Is(err, traitstore.ErrNotFound) {
		return traitstore.Record{
			UserID: userID,
			Traits: refine.Seed(s.engine.Catalog().TraitIDs()),
		}, nil
	}
	return rec, err
}

// Layers aggregates the user's stored answers into the layer table and draws
// insight cards from it.
func (s *Service) Layers(ctx context.Context, userID string) (LayersView, error) {
	_, span := tracer.Start(ctx, "profile.Layers")
	defer span.End()

	if userID == "" {
		return LayersView{}, fmt.Errorf("%w: user_id is required", ErrInvalidArgument)
	}

	unlock := s.locks.lock(userID)
	answers, err := s.store.Answers(userID)
	if err != nil {
		unlock()
		return LayersView{}, err
	}
	validations, err := s.store.Validations(userID)
	unlock()
	if err != nil {
		return LayersView{}, err
	}

	table := layer.Aggregate(answers, validations)
	return LayersView{
		UserID:   userID,
		Layers:   table.Ordered(),
		Insights: s.insights.Generate(userID, table),
	}, nil
}

// History returns the user's most recent trait versions, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]traitstore.Record, error) {
	_, span := tracer.Start(ctx, "profile.History")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	return s.store.ListVersions(userID, limit)
}

// #endregion reads

// #region writes
// SetValidation records the user's reaction to a layer.
func (s *Service) SetValidation(ctx context.Context, userID string, id layer.ID, v layer.Validation) error {
	_, span := tracer.Start(ctx, "profile.SetValidation")
	defer span.End()

	if userID == "" || !id.Valid() {
		return fmt.Errorf("%w: user_id and a layer id 1..%d are required", ErrInvalidArgument, layer.Count)
	}
	switch v {
	case layer.Unvalidated, layer.Resonates, layer.NotSure, layer.DoesntFit:
	default:
		return fmt.Errorf("%w: unknown validation %q", ErrInvalidArgument, v)
	}

	unlock := s.locks.lock(userID)
	defer unlock()
	return s.store.SetValidation(userID, id, v)
}

// Rollback makes an earlier version of the user's vector active again.
func (s *Service) Rollback(ctx context.Context, userID, versionID string) error {
	_, span := tracer.Start(ctx, "profile.Rollback")
	defer span.End()

	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.store.Rollback(userID, versionID); err != nil {
		return err
	}
	entryErr := provenance.LogDecision(s.store.DB(), provenance.Entry{
		VersionID:   versionID,
		UserID:      userID,
		TriggerType: "rollback",
		Decision:    "rollback",
		Reason:      fmt.Sprintf("active vector reset to %s", versionID),
		CreatedAt:   s.now(),
	})
	if entryErr != nil {
		s.log.Error().Err(entryErr).Str("user_id", userID).Msg("provenance write failed")
	}
	s.log.Info().Str("user_id", userID).Str("version_id", versionID).Msg("rolled back")
	return nil
}

// #endregion writes

// #region climate
// TeamClimate aggregates member signals. Small teams are withheld.
func (s *Service) TeamClimate(ctx context.Context, members []climate.MemberSignal, memberCount int) climate.Result {
	_, span := tracer.Start(ctx, "profile.TeamClimate")
	defer span.End()

	res := climate.Calculate(members, memberCount)
	span.SetAttributes(attribute.Bool("suppressed", res.Suppressed()))
	s.metrics.IncrementClimate(res.Suppressed())
	return res
}

// #endregion climate
