package layer

import (
	"fmt"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/adaptive-profile/internal/evidence"
)

func answersFor(qids ...string) evidence.Set {
	s := evidence.NewSet()
	for _, q := range qids {
		s.Put(evidence.Answer{QuestionID: q, Value: 2})
	}
	return s
}

// #region evaluate-tests
func TestEvaluateIsTotal(t *testing.T) {
	stabilities := []float64{0, 0.1, 0.59, 0.6, 0.79, 0.8, 1}
	for _, id := range All() {
		for density := 0; density <= 5; density++ {
			for convergence := 0; convergence <= 4; convergence++ {
				for _, st := range stabilities {
					got := Evaluate(id, density, convergence, st)
					assert.True(t, got >= Unformed && got <= Integrated,
						"layer %d d=%d c=%d s=%v gave %v", id, density, convergence, st, got)
				}
			}
		}
	}
}

func TestEvaluateDecisionTable(t *testing.T) {
	cases := []struct {
		id          ID
		density     int
		convergence int
		stability   float64
		want        Status
	}{
		{1, 0, 0, 0, Unformed},
		{1, 1, 0, 0, Emerging},
		{1, 2, 1, 0.5, Emerging},
		{1, 2, 1, 0.6, Developed},
		{1, 2, 1, 0.8, Integrated},
		{1, 3, 0, 0.9, Emerging},
		{15, 2, 3, 0.9, Emerging},
		{15, 3, 2, 0.9, Emerging},
		{15, 3, 3, 0.8, Integrated},
		{9, 3, 2, 0.65, Developed},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("L%d_d%d_c%d_s%.2f", tc.id, tc.density, tc.convergence, tc.stability), func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.id, tc.density, tc.convergence, tc.stability))
		})
	}
}

func TestEvaluateUnknownLayer(t *testing.T) {
	assert.Equal(t, Unformed, Evaluate(0, 5, 5, 1))
	assert.Equal(t, Unformed, Evaluate(16, 5, 5, 1))
}

func TestDeeperLayersAreStricter(t *testing.T) {
	for id := ID(2); id <= Count; id++ {
		prev, cur := Thresholds[id-1], Thresholds[id]
		assert.GreaterOrEqual(t, cur.DensityMin, prev.DensityMin, "layer %d density", id)
		assert.GreaterOrEqual(t, cur.ConvergenceMin, prev.ConvergenceMin, "layer %d convergence", id)
	}
	assert.Greater(t, Thresholds[15].ConvergenceMin, Thresholds[1].ConvergenceMin)
}

// #endregion evaluate-tests

// #region aggregate-tests
func TestAggregateSelfConceptScenario(t *testing.T) {
	answers := evidence.NewSet(
		evidence.Answer{QuestionID: "BLUEPRINT.01", Value: "calm curious builder who listens",
			Derived: map[string]float64{evidence.DerivedTokenCount: 5}},
		evidence.Answer{QuestionID: "BLUEPRINT.02", Value: 3},
		evidence.Answer{QuestionID: "BLUEPRINT.03", Value: "B"},
	)

	table := Aggregate(answers, nil)
	l := table[1]

	assert.Equal(t, "Self-Concept", l.Name)
	assert.Equal(t, 3, l.SignalDensity)
	assert.GreaterOrEqual(t, l.ConvergenceCount, 1)
	assert.GreaterOrEqual(t, l.Status, Emerging)
	assert.InDelta(t, 0.1, l.Value, 1e-9)
	assert.Contains(t, l.EvidenceSummary, "answered BLUEPRINT.01")
}

func TestAggregateTokenValueClamps(t *testing.T) {
	answers := evidence.NewSet(evidence.Answer{QuestionID: "BLUEPRINT.01",
		Derived: map[string]float64{evidence.DerivedTokenCount: 400}})
	assert.Equal(t, 1.0, Aggregate(answers, nil)[1].Value)
}

func TestAggregateTokenValueFromRawText(t *testing.T) {
	answers := evidence.NewSet(evidence.Answer{QuestionID: "BLUEPRINT.01", Value: "one two three four five"})
	assert.InDelta(t, 0.1, Aggregate(answers, nil)[1].Value, 1e-9)
}

func TestAggregateEmptyAnswers(t *testing.T) {
	table := Aggregate(evidence.NewSet(), nil)
	require.Len(t, table, Count)
	for _, l := range table.Ordered() {
		assert.Equal(t, Unformed, l.Status, "layer %d", l.ID)
		assert.Equal(t, NeutralValue, l.Value)
		assert.Zero(t, l.SignalDensity)
		assert.Zero(t, l.ConvergenceCount)
		assert.Zero(t, l.Confidence)
		assert.NotNil(t, l.EvidenceSummary)
	}
}

func TestAggregatePairStopsAtDeveloped(t *testing.T) {
	table := Aggregate(answersFor("BLUEPRINT.01", "BLUEPRINT.02"), nil)
	l := table[1]
	assert.Equal(t, 2, l.SignalDensity)
	assert.Equal(t, 1, l.ConvergenceCount)
	assert.Equal(t, 0.65, l.Stability)
	assert.Equal(t, Developed, l.Status)
}

func TestAggregateDeepLayerNeedsFullCoverage(t *testing.T) {
	partial := Aggregate(answersFor("BLUEPRINT.43", "BLUEPRINT.44"), nil)[15]
	assert.Equal(t, Emerging, partial.Status)

	full := Aggregate(answersFor("BLUEPRINT.43", "BLUEPRINT.44", "BLUEPRINT.45"), nil)[15]
	assert.Equal(t, 3, full.ConvergenceCount)
	assert.Equal(t, Integrated, full.Status)
	assert.InDelta(t, 0.8, full.Confidence, 1e-9)
}

func TestAggregateLayersAreIndependent(t *testing.T) {
	table := Aggregate(answersFor("BLUEPRINT.04", "BLUEPRINT.05", "BLUEPRINT.06"), nil)
	assert.Equal(t, Integrated, table[2].Status)
	for _, id := range All() {
		if id != 2 {
			assert.Equal(t, Unformed, table[id].Status, "layer %d", id)
		}
	}
}

func TestAggregatePrimaryValues(t *testing.T) {
	answers := evidence.NewSet(
		evidence.Answer{QuestionID: "BLUEPRINT.04", Value: 4},
		evidence.Answer{QuestionID: "BLUEPRINT.09", Value: "A"},
		evidence.Answer{QuestionID: "BLUEPRINT.10", Value: "not a number"},
	)
	table := Aggregate(answers, nil)
	assert.Equal(t, 1.0, table[2].Value)
	assert.Equal(t, 0.0, table[3].Value)
	assert.Equal(t, NeutralValue, table[4].Value)
	assert.Contains(t, table[4].EvidenceSummary, "BLUEPRINT.10: unreadable likert value")
}

func TestAggregateCarriesValidations(t *testing.T) {
	table := Aggregate(evidence.NewSet(), map[ID]Validation{3: DoesntFit})
	assert.Equal(t, DoesntFit, table[3].UserValidation)
	assert.Equal(t, Unvalidated, table[4].UserValidation)
}

func TestAggregateIsStateless(t *testing.T) {
	answers := answersFor("BLUEPRINT.07", "BLUEPRINT.08")
	first := Aggregate(answers, nil)
	second := Aggregate(answers, nil)
	assert.Equal(t, first, second)
}

func TestEveryLayerHasRules(t *testing.T) {
	seen := map[string]ID{}
	for _, id := range All() {
		r := Rules[id]
		assert.NotEmpty(t, r.Questions, "layer %d", id)
		assert.NotEmpty(t, r.Groups, "layer %d", id)
		assert.NotEmpty(t, r.Primary.Question, "layer %d", id)
		for _, q := range r.Questions {
			prev, dup := seen[q]
			assert.False(t, dup, "%s used by layers %d and %d", q, prev, id)
			seen[q] = id
		}
	}
}

// #endregion aggregate-tests

func TestStatusJSON(t *testing.T) {
	data, err := json.Marshal(Developed)
	require.NoError(t, err)
	assert.Equal(t, `"developed"`, string(data))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"integrated"`), &s))
	assert.Equal(t, Integrated, s)
	assert.Error(t, json.Unmarshal([]byte(`"done"`), &s))
}

func TestEvidenceFor(t *testing.T) {
	id, ok := EvidenceFor("BLUEPRINT.01")
	require.True(t, ok)
	assert.Equal(t, ID(1), id)

	id, ok = EvidenceFor("BLUEPRINT.45")
	require.True(t, ok)
	assert.Equal(t, ID(15), id)

	_, ok = EvidenceFor("BLUEPRINT.46")
	assert.False(t, ok)
}
