package layer

import (
	"fmt"
	"math"
	"strings"

	"github.com/danielpatrickdp/adaptive-profile/internal/catalog"
	"github.com/danielpatrickdp/adaptive-profile/internal/evidence"
)

// NeutralValue is the prior for a layer without a readable primary answer.
const NeutralValue = 0.5

// #region aggregate
// Aggregate builds the full table from scratch. Layers never read each
// other's answers. validations carries the UI's verdicts through unchanged
// and may be nil.
func Aggregate(answers evidence.Set, validations map[ID]Validation) Table {
	table := make(Table, Count)
	for _, id := range All() {
		l := aggregateOne(id, Rules[id], answers)
		l.UserValidation = validations[id]
		table[id] = l
	}
	return table
}

func aggregateOne(id ID, rule Rule, answers evidence.Set) Layer {
	l := Layer{
		ID:              id,
		Name:            id.Name(),
		Value:           NeutralValue,
		EvidenceSummary: []string{},
	}

	// 1. Density: one per contributing answer present
	for _, qid := range rule.Questions {
		if answers.Has(qid) {
			l.SignalDensity++
			l.EvidenceSummary = append(l.EvidenceSummary, fmt.Sprintf("answered %s", qid))
		}
	}

	// 2. Corroboration: each fully answered group counts once
	for _, g := range rule.Groups {
		if !allAnswered(answers, g.Questions) {
			continue
		}
		l.ConvergenceCount++
		if g.Stability > l.Stability {
			l.Stability = g.Stability
		}
		l.EvidenceSummary = append(l.EvidenceSummary,
			fmt.Sprintf("corroborated by %s", strings.Join(g.Questions, " + ")))
	}

	// 3. Primary signal overrides the neutral prior
	if v, note, ok := primaryValue(rule.Primary, answers); ok {
		l.Value = v
		l.EvidenceSummary = append(l.EvidenceSummary, note)
	} else if note != "" {
		l.EvidenceSummary = append(l.EvidenceSummary, note)
	}

	if n := len(rule.Questions); n > 0 {
		l.Confidence = round4(l.Stability * float64(l.SignalDensity) / float64(n))
	}
	l.Status = Evaluate(id, l.SignalDensity, l.ConvergenceCount, l.Stability)
	return l
}

func allAnswered(answers evidence.Set, qids []string) bool {
	if len(qids) == 0 {
		return false
	}
	for _, qid := range qids {
		if !answers.Has(qid) {
			return false
		}
	}
	return true
}

// primaryValue reads the designated answer. A present but unreadable answer
// returns ok=false with a note so the provenance shows why the prior stayed.
func primaryValue(p Primary, answers evidence.Set) (float64, string, bool) {
	if p.Question == "" {
		return 0, "", false
	}
	a, ok := answers.Get(p.Question)
	if !ok {
		return 0, "", false
	}

	switch p.Kind {
	case TokenCount:
		a = evidence.Derive(a)
		n, ok := a.Feature(evidence.DerivedTokenCount)
		if !ok || p.Denominator <= 0 {
			return 0, fmt.Sprintf("%s: no token count", p.Question), false
		}
		v := math.Min(n/p.Denominator, 1)
		return v, fmt.Sprintf("%s: %.0f tokens", p.Question, n), true
	case LikertScale:
		s, err := catalog.Normalize(catalog.Likert5, a.Value)
		if err != nil {
			return 0, fmt.Sprintf("%s: unreadable likert value", p.Question), false
		}
		return (s + 1) / 2, fmt.Sprintf("%s: likert %.2f", p.Question, s), true
	case Choice:
		s, err := catalog.Normalize(catalog.EitherOr, a.Value)
		if err != nil {
			return 0, fmt.Sprintf("%s: unreadable choice", p.Question), false
		}
		return (s + 1) / 2, fmt.Sprintf("%s: choice %v", p.Question, a.Value), true
	}
	return 0, "", false
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// #endregion aggregate
