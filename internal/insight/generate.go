package insight

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
)

// #region generator
// Generator turns a finalized layer table into cards. Clock and IDs are
// injectable so tests get stable output.
type Generator struct {
	Now   func() time.Time
	NewID func() string
}

// NewGenerator returns a generator using wall time and random UUIDs.
func NewGenerator() *Generator {
	return &Generator{
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: func() string { return uuid.New().String() },
	}
}

// Generate never returns an empty slice: with no qualifying layer it emits a
// single Low card over the earliest layers.
func (g *Generator) Generate(userID string, table layer.Table) []Card {
	now := g.Now()
	var cards []Card

	for _, l := range table.Ordered() {
		if l.Status == layer.Unformed || l.UserValidation == layer.DoesntFit {
			continue
		}
		text, ok := pickText(l)
		if !ok {
			continue
		}
		band := Medium
		if l.Confidence > HighBandConfidence {
			band = High
		}
		cards = append(cards, Card{
			ID:         g.NewID(),
			UserID:     userID,
			LayerRefs:  []layer.ID{l.ID},
			Text:       text,
			Band:       band,
			CreatedAt:  now,
			Provenance: provenance(l),
		})
	}

	if len(cards) == 0 {
		cards = append(cards, Card{
			ID:         g.NewID(),
			UserID:     userID,
			LayerRefs:  append([]layer.ID(nil), defaultRefs...),
			Text:       defaultText,
			Band:       Low,
			CreatedAt:  now,
			Provenance: []string{"default: no layer met a content rule"},
		})
	}
	return cards
}

// #endregion generator

// #region helpers
func pickText(l layer.Layer) (string, bool) {
	if !l.ID.Valid() {
		return "", false
	}
	tpl := templates[l.ID]
	switch {
	case l.Value >= HighCut:
		return tpl.high, true
	case l.Value <= LowCut:
		return tpl.low, true
	}
	return "", false
}

func provenance(l layer.Layer) []string {
	out := make([]string, 0, len(l.EvidenceSummary)+1)
	out = append(out, fmt.Sprintf("layer %d %s: status=%s value=%.2f confidence=%.2f density=%d convergence=%d",
		l.ID, l.Name, l.Status, l.Value, l.Confidence, l.SignalDensity, l.ConvergenceCount))
	out = append(out, l.EvidenceSummary...)
	return out
}

// #endregion helpers
