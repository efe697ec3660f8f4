package insight

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
)

// #region band
// Band is the coarse confidence label on a card.
type Band int

const (
	Low Band = iota
	Medium
	High
)

var bandNames = [...]string{"low", "medium", "high"}

func (b Band) String() string {
	if b < Low || b > High {
		return fmt.Sprintf("band(%d)", int(b))
	}
	return bandNames[b]
}

func (b Band) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Band) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range bandNames {
		if n == name {
			*b = Band(i)
			return nil
		}
	}
	return fmt.Errorf("unknown confidence band %q", name)
}

// #endregion band

// #region card
// Card is one generated hypothesis about the user.
type Card struct {
	ID         string     `json:"insight_id"`
	UserID     string     `json:"user_id"`
	LayerRefs  []layer.ID `json:"layer_refs"`
	Text       string     `json:"text"`
	Band       Band       `json:"confidence_band"`
	CreatedAt  time.Time  `json:"created_at"`
	Provenance []string   `json:"provenance"`
}

// #endregion card
