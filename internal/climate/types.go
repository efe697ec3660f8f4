package climate

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// #region member-signal
// MemberSignal is one member's contribution. Scores are on 0..100.
type MemberSignal struct {
	UserID       string   `json:"user_id"`
	Pace         float64  `json:"pace"`
	Safety       float64  `json:"safety"`
	Clarity      float64  `json:"clarity"`
	Frictions    []string `json:"frictions,omitempty"`
	Strengths    []string `json:"strengths,omitempty"`
	PressureTags []string `json:"pressure_tags,omitempty"`
}

// #endregion member-signal

// #region result
// Result is either Withheld or Climate, never both.
type Result interface {
	Suppressed() bool
	isResult()
}

// Withheld is returned when the cohort is too small to report safely.
type Withheld struct {
	Reason string
}

func (Withheld) Suppressed() bool { return true }
func (Withheld) isResult()        {}

func (w Withheld) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Suppressed bool   `json:"suppressed"`
		Reason     string `json:"reason"`
	}{true, w.Reason})
}

// Climate is the aggregate team reading.
type Climate struct {
	Pace          float64
	Safety        float64
	Clarity       float64
	TopFriction   string
	CoreStrengths []string
	PressureTags  []string
}

func (Climate) Suppressed() bool { return false }
func (Climate) isResult()        {}

func (c Climate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Suppressed    bool     `json:"suppressed"`
		Pace          float64  `json:"pace"`
		Safety        float64  `json:"safety"`
		Clarity       float64  `json:"clarity"`
		TopFriction   string   `json:"top_friction"`
		CoreStrengths []string `json:"core_strengths"`
		PressureTags  []string `json:"pressure_tags"`
	}{false, c.Pace, c.Safety, c.Clarity, c.TopFriction, c.CoreStrengths, c.PressureTags})
}

// #endregion result

// ParseResult decodes either JSON form produced by MarshalJSON, keyed on the
// suppressed tag.
func ParseResult(data []byte) (Result, error) {
	var wire struct {
		Suppressed    *bool    `json:"suppressed"`
		Reason        string   `json:"reason"`
		Pace          float64  `json:"pace"`
		Safety        float64  `json:"safety"`
		Clarity       float64  `json:"clarity"`
		TopFriction   string   `json:"top_friction"`
		CoreStrengths []string `json:"core_strengths"`
		PressureTags  []string `json:"pressure_tags"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode climate result: %w", err)
	}
	if wire.Suppressed == nil {
		return nil, errors.New("decode climate result: missing suppressed tag")
	}
	if *wire.Suppressed {
		return Withheld{Reason: wire.Reason}, nil
	}
	return Climate{
		Pace:          wire.Pace,
		Safety:        wire.Safety,
		Clarity:       wire.Clarity,
		TopFriction:   wire.TopFriction,
		CoreStrengths: wire.CoreStrengths,
		PressureTags:  wire.PressureTags,
	}, nil
}
