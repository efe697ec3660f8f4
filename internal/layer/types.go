package layer

import (
	"fmt"

	"github.com/goccy/go-json"
)

// #region id
// ID identifies one of the fifteen fixed layers.
type ID int

// Count is the number of layers in the model.
const Count = 15

// Valid reports whether id is in 1..15.
func (id ID) Valid() bool {
	return id >= 1 && id <= Count
}

// Name returns the canonical layer name.
func (id ID) Name() string {
	if !id.Valid() {
		return fmt.Sprintf("layer-%d", int(id))
	}
	return names[id]
}

// All returns every layer id in ascending order.
func All() []ID {
	ids := make([]ID, Count)
	for i := range ids {
		ids[i] = ID(i + 1)
	}
	return ids
}

var names = [Count + 1]string{
	1:  "Self-Concept",
	2:  "Temperament",
	3:  "Energy Orientation",
	4:  "Decision Style",
	5:  "Communication Style",
	6:  "Values",
	7:  "Motivation Drivers",
	8:  "Stress Response",
	9:  "Relational Patterns",
	10: "Work Rhythm",
	11: "Learning Style",
	12: "Conflict Approach",
	13: "Aspirations",
	14: "Shadow Patterns",
	15: "Identity Coherence",
}

// #endregion id

// #region status
// Status is the maturity of a layer. The zero value is Unformed and the
// constants are ordered, so Status values compare with < and >.
type Status int

const (
	Unformed Status = iota
	Emerging
	Developed
	Integrated
)

var statusNames = [...]string{"unformed", "emerging", "developed", "integrated"}

func (s Status) String() string {
	if s < Unformed || s > Integrated {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus converts the wire name back to a Status.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return Unformed, fmt.Errorf("unknown layer status %q", name)
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// #endregion status

// #region validation
// Validation is the user's verdict on a layer, written by the UI and only
// read here.
type Validation string

const (
	Unvalidated Validation = ""
	Resonates   Validation = "resonates"
	NotSure     Validation = "not_sure"
	DoesntFit   Validation = "doesnt_fit"
)

// #endregion validation

// #region layer
// Layer is one row of the aggregated table.
type Layer struct {
	ID               ID         `json:"id"`
	Name             string     `json:"name"`
	Value            float64    `json:"value"`
	Confidence       float64    `json:"confidence"`
	Status           Status     `json:"status"`
	Stability        float64    `json:"stability"`
	SignalDensity    int        `json:"signal_density"`
	ConvergenceCount int        `json:"convergenceCount"`
	EvidenceSummary  []string   `json:"evidence_summary"`
	UserValidation   Validation `json:"userValidation,omitempty"`
}

// Table maps every layer id to its row.
type Table map[ID]Layer

// Ordered returns the rows by ascending id.
func (t Table) Ordered() []Layer {
	out := make([]Layer, 0, len(t))
	for _, id := range All() {
		if l, ok := t[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// #endregion layer
