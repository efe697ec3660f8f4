package layer

// #region thresholds
// Threshold is one row of the unlock table. A layer must reach both minimums
// before stability can lift it past emerging.
type Threshold struct {
	DensityMin     int
	ConvergenceMin int
}

// Stability cut points shared by every row.
const (
	IntegratedStability = 0.8
	DevelopedStability  = 0.6
)

// Thresholds is indexed by layer id. Disposition layers unlock on a single
// corroborated pair; the deeper layers need every question and more groups.
var Thresholds = [Count + 1]Threshold{
	1:  {DensityMin: 2, ConvergenceMin: 1},
	2:  {DensityMin: 2, ConvergenceMin: 1},
	3:  {DensityMin: 2, ConvergenceMin: 1},
	4:  {DensityMin: 2, ConvergenceMin: 1},
	5:  {DensityMin: 2, ConvergenceMin: 1},
	6:  {DensityMin: 3, ConvergenceMin: 1},
	7:  {DensityMin: 3, ConvergenceMin: 1},
	8:  {DensityMin: 3, ConvergenceMin: 1},
	9:  {DensityMin: 3, ConvergenceMin: 2},
	10: {DensityMin: 3, ConvergenceMin: 2},
	11: {DensityMin: 3, ConvergenceMin: 2},
	12: {DensityMin: 3, ConvergenceMin: 2},
	13: {DensityMin: 3, ConvergenceMin: 2},
	14: {DensityMin: 3, ConvergenceMin: 3},
	15: {DensityMin: 3, ConvergenceMin: 3},
}

// #endregion thresholds

// #region rules
// PrimaryKind selects how a layer's primary answer becomes its value.
type PrimaryKind int

const (
	// TokenCount divides a derived token count by Denominator, clamped to 1.
	TokenCount PrimaryKind = iota + 1
	// LikertScale maps a 0..4 index onto [0, 1].
	LikertScale
	// Choice maps A to 0 and B to 1.
	Choice
)

// Primary names the answer that overrides the neutral 0.5 value.
type Primary struct {
	Question    string
	Kind        PrimaryKind
	Denominator float64
}

// Group is a corroboration rule: when every listed question is answered the
// layer gains one convergence and at least Stability.
type Group struct {
	Questions []string
	Stability float64
}

// Rule is the static configuration for one layer.
type Rule struct {
	Questions []string
	Groups    []Group
	Primary   Primary
}

const tokenDenominator = 50

// Rules is indexed by layer id.
var Rules = [Count + 1]Rule{
	1: {
		Questions: []string{"BLUEPRINT.01", "BLUEPRINT.02", "BLUEPRINT.03"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.01", "BLUEPRINT.02"}, Stability: 0.65},
			{Questions: []string{"BLUEPRINT.02", "BLUEPRINT.03"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.01", "BLUEPRINT.02", "BLUEPRINT.03"}, Stability: 0.85},
		},
		Primary: Primary{Question: "BLUEPRINT.01", Kind: TokenCount, Denominator: tokenDenominator},
	},
	2: {
		Questions: []string{"BLUEPRINT.04", "BLUEPRINT.05", "BLUEPRINT.06"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.04", "BLUEPRINT.05"}, Stability: 0.65},
			{Questions: []string{"BLUEPRINT.05", "BLUEPRINT.06"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.04", "BLUEPRINT.05", "BLUEPRINT.06"}, Stability: 0.85},
		},
		Primary: Primary{Question: "BLUEPRINT.04", Kind: LikertScale},
	},
	3: {
		Questions: []string{"BLUEPRINT.07", "BLUEPRINT.08", "BLUEPRINT.09"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.07", "BLUEPRINT.08"}, Stability: 0.65},
			{Questions: []string{"BLUEPRINT.08", "BLUEPRINT.09"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.07", "BLUEPRINT.08", "BLUEPRINT.09"}, Stability: 0.85},
		},
		Primary: Primary{Question: "BLUEPRINT.09", Kind: Choice},
	},
	4: {
		Questions: []string{"BLUEPRINT.10", "BLUEPRINT.11", "BLUEPRINT.12"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.10", "BLUEPRINT.11"}, Stability: 0.65},
			{Questions: []string{"BLUEPRINT.11", "BLUEPRINT.12"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.10", "BLUEPRINT.11", "BLUEPRINT.12"}, Stability: 0.85},
		},
		Primary: Primary{Question: "BLUEPRINT.10", Kind: LikertScale},
	},
	5: {
		Questions: []string{"BLUEPRINT.13", "BLUEPRINT.14", "BLUEPRINT.15"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.13", "BLUEPRINT.14"}, Stability: 0.65},
			{Questions: []string{"BLUEPRINT.14", "BLUEPRINT.15"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.13", "BLUEPRINT.14", "BLUEPRINT.15"}, Stability: 0.85},
		},
		Primary: Primary{Question: "BLUEPRINT.13", Kind: LikertScale},
	},
	6: {
		Questions: []string{"BLUEPRINT.16", "BLUEPRINT.17", "BLUEPRINT.18"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.16", "BLUEPRINT.17"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.17", "BLUEPRINT.18"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.16", "BLUEPRINT.17", "BLUEPRINT.18"}, Stability: 0.8},
		},
		Primary: Primary{Question: "BLUEPRINT.16", Kind: LikertScale},
	},
	7: {
		Questions: []string{"BLUEPRINT.19", "BLUEPRINT.20", "BLUEPRINT.21"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.19", "BLUEPRINT.20"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.20", "BLUEPRINT.21"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.19", "BLUEPRINT.20", "BLUEPRINT.21"}, Stability: 0.8},
		},
		Primary: Primary{Question: "BLUEPRINT.19", Kind: LikertScale},
	},
	8: {
		Questions: []string{"BLUEPRINT.22", "BLUEPRINT.23", "BLUEPRINT.24"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.22", "BLUEPRINT.23"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.23", "BLUEPRINT.24"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.22", "BLUEPRINT.23", "BLUEPRINT.24"}, Stability: 0.8},
		},
		Primary: Primary{Question: "BLUEPRINT.22", Kind: LikertScale},
	},
	9: {
		Questions: []string{"BLUEPRINT.25", "BLUEPRINT.26", "BLUEPRINT.27"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.25", "BLUEPRINT.26"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.26", "BLUEPRINT.27"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.25", "BLUEPRINT.26", "BLUEPRINT.27"}, Stability: 0.8},
		},
		Primary: Primary{Question: "BLUEPRINT.25", Kind: LikertScale},
	},
	10: {
		Questions: []string{"BLUEPRINT.28", "BLUEPRINT.29", "BLUEPRINT.30"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.28", "BLUEPRINT.29"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.29", "BLUEPRINT.30"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.28", "BLUEPRINT.29", "BLUEPRINT.30"}, Stability: 0.8},
		},
		Primary: Primary{Question: "BLUEPRINT.28", Kind: LikertScale},
	},
	11: {
		Questions: []string{"BLUEPRINT.31", "BLUEPRINT.32", "BLUEPRINT.33"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.31", "BLUEPRINT.32"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.32", "BLUEPRINT.33"}, Stability: 0.55},
			{Questions: []string{"BLUEPRINT.31", "BLUEPRINT.32", "BLUEPRINT.33"}, Stability: 0.8},
		},
		Primary: Primary{Question: "BLUEPRINT.31", Kind: LikertScale},
	},
	12: {
		Questions: []string{"BLUEPRINT.34", "BLUEPRINT.35", "BLUEPRINT.36"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.34", "BLUEPRINT.35"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.35", "BLUEPRINT.36"}, Stability: 0.55},
			{Questions: []string{"BLUEPRINT.34", "BLUEPRINT.35", "BLUEPRINT.36"}, Stability: 0.8},
		},
		Primary: Primary{Question: "BLUEPRINT.34", Kind: LikertScale},
	},
	13: {
		Questions: []string{"BLUEPRINT.37", "BLUEPRINT.38", "BLUEPRINT.39"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.37", "BLUEPRINT.38"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.38", "BLUEPRINT.39"}, Stability: 0.55},
			{Questions: []string{"BLUEPRINT.37", "BLUEPRINT.38", "BLUEPRINT.39"}, Stability: 0.8},
		},
		Primary: Primary{Question: "BLUEPRINT.37", Kind: LikertScale},
	},
	14: {
		Questions: []string{"BLUEPRINT.40", "BLUEPRINT.41", "BLUEPRINT.42"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.40", "BLUEPRINT.41"}, Stability: 0.6},
			{Questions: []string{"BLUEPRINT.41", "BLUEPRINT.42"}, Stability: 0.55},
			{Questions: []string{"BLUEPRINT.40", "BLUEPRINT.41", "BLUEPRINT.42"}, Stability: 0.8},
		},
		Primary: Primary{Question: "BLUEPRINT.40", Kind: LikertScale},
	},
	15: {
		Questions: []string{"BLUEPRINT.43", "BLUEPRINT.44", "BLUEPRINT.45"},
		Groups: []Group{
			{Questions: []string{"BLUEPRINT.43", "BLUEPRINT.44"}, Stability: 0.55},
			{Questions: []string{"BLUEPRINT.44", "BLUEPRINT.45"}, Stability: 0.5},
			{Questions: []string{"BLUEPRINT.43", "BLUEPRINT.44", "BLUEPRINT.45"}, Stability: 0.8},
		},
		Primary: Primary{Question: "BLUEPRINT.43", Kind: LikertScale},
	},
}

// #endregion rules

// EvidenceFor returns the layer whose rule lists questionID.
func EvidenceFor(questionID string) (ID, bool) {
	for _, id := range All() {
		for _, q := range Rules[id].Questions {
			if q == questionID {
				return id, true
			}
		}
	}
	return 0, false
}
