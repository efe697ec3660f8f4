package profile

import (
	"errors"

	"github.com/danielpatrickdp/adaptive-profile/internal/insight"
	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// ErrInvalidArgument wraps caller mistakes: empty ids, unknown layers.
var ErrInvalidArgument = errors.New("invalid argument")

// Outcome actions.
const (
	ActionCommit     = "commit"
	ActionGateReject = "gate_reject"
	ActionNoOp       = "no_op"
	ActionRecorded   = "recorded" // evidence stored, no trait mapping
	ActionError      = "error"
)

// #region outcome
// Outcome reports what one answer or event did to the user's profile.
type Outcome struct {
	Action    string           `json:"action"`
	Reason    string           `json:"reason"`
	VersionID string           `json:"version_id,omitempty"` // active version after the call
	Traits    refine.Vector    `json:"traits"`
	Warnings  []refine.Warning `json:"warnings,omitempty"`
}

// #endregion outcome

// #region layers-view
// LayersView is the aggregated layer table plus the insight cards drawn from it.
type LayersView struct {
	UserID   string         `json:"user_id"`
	Layers   []layer.Layer  `json:"layers"`
	Insights []insight.Card `json:"insights"`
}

// #endregion layers-view
