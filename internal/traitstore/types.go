package traitstore

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// ErrNotFound is returned when a user has no active vector or a version is unknown.
var ErrNotFound = errors.New("not found")

// #region record
// Record is a versioned snapshot of one user's trait vector.
type Record struct {
	VersionID   string
	ParentID    string
	UserID      string
	Traits      refine.Vector
	CreatedAt   time.Time
	MetricsJSON string
}

// #endregion record

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
