package provenance

import "time"

// #region provenance-entry
// Entry is a single row in the provenance_log table. VersionID is empty when
// the attempt produced no version (rejects and errors).
type Entry struct {
	VersionID    string
	UserID       string
	TriggerType  string // "answer" | "event" | "rollback"
	InputJSON    string
	WarningsJSON string
	Decision     string // "commit" | "reject" | "no_op" | "error"
	Reason       string
	CreatedAt    time.Time
}

// #endregion provenance-entry
