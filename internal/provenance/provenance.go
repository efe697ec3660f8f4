package provenance

import (
	"database/sql"
	"fmt"
	"time"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region log-decision
// LogDecision writes a provenance entry to the provenance_log table.
func LogDecision(db *sql.DB, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (version_id, user_id, trigger_type, input_json, warnings_json, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(entry.VersionID),
		entry.UserID,
		entry.TriggerType,
		nullIfEmpty(entry.InputJSON),
		nullIfEmpty(entry.WarningsJSON),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region recent
// Recent returns a user's latest entries, newest first.
func Recent(db *sql.DB, userID string, limit int) ([]Entry, error) {
	rows, err := db.Query(
		`SELECT version_id, user_id, trigger_type, input_json, warnings_json, decision, reason, created_at
		 FROM provenance_log WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent provenance: %w", err)
	}
	return scanEntries(rows)
}

// History returns every entry for a user in the order they were written.
func History(db *sql.DB, userID string) ([]Entry, error) {
	rows, err := db.Query(
		`SELECT version_id, user_id, trigger_type, input_json, warnings_json, decision, reason, created_at
		 FROM provenance_log WHERE user_id = ? ORDER BY id ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("provenance history: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var versionID, input, warnings, reason sql.NullString
		var created string
		if err := rows.Scan(&versionID, &e.UserID, &e.TriggerType, &input, &warnings, &e.Decision, &reason, &created); err != nil {
			return nil, fmt.Errorf("scan provenance: %w", err)
		}
		e.VersionID = versionID.String
		e.InputJSON = input.String
		e.WarningsJSON = warnings.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion recent

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
