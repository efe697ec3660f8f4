package traitstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS trait_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	user_id       TEXT NOT NULL,
	traits_json   TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	metrics_json  TEXT,
	FOREIGN KEY (parent_id) REFERENCES trait_versions(version_id)
);

CREATE INDEX IF NOT EXISTS idx_trait_versions_user ON trait_versions(user_id, created_at);

CREATE TABLE IF NOT EXISTS active_traits (
	user_id       TEXT PRIMARY KEY,
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES trait_versions(version_id)
);

CREATE TABLE IF NOT EXISTS answers (
	user_id       TEXT NOT NULL,
	question_id   TEXT NOT NULL,
	value_json    TEXT NOT NULL,
	derived_json  TEXT,
	answered_at   TEXT NOT NULL,
	PRIMARY KEY (user_id, question_id)
);

CREATE TABLE IF NOT EXISTS layer_validations (
	user_id       TEXT NOT NULL,
	layer_id      INTEGER NOT NULL,
	verdict       TEXT NOT NULL,
	PRIMARY KEY (user_id, layer_id)
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT,
	user_id       TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	input_json    TEXT,
	warnings_json TEXT,
	decision      TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store manages versioned trait vectors and raw answers in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection keeps ":memory:" databases coherent and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. provenance).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region create-initial
// CreateInitial stores the first version for a user and makes it active.
func (s *Store) CreateInitial(userID string, traits refine.Vector) (Record, error) {
	rec := Record{
		VersionID: uuid.New().String(),
		UserID:    userID,
		Traits:    traits.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CommitState(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// #endregion create-initial

// #region get-current
// GetCurrent reads the active version for a user.
func (s *Store) GetCurrent(userID string) (Record, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_traits WHERE user_id = ?`, userID).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("active traits for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetVersion(versionID)
}

// #endregion get-current

// #region get-version
// GetVersion retrieves a specific version by ID.
func (s *Store) GetVersion(id string) (Record, error) {
	row := s.db.QueryRow(
		`SELECT version_id, parent_id, user_id, traits_json, created_at, metrics_json
		 FROM trait_versions WHERE version_id = ?`, id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("version %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get-version

// #region commit-state
// CommitState inserts a new version and moves the user's active pointer to it
// in one transaction.
func (s *Store) CommitState(rec Record) error {
	if rec.UserID == "" {
		return errors.New("commit: empty user id")
	}
	traitsJSON, err := json.Marshal(rec.Traits)
	if err != nil {
		return fmt.Errorf("marshal traits: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO trait_versions (version_id, parent_id, user_id, traits_json, created_at, metrics_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nullIfEmpty(rec.ParentID), rec.UserID, string(traitsJSON),
		rec.CreatedAt.UTC().Format(timeLayout), nullIfEmpty(rec.MetricsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_traits (user_id, version_id) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET version_id = excluded.version_id`,
		rec.UserID, rec.VersionID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	return tx.Commit()
}

// #endregion commit-state

// #region rollback
// Rollback points the user's active vector at an earlier version of theirs.
func (s *Store) Rollback(userID, targetVersionID string) error {
	var owner string
	err := s.db.QueryRow(
		`SELECT user_id FROM trait_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("version %s: %w", targetVersionID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if owner != userID {
		return fmt.Errorf("version %s belongs to another user", targetVersionID)
	}

	_, err = s.db.Exec(`UPDATE active_traits SET version_id = ? WHERE user_id = ?`, targetVersionID, userID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list-versions
// ListVersions returns a user's most recent versions, newest first.
func (s *Store) ListVersions(userID string, limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, user_id, traits_json, created_at, metrics_json
		 FROM trait_versions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Users returns every user with an active vector.
func (s *Store) Users() ([]string, error) {
	rows, err := s.db.Query(`SELECT user_id FROM active_traits ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// #endregion list-versions

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var parentID, metricsJSON sql.NullString
	var traitsJSON, createdStr string

	if err := row.Scan(&rec.VersionID, &parentID, &rec.UserID, &traitsJSON, &createdStr, &metricsJSON); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(traitsJSON), &rec.Traits); err != nil {
		return Record{}, fmt.Errorf("unmarshal traits: %w", err)
	}
	rec.ParentID = parentID.String
	rec.MetricsJSON = metricsJSON.String
	rec.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	return rec, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
