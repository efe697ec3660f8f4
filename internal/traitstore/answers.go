package traitstore

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/adaptive-profile/internal/evidence"
	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
)

// #region answers
// SaveAnswer records an answer. A later answer to the same question replaces
// the earlier one.
func (s *Store) SaveAnswer(a evidence.Answer) error {
	if a.UserID == "" || a.QuestionID == "" {
		return fmt.Errorf("save answer: user and question ids are required")
	}
	valueJSON, err := json.Marshal(a.Value)
	if err != nil {
		return fmt.Errorf("marshal answer value: %w", err)
	}
	var derived any
	if len(a.Derived) > 0 {
		b, err := json.Marshal(a.Derived)
		if err != nil {
			return fmt.Errorf("marshal derived: %w", err)
		}
		derived = string(b)
	}
	at := a.AnsweredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err = s.db.Exec(
		`INSERT INTO answers (user_id, question_id, value_json, derived_json, answered_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, question_id) DO UPDATE SET
		   value_json = excluded.value_json,
		   derived_json = excluded.derived_json,
		   answered_at = excluded.answered_at`,
		a.UserID, a.QuestionID, string(valueJSON), derived, at.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}

// Answers loads every stored answer for a user.
func (s *Store) Answers(userID string) (evidence.Set, error) {
	rows, err := s.db.Query(
		`SELECT question_id, value_json, derived_json, answered_at
		 FROM answers WHERE user_id = ? ORDER BY answered_at, question_id`, userID,
	)
	if err != nil {
		return evidence.Set{}, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	set := evidence.NewSet()
	for rows.Next() {
		var qid, valueJSON, atStr string
		var derivedJSON *string
		if err := rows.Scan(&qid, &valueJSON, &derivedJSON, &atStr); err != nil {
			return evidence.Set{}, fmt.Errorf("scan answer: %w", err)
		}
		a := evidence.Answer{UserID: userID, QuestionID: qid}
		if err := json.Unmarshal([]byte(valueJSON), &a.Value); err != nil {
			return evidence.Set{}, fmt.Errorf("unmarshal answer %s: %w", qid, err)
		}
		if derivedJSON != nil {
			if err := json.Unmarshal([]byte(*derivedJSON), &a.Derived); err != nil {
				return evidence.Set{}, fmt.Errorf("unmarshal derived %s: %w", qid, err)
			}
		}
		a.AnsweredAt, _ = time.Parse(timeLayout, atStr)
		set.Put(a)
	}
	return set, rows.Err()
}

// #endregion answers

// #region validations
// SetValidation stores the user's verdict on a layer.
func (s *Store) SetValidation(userID string, id layer.ID, v layer.Validation) error {
	if !id.Valid() {
		return fmt.Errorf("set validation: invalid layer %d", int(id))
	}
	switch v {
	case layer.Resonates, layer.NotSure, layer.DoesntFit:
	case layer.Unvalidated:
		_, err := s.db.Exec(`DELETE FROM layer_validations WHERE user_id = ? AND layer_id = ?`, userID, int(id))
		return err
	default:
		return fmt.Errorf("set validation: unknown verdict %q", string(v))
	}
	_, err := s.db.Exec(
		`INSERT INTO layer_validations (user_id, layer_id, verdict) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, layer_id) DO UPDATE SET verdict = excluded.verdict`,
		userID, int(id), string(v),
	)
	if err != nil {
		return fmt.Errorf("set validation: %w", err)
	}
	return nil
}

// Validations returns the stored verdicts for a user.
func (s *Store) Validations(userID string) (map[layer.ID]layer.Validation, error) {
	rows, err := s.db.Query(`SELECT layer_id, verdict FROM layer_validations WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list validations: %w", err)
	}
	defer rows.Close()

	out := map[layer.ID]layer.Validation{}
	for rows.Next() {
		var id int
		var verdict string
		if err := rows.Scan(&id, &verdict); err != nil {
			return nil, fmt.Errorf("scan validation: %w", err)
		}
		out[layer.ID(id)] = layer.Validation(verdict)
	}
	return out, rows.Err()
}

// #endregion validations
