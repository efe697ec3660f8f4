package catalog

import "errors"

// #region question-type
// QuestionType identifies how a raw response is normalized.
type QuestionType string

const (
	Likert5  QuestionType = "likert_5"
	EitherOr QuestionType = "either_or"
)

// Valid reports whether the engine knows how to normalize this type.
func (t QuestionType) Valid() bool {
	return t == Likert5 || t == EitherOr
}

// #endregion question-type

// #region question
// TraitMapping routes a normalized response into one trait. Weights are
// signed and not normalized.
type TraitMapping struct {
	TraitID string  `json:"trait_id"`
	Weight  float64 `json:"weight"`
}

// Question is a single catalog entry.
type Question struct {
	ID     string         `json:"question_id"`
	Layer  int            `json:"layer"`
	Type   QuestionType   `json:"type"`
	Prompt string         `json:"prompt"`
	MapsTo []TraitMapping `json:"maps_to"`
}

// #endregion question

// #region errors
var (
	// ErrQuestionNotFound is returned when a question id is absent from the catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUnsupportedQuestionType means the catalog and engine disagree on response types.
	ErrUnsupportedQuestionType = errors.New("unsupported question type")
	// ErrInvalidResponse is returned for a payload that does not fit its question type.
	ErrInvalidResponse = errors.New("invalid response value")
)

// #endregion errors
