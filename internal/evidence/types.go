package evidence

import "time"

// #region answer
// Answer is one recorded response. Value carries the raw payload: a string,
// an enum token, a list, or a numeric Likert index. Derived holds features
// precomputed upstream (for example "token_count").
type Answer struct {
	UserID     string             `json:"user_id"`
	QuestionID string             `json:"question_id"`
	AnsweredAt time.Time          `json:"answered_at"`
	Value      any                `json:"value"`
	Derived    map[string]float64 `json:"derived,omitempty"`
}

// DerivedTokenCount is the feature key for the word count of a free-text answer.
const DerivedTokenCount = "token_count"

// Feature returns a derived feature and whether it was present.
func (a Answer) Feature(key string) (float64, bool) {
	if a.Derived == nil {
		return 0, false
	}
	v, ok := a.Derived[key]
	return v, ok
}

// Text returns the payload as a string when it is one.
func (a Answer) Text() (string, bool) {
	s, ok := a.Value.(string)
	return s, ok
}

// #endregion answer

// #region set
// Set holds the latest answer per question id. A later Put for the same
// question replaces the earlier one.
type Set struct {
	byQuestion map[string]Answer
}

// NewSet builds a Set, applying answers in order.
func NewSet(answers ...Answer) Set {
	s := Set{byQuestion: make(map[string]Answer, len(answers))}
	for _, a := range answers {
		s.Put(a)
	}
	return s
}

// Put records an answer, replacing any prior answer to the same question.
func (s *Set) Put(a Answer) {
	if s.byQuestion == nil {
		s.byQuestion = map[string]Answer{}
	}
	s.byQuestion[a.QuestionID] = a
}

// Get returns the answer for a question id.
func (s Set) Get(questionID string) (Answer, bool) {
	a, ok := s.byQuestion[questionID]
	return a, ok
}

// Has reports whether the question has been answered.
func (s Set) Has(questionID string) bool {
	_, ok := s.byQuestion[questionID]
	return ok
}

// Len returns the number of distinct answered questions.
func (s Set) Len() int {
	return len(s.byQuestion)
}

// #endregion set
