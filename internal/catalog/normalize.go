package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// #region normalize
// Normalize maps a raw response onto [-1, +1].
//
// likert_5 takes an index 0..4 with 2 as neutral; either_or takes "A" (-1)
// or "B" (+1). Any other type fails with ErrUnsupportedQuestionType.
func Normalize(qt QuestionType, value any) (float64, error) {
	switch qt {
	case Likert5:
		idx, err := likertIndex(value)
		if err != nil {
			return 0, err
		}
		return float64(idx-2) / 2, nil
	case EitherOr:
		tok, ok := value.(string)
		if !ok {
			return 0, fmt.Errorf("%w: either_or expects a string token, got %T", ErrInvalidResponse, value)
		}
		switch strings.ToUpper(strings.TrimSpace(tok)) {
		case "A":
			return -1, nil
		case "B":
			return 1, nil
		}
		return 0, fmt.Errorf("%w: either_or token %q", ErrInvalidResponse, tok)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedQuestionType, string(qt))
	}
}

// likertIndex accepts the numeric shapes a JSON decoder or a Go caller may hand us.
func likertIndex(value any) (int, error) {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: likert index %q", ErrInvalidResponse, v.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: likert index %q", ErrInvalidResponse, v)
		}
		f = float64(parsed)
	default:
		return 0, fmt.Errorf("%w: likert expects an integer index, got %T", ErrInvalidResponse, value)
	}
	if f != math.Trunc(f) || f < 0 || f > 4 {
		return 0, fmt.Errorf("%w: likert index %v outside 0..4", ErrInvalidResponse, f)
	}
	return int(f), nil
}

// #endregion normalize
