package evidence

import "strings"

// #region derive
// Derive fills in features the onboarding flow normally precomputes. Existing
// features are left alone; the returned answer owns a fresh Derived map.
func Derive(a Answer) Answer {
	derived := make(map[string]float64, len(a.Derived)+1)
	for k, v := range a.Derived {
		derived[k] = v
	}
	if _, ok := derived[DerivedTokenCount]; !ok {
		if text, ok := a.Text(); ok {
			derived[DerivedTokenCount] = float64(len(tokenize(text)))
		}
	}
	if len(derived) > 0 {
		a.Derived = derived
	}
	return a
}

// tokenize splits text into lowercase whitespace-delimited tokens.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// #endregion derive
