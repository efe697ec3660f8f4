package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLikertExactPoints(t *testing.T) {
	want := []float64{-1, -0.5, 0, 0.5, 1}
	prev := -2.0
	for idx, w := range want {
		got, err := Normalize(Likert5, idx)
		require.NoError(t, err)
		assert.Equal(t, w, got, "index %d", idx)
		assert.Greater(t, got, prev, "normalize must be increasing")
		prev = got
	}
}

func TestNormalizeLikertAcceptsDecodedNumbers(t *testing.T) {
	got, err := Normalize(Likert5, float64(4))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = Normalize(Likert5, "1")
	require.NoError(t, err)
	assert.Equal(t, -0.5, got)
}

func TestNormalizeLikertRejectsOutOfRange(t *testing.T) {
	for _, v := range []any{-1, 5, 2.5, "x", true, nil} {
		_, err := Normalize(Likert5, v)
		assert.ErrorIs(t, err, ErrInvalidResponse, "value %v", v)
	}
}

func TestNormalizeEitherOr(t *testing.T) {
	a, err := Normalize(EitherOr, "A")
	require.NoError(t, err)
	assert.Equal(t, -1.0, a)

	b, err := Normalize(EitherOr, "b")
	require.NoError(t, err)
	assert.Equal(t, 1.0, b)

	_, err = Normalize(EitherOr, "C")
	assert.ErrorIs(t, err, ErrInvalidResponse)
	_, err = Normalize(EitherOr, 1)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestNormalizeUnsupportedType(t *testing.T) {
	_, err := Normalize(QuestionType("slider_10"), 3)
	assert.ErrorIs(t, err, ErrUnsupportedQuestionType)
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, 44, c.Len())

	q, err := c.Lookup("BLUEPRINT.02")
	require.NoError(t, err)
	assert.Equal(t, 1, q.Layer)
	assert.Equal(t, Likert5, q.Type)
	assert.NotEmpty(t, q.MapsTo)

	_, err = c.Lookup("BLUEPRINT.01")
	assert.ErrorIs(t, err, ErrQuestionNotFound, "free-text self description is not refinable")

	ids := c.TraitIDs()
	assert.Contains(t, ids, "extraversion")
	assert.IsIncreasing(t, ids)
}

func TestLookupReturnsCopy(t *testing.T) {
	c := Default()
	q, err := c.Lookup("BLUEPRINT.04")
	require.NoError(t, err)
	q.MapsTo[0].Weight = 99

	again, err := c.Lookup("BLUEPRINT.04")
	require.NoError(t, err)
	assert.NotEqual(t, 99.0, again.MapsTo[0].Weight)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"unknown type": `[{"question_id":"Q1","layer":1,"type":"slider","prompt":"p","maps_to":[]}]`,
		"duplicate":    `[{"question_id":"Q1","type":"likert_5"},{"question_id":"Q1","type":"likert_5"}]`,
		"empty id":     `[{"question_id":"","type":"likert_5"}]`,
		"empty trait":  `[{"question_id":"Q1","type":"likert_5","maps_to":[{"trait_id":"","weight":1}]}]`,
		"not json":     `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte(cases["unknown type"]))
	assert.ErrorIs(t, err, ErrUnsupportedQuestionType)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `[{"question_id":"Q1","layer":2,"type":"either_or","prompt":"A or B?","maps_to":[{"trait_id":"X","weight":-0.5}]}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	q, err := c.Lookup("Q1")
	require.NoError(t, err)
	assert.Equal(t, EitherOr, q.Type)
	assert.Equal(t, []TraitMapping{{TraitID: "X", Weight: -0.5}}, q.MapsTo)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
