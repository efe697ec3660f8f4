package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
)

//go:embed blueprint.json
var blueprintJSON []byte

// #region catalog
// Catalog is the immutable question lookup loaded once at process start.
type Catalog struct {
	questions map[string]Question
	order     []string
}

// Parse decodes a JSON array of questions and validates it.
func Parse(data []byte) (*Catalog, error) {
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(qs)
}

// Load reads a catalog file from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the built-in Blueprint catalog.
func Default() *Catalog {
	c, err := Parse(blueprintJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded blueprint catalog: %v", err))
	}
	return c
}

// New builds a catalog from already-decoded questions.
func New(qs []Question) (*Catalog, error) {
	c := &Catalog{
		questions: make(map[string]Question, len(qs)),
		order:     make([]string, 0, len(qs)),
	}
	for i, q := range qs {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: empty question_id", i)
		}
		if _, dup := c.questions[q.ID]; dup {
			return nil, fmt.Errorf("question %s: duplicate question_id", q.ID)
		}
		if !q.Type.Valid() {
			return nil, fmt.Errorf("question %s: %w: %q", q.ID, ErrUnsupportedQuestionType, string(q.Type))
		}
		for _, m := range q.MapsTo {
			if m.TraitID == "" {
				return nil, fmt.Errorf("question %s: mapping with empty trait_id", q.ID)
			}
		}
		q.MapsTo = append([]TraitMapping(nil), q.MapsTo...)
		c.questions[q.ID] = q
		c.order = append(c.order, q.ID)
	}
	return c, nil
}

// #endregion catalog

// #region lookup
// Lookup returns the question with the given id.
func (c *Catalog) Lookup(id string) (Question, error) {
	q, ok := c.questions[id]
	if !ok {
		return Question{}, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	q.MapsTo = append([]TraitMapping(nil), q.MapsTo...)
	return q, nil
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Questions returns every question in declaration order.
func (c *Catalog) Questions() []Question {
	out := make([]Question, 0, len(c.order))
	for _, id := range c.order {
		q, _ := c.Lookup(id)
		out = append(out, q)
	}
	return out
}

// TraitIDs returns the sorted set of traits any question maps to.
func (c *Catalog) TraitIDs() []string {
	seen := map[string]struct{}{}
	for _, q := range c.questions {
		for _, m := range q.MapsTo {
			seen[m.TraitID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// #endregion lookup
