package climate

import (
	"math"
	"sort"
	"strings"
)

const (
	// MinCohort is the smallest team for which aggregates are computed.
	MinCohort = 5
	// SuppressedReason is the reason attached to every withheld result.
	SuppressedReason = "insufficient data for anonymity"

	coreStrengthCount = 3
	pressureMinShare  = 2
)

// #region calculate
// Calculate aggregates member signals into a team climate. The cohort check
// runs before any member record is read, so small teams are never processed.
// Both the declared member count and the number of records must reach
// MinCohort: a memberCount of 5 with only 4 records is withheld, even though
// the declared count alone would pass.
func Calculate(members []MemberSignal, memberCount int) Result {
	if memberCount < MinCohort || len(members) < MinCohort {
		return Withheld{Reason: SuppressedReason}
	}

	var pace, safety, clarity float64
	frictions := counter{}
	strengths := counter{}
	pressure := counter{}
	for _, m := range members {
		pace += clampScore(m.Pace)
		safety += clampScore(m.Safety)
		clarity += clampScore(m.Clarity)
		frictions.addUnique(m.Frictions)
		strengths.addUnique(m.Strengths)
		pressure.addUnique(m.PressureTags)
	}
	n := float64(len(members))

	c := Climate{
		Pace:          round1(pace / n),
		Safety:        round1(safety / n),
		Clarity:       round1(clarity / n),
		CoreStrengths: strengths.top(coreStrengthCount, 1),
		PressureTags:  pressure.top(0, pressureMinShare),
	}
	if top := frictions.top(1, 1); len(top) == 1 {
		c.TopFriction = top[0]
	}
	return c
}

// #endregion calculate

// #region helpers
// counter counts each tag once per member.
type counter map[string]int

func (c counter) addUnique(tags []string) {
	seen := map[string]struct{}{}
	for _, raw := range tags {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		c[tag]++
	}
}

// top returns tags with at least minCount hits, most frequent first, ties
// alphabetical. limit <= 0 means no limit.
func (c counter) top(limit, minCount int) []string {
	tags := make([]string, 0, len(c))
	for tag, n := range c {
		if n >= minCount {
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		if c[tags[i]] != c[tags[j]] {
			return c[tags[i]] > c[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// #endregion helpers
