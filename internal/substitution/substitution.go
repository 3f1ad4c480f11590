// Package substitution proposes one-for-one swaps that even out playing time.
//
// Matching is greedy and order dependent: field players are visited from most to least
// accrued time and each takes the first eligible bench player in least-played order.
// A position-aware pass runs first when tag data exists, then a time-only pass fills
// whatever slots remain.
package substitution

import (
	"cmp"
	"slices"

	"github.com/maxviazov/equalplay-service/internal/model"
)

// MinDiffSeconds is the strict lower bound on the field-minus-bench gap for a suggestion.
const MinDiffSeconds int64 = 60

// Suggest returns at most maxSuggestions swaps. No player appears in more than one pair
// and every pair's Diff is strictly greater than MinDiffSeconds.
func Suggest(onField, bench []model.Player, maxSuggestions int, positionAware bool) []model.Suggestion {
	if len(onField) == 0 || len(bench) == 0 || maxSuggestions <= 0 {
		return []model.Suggestion{}
	}

	field := slices.Clone(onField)
	slices.SortStableFunc(field, func(a, b model.Player) int { return cmp.Compare(b.Seconds, a.Seconds) })
	subs := slices.Clone(bench)
	slices.SortStableFunc(subs, func(a, b model.Player) int { return cmp.Compare(a.Seconds, b.Seconds) })

	m := matcher{
		field:     field,
		bench:     subs,
		usedField: make([]bool, len(field)),
		usedBench: make([]bool, len(subs)),
		limit:     maxSuggestions,
		out:       make([]model.Suggestion, 0, min(maxSuggestions, len(field), len(subs))),
	}

	if positionAware && hasPositionData(field, subs) {
		m.pass(compatible)
	}
	m.pass(func(model.Player, model.Player) bool { return true })
	return m.out
}

type matcher struct {
	field, bench         []model.Player
	usedField, usedBench []bool
	limit                int
	out                  []model.Suggestion
}

func (m *matcher) pass(eligible func(off, on model.Player) bool) {
	for i, off := range m.field {
		if len(m.out) >= m.limit {
			return
		}
		if m.usedField[i] {
			continue
		}
		for j, on := range m.bench {
			if m.usedBench[j] {
				continue
			}
			diff := off.Seconds - on.Seconds
			if diff <= MinDiffSeconds || !eligible(off, on) {
				continue
			}
			m.out = append(m.out, model.Suggestion{Off: off.Clone(), On: on.Clone(), Diff: diff})
			m.usedField[i] = true
			m.usedBench[j] = true
			break
		}
	}
}

// compatible holds when either player is untagged or their tag sets intersect.
func compatible(a, b model.Player) bool {
	if len(a.Positions) == 0 || len(b.Positions) == 0 {
		return true
	}
	for _, p := range a.Positions {
		if b.HasPosition(p) {
			return true
		}
	}
	return false
}

func hasPositionData(groups ...[]model.Player) bool {
	for _, g := range groups {
		for _, p := range g {
			if len(p.Positions) > 0 {
				return true
			}
		}
	}
	return false
}
