package roster

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/maxviazov/equalplay-service/internal/model"
)

// Sorted returns a display-ordered copy. Every order is stable, so equal keys keep
// roster (insertion) order.
func Sorted(players []model.Player, order model.SortOrder) []model.Player {
	out := model.ClonePlayers(players)
	if out == nil {
		return []model.Player{}
	}
	switch order {
	case model.SortName:
		slices.SortStableFunc(out, func(a, b model.Player) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case model.SortNumber:
		slices.SortStableFunc(out, compareNumbers)
	case model.SortTimeAsc:
		slices.SortStableFunc(out, func(a, b model.Player) int { return cmp.Compare(a.Seconds, b.Seconds) })
	case model.SortTimeDesc:
		slices.SortStableFunc(out, func(a, b model.Player) int { return cmp.Compare(b.Seconds, a.Seconds) })
	}
	return out
}

// compareNumbers orders jersey numbers numerically when both parse, lexically otherwise,
// and puts players without a number last.
func compareNumbers(a, b model.Player) int {
	switch {
	case a.Number == "" && b.Number == "":
		return 0
	case a.Number == "":
		return 1
	case b.Number == "":
		return -1
	}
	na, errA := strconv.Atoi(a.Number)
	nb, errB := strconv.Atoi(b.Number)
	if errA == nil && errB == nil {
		return cmp.Compare(na, nb)
	}
	return cmp.Compare(a.Number, b.Number)
}
