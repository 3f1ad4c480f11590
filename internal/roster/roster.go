// Package roster holds the Roster State transforms. Each function takes the previous
// player slice and returns a fresh one; the input is never modified, so a caller that
// applies these under a single lock gets atomic read-modify-write updates for free.
//
// Invalid input never errors. Blank or duplicate names, unknown ids and negative stat
// counts degrade to a no-op or a clamp, and an outcome value tells the caller which.
package roster

import (
	"regexp"
	"strings"

	"github.com/maxviazov/equalplay-service/internal/model"
)

// IDFunc produces a fresh opaque identity.
type IDFunc func() string

// NewPlayer is the input shape for every add operation.
type NewPlayer struct {
	Name      string
	Number    string
	Positions []model.Position
}

// Add appends a single player. It reports false when the name is blank or already taken.
func Add(players []model.Player, np NewPlayer, newID IDFunc) ([]model.Player, bool) {
	out, added := AddMany(players, []NewPlayer{np}, newID)
	return out, added == 1
}

// AddMany appends every acceptable entry in order and returns how many were added.
// Duplicates are checked against the existing roster and against earlier entries in the batch.
func AddMany(players []model.Player, batch []NewPlayer, newID IDFunc) ([]model.Player, int) {
	taken := make(map[string]struct{}, len(players)+len(batch))
	for _, p := range players {
		taken[nameKey(p.Name)] = struct{}{}
	}

	out := model.ClonePlayers(players)
	if out == nil {
		out = make([]model.Player, 0, len(batch))
	}
	added := 0
	for _, np := range batch {
		name := strings.TrimSpace(np.Name)
		if name == "" {
			continue
		}
		key := nameKey(name)
		if _, dup := taken[key]; dup {
			continue
		}
		taken[key] = struct{}{}
		out = append(out, model.Player{
			ID:        newID(),
			Name:      name,
			Number:    strings.TrimSpace(np.Number),
			Stats:     map[string]int{},
			Positions: uniquePositions(np.Positions),
		})
		added++
	}
	return out, added
}

var bulkLine = regexp.MustCompile(`^(\d+)?\s*(.+)$`)

// ParseBulk reads one player per line; a leading run of digits is taken as the jersey number.
func ParseBulk(text string) []NewPlayer {
	var out []NewPlayer
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		m := bulkLine.FindStringSubmatch(line)
		if m == nil || strings.TrimSpace(m[2]) == "" {
			continue
		}
		out = append(out, NewPlayer{Name: strings.TrimSpace(m[2]), Number: m[1]})
	}
	return out
}

// Remove drops the player with the given id. It reports false when no such player exists.
func Remove(players []model.Player, id string) ([]model.Player, bool) {
	out := make([]model.Player, 0, len(players))
	found := false
	for _, p := range players {
		if p.ID == id {
			found = true
			continue
		}
		out = append(out, p.Clone())
	}
	if !found {
		return model.ClonePlayers(players), false
	}
	return out, true
}

// Find returns a copy of the player with the given id.
func Find(players []model.Player, id string) (model.Player, bool) {
	for _, p := range players {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return model.Player{}, false
}

// Partition splits the roster into on-field and bench players, preserving roster order.
func Partition(players []model.Player) (field, bench []model.Player) {
	field = make([]model.Player, 0, len(players))
	bench = make([]model.Player, 0, len(players))
	for _, p := range players {
		if p.On {
			field = append(field, p.Clone())
		} else {
			bench = append(bench, p.Clone())
		}
	}
	return field, bench
}

// OnFieldCount counts players whose on-field flag is set.
func OnFieldCount(players []model.Player) int {
	n := 0
	for _, p := range players {
		if p.On {
			n++
		}
	}
	return n
}

// ConfirmFunc is asked whether to swap outgoing off so incoming can go on a full field.
type ConfirmFunc func(incoming, outgoing model.Player) bool

// ToggleResult names what a Toggle call did.
type ToggleResult string

const (
	ToggleNotFound ToggleResult = "not_found"
	ToggledOn      ToggleResult = "on"
	ToggledOff     ToggleResult = "off"
	ToggleSwapped  ToggleResult = "swapped"
	ToggleDeclined ToggleResult = "declined"
)

// ToggleOutcome reports the result and, when the field was full, the longest-serving
// field player that was (or would have been) swapped off.
type ToggleOutcome struct {
	Result   ToggleResult
	Outgoing *model.Player
}

// Toggle flips a player's on-field flag. Turning a player on when the field already holds
// fieldTarget players requires confirm to approve swapping off the field player with the
// most accrued seconds; a nil confirm or a refusal leaves the roster unchanged.
func Toggle(players []model.Player, id string, fieldTarget int, confirm ConfirmFunc) ([]model.Player, ToggleOutcome) {
	target, ok := Find(players, id)
	if !ok {
		return model.ClonePlayers(players), ToggleOutcome{Result: ToggleNotFound}
	}

	if target.On {
		return setOn(players, map[string]bool{id: false}), ToggleOutcome{Result: ToggledOff}
	}

	if OnFieldCount(players) < fieldTarget {
		return setOn(players, map[string]bool{id: true}), ToggleOutcome{Result: ToggledOn}
	}

	outgoing, ok := longestServing(players)
	if !ok {
		return model.ClonePlayers(players), ToggleOutcome{Result: ToggleDeclined}
	}
	if confirm == nil || !confirm(target, outgoing) {
		return model.ClonePlayers(players), ToggleOutcome{Result: ToggleDeclined, Outgoing: &outgoing}
	}
	return ExecuteSwap(players, outgoing.ID, id), ToggleOutcome{Result: ToggleSwapped, Outgoing: &outgoing}
}

// longestServing picks the on-field player with the most seconds; the earliest in roster
// order wins a tie.
func longestServing(players []model.Player) (model.Player, bool) {
	var best model.Player
	found := false
	for _, p := range players {
		if !p.On {
			continue
		}
		if !found || p.Seconds > best.Seconds {
			best = p
			found = true
		}
	}
	return best.Clone(), found
}

// Pair is one off/on exchange.
type Pair struct {
	OffID string `json:"off_id"`
	OnID  string `json:"on_id"`
}

// ExecuteSwap sets offID off and onID on in one pass. Unknown ids are ignored.
func ExecuteSwap(players []model.Player, offID, onID string) []model.Player {
	return ExecuteBatch(players, []Pair{{OffID: offID, OnID: onID}})
}

// ExecuteBatch applies every pair as a single transition over the whole roster.
func ExecuteBatch(players []model.Player, pairs []Pair) []model.Player {
	want := make(map[string]bool, len(pairs)*2)
	for _, pr := range pairs {
		want[pr.OffID] = false
	}
	for _, pr := range pairs {
		want[pr.OnID] = true
	}
	return setOn(players, want)
}

func setOn(players []model.Player, want map[string]bool) []model.Player {
	out := make([]model.Player, len(players))
	for i, p := range players {
		p = p.Clone()
		if on, ok := want[p.ID]; ok {
			p.On = on
		}
		out[i] = p
	}
	return out
}

// BenchAll takes everyone off the field.
func BenchAll(players []model.Player) []model.Player {
	return mapPlayers(players, func(p *model.Player) { p.On = false })
}

// ResetMinutes zeroes every player's accrued seconds.
func ResetMinutes(players []model.Player) []model.Player {
	return mapPlayers(players, func(p *model.Player) { p.Seconds = 0 })
}

// ResetStats clears every player's stat counters.
func ResetStats(players []model.Player) []model.Player {
	return mapPlayers(players, func(p *model.Player) { p.Stats = map[string]int{} })
}

// UpdateStat adds delta to one counter, flooring the result at zero.
func UpdateStat(players []model.Player, id, statID string, delta int) ([]model.Player, bool) {
	statID = strings.TrimSpace(statID)
	if statID == "" {
		return model.ClonePlayers(players), false
	}
	found := false
	out := mapPlayers(players, func(p *model.Player) {
		if p.ID != id {
			return
		}
		found = true
		p.Stats[statID] = max(0, p.Stats[statID]+delta)
	})
	return out, found
}

// TogglePosition adds the tag if absent and removes it if present.
func TogglePosition(players []model.Player, id string, pos model.Position) ([]model.Player, bool) {
	found := false
	out := mapPlayers(players, func(p *model.Player) {
		if p.ID != id {
			return
		}
		found = true
		if p.HasPosition(pos) {
			kept := p.Positions[:0]
			for _, x := range p.Positions {
				if x != pos {
					kept = append(kept, x)
				}
			}
			p.Positions = kept
			return
		}
		p.Positions = append(p.Positions, pos)
	})
	return out, found
}

func mapPlayers(players []model.Player, fn func(p *model.Player)) []model.Player {
	out := make([]model.Player, len(players))
	for i, p := range players {
		p = p.Clone()
		fn(&p)
		out[i] = p
	}
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func uniquePositions(in []model.Position) []model.Position {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.Position, 0, len(in))
	for _, raw := range in {
		p, ok := model.ParsePosition(string(raw))
		if !ok {
			continue
		}
		dup := false
		for _, x := range out {
			if x == p {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}
