package roster

import (
	"time"

	"github.com/maxviazov/equalplay-service/internal/model"
)

// StageResult names what a Stage call did.
type StageResult string

const (
	Staged           StageResult = "staged"
	StageNotFound    StageResult = "not_found"
	StageWrongSide   StageResult = "wrong_side"
	StageAlreadyUsed StageResult = "already_staged"
)

// Stage records a pending swap of an on-field player for a bench player. Each player may
// take part in at most one pending pair so the batch stays a clean one-for-one exchange.
func Stage(staged []model.StagedSubstitution, players []model.Player, offID, onID string, now time.Time, newID IDFunc) ([]model.StagedSubstitution, *model.StagedSubstitution, StageResult) {
	out := cloneStaged(staged)

	off, okOff := Find(players, offID)
	on, okOn := Find(players, onID)
	if !okOff || !okOn {
		return out, nil, StageNotFound
	}
	if !off.On || on.On {
		return out, nil, StageWrongSide
	}
	for _, s := range staged {
		if s.Off.ID == offID || s.On.ID == onID || s.Off.ID == onID || s.On.ID == offID {
			return out, nil, StageAlreadyUsed
		}
	}

	sub := model.StagedSubstitution{ID: newID(), Off: off, On: on, CreatedAt: now}
	out = append(out, sub)
	created := sub
	return out, &created, Staged
}

// Unstage drops a single pending pair by id.
func Unstage(staged []model.StagedSubstitution, id string) ([]model.StagedSubstitution, bool) {
	out := make([]model.StagedSubstitution, 0, len(staged))
	found := false
	for _, s := range staged {
		if s.ID == id {
			found = true
			continue
		}
		out = append(out, s)
	}
	return cloneStaged(out), found
}

// PruneStaged removes pairs that reference players no longer on the roster.
func PruneStaged(staged []model.StagedSubstitution, players []model.Player) []model.StagedSubstitution {
	ids := make(map[string]struct{}, len(players))
	for _, p := range players {
		ids[p.ID] = struct{}{}
	}
	out := make([]model.StagedSubstitution, 0, len(staged))
	for _, s := range staged {
		_, offOK := ids[s.Off.ID]
		_, onOK := ids[s.On.ID]
		if offOK && onOK {
			out = append(out, s)
		}
	}
	return cloneStaged(out)
}

// StagedPairs projects pending substitutions onto the id pairs ExecuteBatch consumes.
func StagedPairs(staged []model.StagedSubstitution) []Pair {
	out := make([]Pair, len(staged))
	for i, s := range staged {
		out[i] = Pair{OffID: s.Off.ID, OnID: s.On.ID}
	}
	return out
}

func cloneStaged(in []model.StagedSubstitution) []model.StagedSubstitution {
	out := make([]model.StagedSubstitution, len(in))
	for i, s := range in {
		s.Off = s.Off.Clone()
		s.On = s.On.Clone()
		out[i] = s
	}
	return out
}
