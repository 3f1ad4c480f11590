package service

import (
	"context"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/roster"
)

func (m *Match) Players(_ context.Context, order model.SortOrder) []model.Player {
	return roster.Sorted(m.read().Players, order)
}

// Lineup splits the roster and orders each side by the stored preference.
func (m *Match) Lineup(context.Context) Lineup {
	st := m.read()
	field, bench := roster.Partition(st.Players)
	return Lineup{
		Field: roster.Sorted(field, st.Sort.Field),
		Bench: roster.Sorted(bench, st.Sort.Bench),
	}
}

func (m *Match) AddPlayer(ctx context.Context, np roster.NewPlayer) (AddResult, error) {
	return m.AddPlayers(ctx, []roster.NewPlayer{np})
}

// AddPlayers appends every acceptable entry; blank and duplicate names are counted as rejected.
func (m *Match) AddPlayers(ctx context.Context, batch []roster.NewPlayer) (AddResult, error) {
	var res AddResult
	_, err := m.mutate(ctx, "add_players", func(st model.MatchState) (model.MatchState, error) {
		before := len(st.Players)
		players, added := roster.AddMany(st.Players, batch, m.opts.NewID)
		st.Players = players
		res.Added = model.ClonePlayers(players[before:])
		res.Rejected = len(batch) - added
		return st, nil
	})
	if err != nil {
		return AddResult{}, err
	}
	if res.Added == nil {
		res.Added = []model.Player{}
	}
	m.log.Info().Int("added", len(res.Added)).Int("rejected", res.Rejected).Msg("players added")
	return res, nil
}

// AddPlayersFromText parses "[number] name" lines and adds them as one batch.
func (m *Match) AddPlayersFromText(ctx context.Context, text string) (AddResult, error) {
	return m.AddPlayers(ctx, roster.ParseBulk(text))
}

// RemovePlayer also drops any staged pair that referenced the player.
func (m *Match) RemovePlayer(ctx context.Context, id string) error {
	_, err := m.mutate(ctx, "remove_player", func(st model.MatchState) (model.MatchState, error) {
		players, ok := roster.Remove(st.Players, id)
		if !ok {
			return st, ErrPlayerNotFound
		}
		st.Players = players
		st.Staged = roster.PruneStaged(st.Staged, players)
		return st, nil
	})
	if err == nil {
		m.log.Info().Str("player_id", id).Msg("player removed")
	}
	return err
}

// TogglePlayer flips a player's on-field flag. When the field is full and confirmSwap is
// false the roster is left alone and a *FieldFullError names the proposed outgoing player.
func (m *Match) TogglePlayer(ctx context.Context, id string, confirmSwap bool) (ToggleResult, error) {
	var res ToggleResult
	_, err := m.mutate(ctx, "toggle_player", func(st model.MatchState) (model.MatchState, error) {
		players, out := roster.Toggle(st.Players, id, st.Settings.FieldTarget, func(model.Player, model.Player) bool {
			return confirmSwap
		})
		switch out.Result {
		case roster.ToggleNotFound:
			return st, ErrPlayerNotFound
		case roster.ToggleDeclined:
			incoming, _ := roster.Find(st.Players, id)
			return st, &FieldFullError{Incoming: incoming, Outgoing: out.Outgoing}
		}
		st.Players = players
		// a player who changed sides can no longer be part of a staged pair as recorded
		st.Staged = dropStagedFor(st.Staged, id, out.Outgoing)
		res.Result = out.Result
		res.Player, _ = roster.Find(players, id)
		if out.Outgoing != nil {
			o, _ := roster.Find(players, out.Outgoing.ID)
			res.Outgoing = &o
		}
		return st, nil
	})
	if err != nil {
		return ToggleResult{}, err
	}
	ev := m.log.Info().Str("player_id", id).Str("result", string(res.Result))
	if res.Outgoing != nil {
		ev = ev.Str("outgoing_id", res.Outgoing.ID)
	}
	ev.Msg("player toggled")
	return res, nil
}

func dropStagedFor(staged []model.StagedSubstitution, id string, other *model.Player) []model.StagedSubstitution {
	out := make([]model.StagedSubstitution, 0, len(staged))
	for _, s := range staged {
		if involves(s, id) || (other != nil && involves(s, other.ID)) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func involves(s model.StagedSubstitution, id string) bool {
	return s.Off.ID == id || s.On.ID == id
}

func (m *Match) UpdateStat(ctx context.Context, playerID, statID string, delta int) (model.Player, error) {
	var p model.Player
	_, err := m.mutate(ctx, "update_stat", func(st model.MatchState) (model.MatchState, error) {
		if !statKnown(st.CustomStats, statID) {
			return st, ErrStatNotFound
		}
		players, ok := roster.UpdateStat(st.Players, playerID, statID, delta)
		if !ok {
			return st, ErrPlayerNotFound
		}
		st.Players = players
		p, _ = roster.Find(players, playerID)
		return st, nil
	})
	return p, err
}

func statKnown(stats []model.CustomStat, id string) bool {
	for _, s := range stats {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (m *Match) TogglePosition(ctx context.Context, playerID string, pos model.Position) (model.Player, error) {
	parsed, ok := model.ParsePosition(string(pos))
	if !ok {
		return model.Player{}, invalidField("position", "must be one of GK, DEF, MID, FWD")
	}
	var p model.Player
	_, err := m.mutate(ctx, "toggle_position", func(st model.MatchState) (model.MatchState, error) {
		players, ok := roster.TogglePosition(st.Players, playerID, parsed)
		if !ok {
			return st, ErrPlayerNotFound
		}
		st.Players = players
		p, _ = roster.Find(players, playerID)
		return st, nil
	})
	return p, err
}

// BenchAll takes everyone off and discards staged pairs, which no longer describe valid swaps.
func (m *Match) BenchAll(ctx context.Context) error {
	_, err := m.mutate(ctx, "bench_all", func(st model.MatchState) (model.MatchState, error) {
		st.Players = roster.BenchAll(st.Players)
		st.Staged = []model.StagedSubstitution{}
		return st, nil
	})
	return err
}

func (m *Match) ResetStats(ctx context.Context) error {
	_, err := m.mutate(ctx, "reset_stats", func(st model.MatchState) (model.MatchState, error) {
		st.Players = roster.ResetStats(st.Players)
		return st, nil
	})
	return err
}
