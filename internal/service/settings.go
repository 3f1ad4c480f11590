package service

import (
	"context"
	"strings"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/repository"
	"github.com/maxviazov/equalplay-service/internal/roster"
)

func (m *Match) Settings(context.Context) model.Settings {
	return m.read().Settings
}

// UpdateSettings applies the given values, clamping each into its allowed range.
func (m *Match) UpdateSettings(ctx context.Context, upd SettingsUpdate) (model.Settings, error) {
	st, err := m.mutate(ctx, "update_settings", func(st model.MatchState) (model.MatchState, error) {
		s := st.Settings
		if upd.FieldTarget != nil {
			s.FieldTarget = *upd.FieldTarget
		}
		if upd.HalfMinutes != nil {
			s.HalfMinutes = *upd.HalfMinutes
		}
		if upd.MaxSuggestions != nil {
			s.MaxSuggestions = *upd.MaxSuggestions
		}
		if upd.PositionAware != nil {
			s.PositionAware = *upd.PositionAware
		}
		st.Settings = s.Normalize()
		return st, nil
	})
	if err != nil {
		return model.Settings{}, err
	}
	m.log.Info().
		Int("field_target", st.Settings.FieldTarget).
		Int("half_minutes", st.Settings.HalfMinutes).
		Int("max_suggestions", st.Settings.MaxSuggestions).
		Bool("position_aware", st.Settings.PositionAware).
		Msg("settings updated")
	return st.Settings, nil
}

func (m *Match) CustomStats(context.Context) []model.CustomStat {
	stats := m.read().CustomStats
	if stats == nil {
		return []model.CustomStat{}
	}
	return stats
}

func (m *Match) AddCustomStat(ctx context.Context, name, icon string) (model.CustomStat, error) {
	if strings.TrimSpace(name) == "" {
		return model.CustomStat{}, invalidField("name", "must not be blank")
	}
	var added model.CustomStat
	_, err := m.mutate(ctx, "add_custom_stat", func(st model.MatchState) (model.MatchState, error) {
		stats, ok := roster.AddCustomStat(st.CustomStats, name, icon)
		if !ok {
			return st, repository.ErrAlreadyExists
		}
		st.CustomStats = stats
		added = stats[len(stats)-1]
		return st, nil
	})
	return added, err
}

// RemoveCustomStat deletes a stat definition. The built-in goals, assists and saves
// counters are left alone and the call succeeds without a change.
func (m *Match) RemoveCustomStat(ctx context.Context, id string) error {
	if isProtectedStat(id) {
		m.log.Debug().Str("stat_id", id).Msg("built-in stat kept")
		return nil
	}
	_, err := m.mutate(ctx, "remove_custom_stat", func(st model.MatchState) (model.MatchState, error) {
		stats, ok := roster.RemoveCustomStat(st.CustomStats, id)
		if !ok {
			return st, ErrStatNotFound
		}
		st.CustomStats = stats
		return st, nil
	})
	return err
}

func (m *Match) ToggleCustomStat(ctx context.Context, id string) (model.CustomStat, error) {
	var out model.CustomStat
	_, err := m.mutate(ctx, "toggle_custom_stat", func(st model.MatchState) (model.MatchState, error) {
		stats, ok := roster.ToggleCustomStat(st.CustomStats, id)
		if !ok {
			return st, ErrStatNotFound
		}
		st.CustomStats = stats
		for _, s := range stats {
			if s.ID == id {
				out = s
			}
		}
		return st, nil
	})
	return out, err
}

func (m *Match) SetSortPreference(ctx context.Context, pref model.SortPreference) (model.SortPreference, error) {
	st, err := m.mutate(ctx, "set_sort", func(st model.MatchState) (model.MatchState, error) {
		st.Sort = model.SortPreference{
			Field: model.ParseSortOrder(string(pref.Field)),
			Bench: model.ParseSortOrder(string(pref.Bench)),
		}
		return st, nil
	})
	return st.Sort, err
}

func (m *Match) Scoreboard(context.Context) model.Scoreboard {
	return m.read().Scoreboard
}

func (m *Match) AdjustScore(ctx context.Context, side roster.Side, delta int) (model.Scoreboard, error) {
	if !isValidSide(side) {
		return model.Scoreboard{}, invalidField("side", "must be home or away")
	}
	st, err := m.mutate(ctx, "adjust_score", func(st model.MatchState) (model.MatchState, error) {
		st.Scoreboard, _ = roster.AdjustScore(st.Scoreboard, side, delta)
		return st, nil
	})
	return st.Scoreboard, err
}

func (m *Match) RenameTeams(ctx context.Context, home, away string) (model.Scoreboard, error) {
	st, err := m.mutate(ctx, "rename_teams", func(st model.MatchState) (model.MatchState, error) {
		st.Scoreboard = roster.RenameTeams(st.Scoreboard, home, away)
		return st, nil
	})
	return st.Scoreboard, err
}
