package service

import (
	"context"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/roster"
	"github.com/maxviazov/equalplay-service/internal/substitution"
)

// Suggestions derives swap proposals from the live roster. maxCount <= 0 and a nil
// positionAware fall back to the stored settings.
func (m *Match) Suggestions(_ context.Context, maxCount int, positionAware *bool) []model.Suggestion {
	st := m.read()
	limit := st.Settings.MaxSuggestions
	if maxCount > 0 {
		limit = model.ClampSuggestions(maxCount)
	}
	aware := st.Settings.PositionAware
	if positionAware != nil {
		aware = *positionAware
	}
	field, bench := roster.Partition(st.Players)
	return substitution.Suggest(field, bench, limit, aware)
}

// ExecuteSwap takes offID off and puts onID on in one step, whatever side each was on.
func (m *Match) ExecuteSwap(ctx context.Context, offID, onID string) error {
	_, err := m.mutate(ctx, "execute_swap", func(st model.MatchState) (model.MatchState, error) {
		_, okOff := roster.Find(st.Players, offID)
		on, okOn := roster.Find(st.Players, onID)
		if !okOff || !okOn {
			return st, ErrPlayerNotFound
		}
		st.Players = roster.ExecuteSwap(st.Players, offID, onID)
		st.Staged = dropStagedFor(st.Staged, offID, &on)
		return st, nil
	})
	if err == nil {
		m.log.Info().Str("off_id", offID).Str("on_id", onID).Msg("substitution executed")
	}
	return err
}

func (m *Match) Staged(context.Context) []model.StagedSubstitution {
	st := m.read()
	if st.Staged == nil {
		return []model.StagedSubstitution{}
	}
	return st.Staged
}

func (m *Match) Stage(ctx context.Context, offID, onID string) (model.StagedSubstitution, error) {
	var created model.StagedSubstitution
	_, err := m.mutate(ctx, "stage", func(st model.MatchState) (model.MatchState, error) {
		staged, sub, res := roster.Stage(st.Staged, st.Players, offID, onID, m.opts.Now().UTC(), m.opts.NewID)
		switch res {
		case roster.StageNotFound:
			return st, ErrPlayerNotFound
		case roster.StageWrongSide:
			return st, invalidField("off_id", "must be on the field while on_id is on the bench")
		case roster.StageAlreadyUsed:
			return st, invalidField("on_id", "player is already part of a staged substitution")
		}
		st.Staged = staged
		created = *sub
		return st, nil
	})
	return created, err
}

func (m *Match) Unstage(ctx context.Context, id string) error {
	_, err := m.mutate(ctx, "unstage", func(st model.MatchState) (model.MatchState, error) {
		staged, ok := roster.Unstage(st.Staged, id)
		if !ok {
			return st, ErrStagedNotFound
		}
		st.Staged = staged
		return st, nil
	})
	return err
}

func (m *Match) ClearStaged(ctx context.Context) error {
	_, err := m.mutate(ctx, "clear_staged", func(st model.MatchState) (model.MatchState, error) {
		st.Staged = []model.StagedSubstitution{}
		return st, nil
	})
	return err
}

// CommitStaged executes every pending pair as one roster transition and clears the list.
// It returns the number of pairs applied.
func (m *Match) CommitStaged(ctx context.Context) (int, error) {
	var n int
	_, err := m.mutate(ctx, "commit_staged", func(st model.MatchState) (model.MatchState, error) {
		n = len(st.Staged)
		if n == 0 {
			return st, nil
		}
		st.Players = roster.ExecuteBatch(st.Players, roster.StagedPairs(st.Staged))
		st.Staged = []model.StagedSubstitution{}
		return st, nil
	})
	if err == nil && n > 0 {
		m.log.Info().Int("pairs", n).Msg("staged substitutions committed")
	}
	return n, err
}
