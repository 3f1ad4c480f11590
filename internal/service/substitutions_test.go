package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/service"
)

// playMinutes puts ids on, runs the clock for secs ticks and pauses it again.
func playMinutes(t *testing.T, svc *service.Match, secs int, ids ...string) {
	t.Helper()
	ctx := context.Background()
	for _, id := range ids {
		_, err := svc.TogglePlayer(ctx, id, false)
		require.NoError(t, err)
	}
	_, err := svc.StartClock(ctx)
	require.NoError(t, err)
	for range secs {
		require.NoError(t, svc.Tick(ctx))
	}
	_, err = svc.PauseClock(ctx)
	require.NoError(t, err)
	for _, id := range ids {
		_, err := svc.TogglePlayer(ctx, id, false)
		require.NoError(t, err)
	}
}

func TestSuggestions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := addSquad(t, f.svc, 4)
	// P1 300s, P2 150s, P3 and P4 fresh
	playMinutes(t, f.svc, 150, ids[0], ids[1])
	playMinutes(t, f.svc, 150, ids[0])
	for _, id := range ids[:2] {
		_, err := f.svc.TogglePlayer(ctx, id, false)
		require.NoError(t, err)
	}

	got := f.svc.Suggestions(ctx, 0, nil)
	require.Len(t, got, 2)
	assert.Equal(t, ids[0], got[0].Off.ID)
	assert.Equal(t, ids[2], got[0].On.ID)
	assert.Equal(t, int64(300), got[0].Diff)
	assert.Equal(t, ids[1], got[1].Off.ID)
	assert.Equal(t, ids[3], got[1].On.ID)
	assert.Equal(t, int64(150), got[1].Diff)

	assert.Len(t, f.svc.Suggestions(ctx, 1, nil), 1, "explicit max")

	_, err := f.svc.UpdateSettings(ctx, service.SettingsUpdate{MaxSuggestions: ptr(1)})
	require.NoError(t, err)
	assert.Len(t, f.svc.Suggestions(ctx, 0, nil), 1, "settings max")
}

func TestSuggestions_PositionAware(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := addSquad(t, f.svc, 3)
	playMinutes(t, f.svc, 200, ids[0])
	_, _ = f.svc.TogglePosition(ctx, ids[0], model.PositionGoalkeeper)
	_, _ = f.svc.TogglePosition(ctx, ids[1], model.PositionForward)
	_, _ = f.svc.TogglePosition(ctx, ids[2], model.PositionGoalkeeper)
	_, _ = f.svc.TogglePlayer(ctx, ids[0], false)

	plain := f.svc.Suggestions(ctx, 0, ptr(false))
	require.Len(t, plain, 1)
	assert.Equal(t, ids[1], plain[0].On.ID, "first bench player in roster order")

	aware := f.svc.Suggestions(ctx, 0, ptr(true))
	require.Len(t, aware, 1)
	assert.Equal(t, ids[2], aware[0].On.ID, "matching keeper preferred")
}

func TestExecuteSwap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := addSquad(t, f.svc, 3)
	_, _ = f.svc.TogglePlayer(ctx, ids[0], false)

	require.NoError(t, f.svc.ExecuteSwap(ctx, ids[0], ids[1]))
	lu := f.svc.Lineup(ctx)
	require.Len(t, lu.Field, 1)
	assert.Equal(t, ids[1], lu.Field[0].ID)

	// unconditional: taking a bench player off and putting an on-field player on is allowed
	require.NoError(t, f.svc.ExecuteSwap(ctx, ids[2], ids[1]))
	assert.Equal(t, 1, f.svc.Clock(ctx).OnFieldCount)

	err := f.svc.ExecuteSwap(ctx, ids[0], "ghost")
	assert.ErrorIs(t, err, service.ErrPlayerNotFound)
}

func TestStaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := addSquad(t, f.svc, 4)
	_, _ = f.svc.TogglePlayer(ctx, ids[0], false)
	_, _ = f.svc.TogglePlayer(ctx, ids[1], false)

	first, err := f.svc.Stage(ctx, ids[0], ids[2])
	require.NoError(t, err)
	assert.Equal(t, kickoff, first.CreatedAt)
	assert.Equal(t, ids[0], first.Off.ID)
	assert.Equal(t, ids[2], first.On.ID)

	tests := []struct {
		name      string
		off, on   string
		wantErr   error
		wantField string
	}{
		{name: "unknown player", off: "ghost", on: ids[3], wantErr: service.ErrPlayerNotFound},
		{name: "wrong side", off: ids[3], on: ids[1], wantErr: service.ErrInvalidInput, wantField: "off_id"},
		{name: "already staged", off: ids[0], on: ids[3], wantErr: service.ErrInvalidInput, wantField: "on_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Stage(ctx, tt.off, tt.on)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantField != "" {
				fe := service.FieldErrors(err)
				require.Len(t, fe, 1)
				assert.Equal(t, tt.wantField, fe[0].Field)
			}
		})
	}

	second, err := f.svc.Stage(ctx, ids[1], ids[3])
	require.NoError(t, err)
	assert.Len(t, f.svc.Staged(ctx), 2)

	require.NoError(t, f.svc.Unstage(ctx, second.ID))
	assert.Len(t, f.svc.Staged(ctx), 1)
	assert.ErrorIs(t, f.svc.Unstage(ctx, second.ID), service.ErrStagedNotFound)

	_, err = f.svc.Stage(ctx, ids[1], ids[3])
	require.NoError(t, err)

	n, err := f.svc.CommitStaged(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, f.svc.Staged(ctx))

	lu := f.svc.Lineup(ctx)
	assert.ElementsMatch(t, []string{ids[2], ids[3]}, []string{lu.Field[0].ID, lu.Field[1].ID})

	n, err = f.svc.CommitStaged(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "empty commit is a no-op")
}

func TestClearStaged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := addSquad(t, f.svc, 2)
	_, _ = f.svc.TogglePlayer(ctx, ids[0], false)
	_, err := f.svc.Stage(ctx, ids[0], ids[1])
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearStaged(ctx))
	assert.NotNil(t, f.svc.Staged(ctx))
	assert.Empty(t, f.svc.Staged(ctx))
}

func TestTogglePlayer_DropsAffectedStagedPairs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := addSquad(t, f.svc, 4)
	_, _ = f.svc.TogglePlayer(ctx, ids[0], false)
	_, _ = f.svc.TogglePlayer(ctx, ids[1], false)
	_, err := f.svc.Stage(ctx, ids[0], ids[2])
	require.NoError(t, err)
	_, err = f.svc.Stage(ctx, ids[1], ids[3])
	require.NoError(t, err)

	_, err = f.svc.TogglePlayer(ctx, ids[2], false)
	require.NoError(t, err)

	staged := f.svc.Staged(ctx)
	require.Len(t, staged, 1)
	assert.Equal(t, ids[1], staged[0].Off.ID)
}
