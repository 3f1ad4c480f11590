package roster_test

import (
	"testing"
	"time"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stagedAt = time.Date(2026, 5, 9, 10, 30, 0, 0, time.UTC)

func TestStage(t *testing.T) {
	players := lineup([]int64{600, 500}, []int64{0, 10})
	newID := seqIDs("s")

	staged, sub, res := roster.Stage(nil, players, "f1", "b1", stagedAt, newID)
	require.Equal(t, roster.Staged, res)
	require.NotNil(t, sub)
	assert.Equal(t, "s1", sub.ID)
	assert.Equal(t, "f1", sub.Off.ID)
	assert.Equal(t, "b1", sub.On.ID)
	assert.Equal(t, stagedAt, sub.CreatedAt)
	require.Len(t, staged, 1)

	cases := []struct {
		name    string
		off, on string
		want    roster.StageResult
	}{
		{"unknown player", "f2", "zz", roster.StageNotFound},
		{"off player on bench", "b2", "f2", roster.StageWrongSide},
		{"both on field", "f2", "f1", roster.StageWrongSide},
		{"off player already staged", "f1", "b2", roster.StageAlreadyUsed},
		{"on player already staged", "f2", "b1", roster.StageAlreadyUsed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, sub, res := roster.Stage(staged, players, tc.off, tc.on, stagedAt, newID)
			assert.Equal(t, tc.want, res)
			assert.Nil(t, sub)
			assert.Len(t, out, 1)
		})
	}

	staged, _, res = roster.Stage(staged, players, "f2", "b2", stagedAt, newID)
	require.Equal(t, roster.Staged, res)
	assert.Equal(t, []roster.Pair{{OffID: "f1", OnID: "b1"}, {OffID: "f2", OnID: "b2"}}, roster.StagedPairs(staged))
}

func TestUnstageAndPrune(t *testing.T) {
	players := lineup([]int64{600, 500}, []int64{0, 10})
	newID := seqIDs("s")
	staged, _, _ := roster.Stage(nil, players, "f1", "b1", stagedAt, newID)
	staged, _, _ = roster.Stage(staged, players, "f2", "b2", stagedAt, newID)

	out, ok := roster.Unstage(staged, "s1")
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "s2", out[0].ID)

	_, ok = roster.Unstage(staged, "nope")
	assert.False(t, ok)

	remaining, _ := roster.Remove(players, "b2")
	pruned := roster.PruneStaged(staged, remaining)
	require.Len(t, pruned, 1)
	assert.Equal(t, "s1", pruned[0].ID)
}

func TestCommitStagedBatch(t *testing.T) {
	players := lineup([]int64{600, 500, 400}, []int64{0, 10})
	newID := seqIDs("s")
	staged, _, _ := roster.Stage(nil, players, "f1", "b1", stagedAt, newID)
	staged, _, _ = roster.Stage(staged, players, "f2", "b2", stagedAt, newID)

	out := roster.ExecuteBatch(players, roster.StagedPairs(staged))
	assert.Equal(t, []string{"f3", "b1", "b2"}, onIDs(out))
	assert.Equal(t, 3, roster.OnFieldCount(out))
	assert.Equal(t, model.Player{ID: "f1", Seconds: 600, Stats: map[string]int{}}, out[0])
}
