package roster_test

import (
	"fmt"
	"testing"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs(prefix string) roster.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func ids(players []model.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

func onIDs(players []model.Player) []string {
	var out []string
	for _, p := range players {
		if p.On {
			out = append(out, p.ID)
		}
	}
	return out
}

func TestAdd(t *testing.T) {
	players, ok := roster.Add(nil, roster.NewPlayer{Name: "  Ava  ", Number: " 7 "}, seqIDs("p"))
	require.True(t, ok)
	require.Len(t, players, 1)
	assert.Equal(t, model.Player{ID: "p1", Name: "Ava", Number: "7", Stats: map[string]int{}}, players[0])

	cases := []struct {
		name string
		in   string
	}{
		{"blank", "   "},
		{"exact duplicate", "Ava"},
		{"case-insensitive duplicate", "aVA"},
		{"padded duplicate", " ava "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, ok := roster.Add(players, roster.NewPlayer{Name: tc.in}, seqIDs("x"))
			assert.False(t, ok)
			assert.Equal(t, players, out)
		})
	}
}

func TestAddMany(t *testing.T) {
	existing, _ := roster.Add(nil, roster.NewPlayer{Name: "Ava"}, seqIDs("e"))
	batch := []roster.NewPlayer{
		{Name: "Ben", Positions: []model.Position{"def", "DEF", "Midfield", "striker"}},
		{Name: "ava"},
		{Name: ""},
		{Name: "Cleo"},
		{Name: "BEN"},
	}

	out, added := roster.AddMany(existing, batch, seqIDs("n"))

	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"e1", "n1", "n2"}, ids(out))
	assert.Equal(t, []model.Position{model.PositionDefense, model.PositionMidfield}, out[1].Positions)
	assert.Len(t, existing, 1, "input slice must not grow")
}

func TestParseBulk(t *testing.T) {
	text := "10 Ava\n\n  Ben  \n7Cleo\n   \n23   Dev Patel\n"
	got := roster.ParseBulk(text)
	assert.Equal(t, []roster.NewPlayer{
		{Name: "Ava", Number: "10"},
		{Name: "Ben"},
		{Name: "Cleo", Number: "7"},
		{Name: "Dev Patel", Number: "23"},
	}, got)
}

func TestRemoveAndFind(t *testing.T) {
	players, _ := roster.AddMany(nil, []roster.NewPlayer{{Name: "A"}, {Name: "B"}, {Name: "C"}}, seqIDs("p"))

	out, ok := roster.Remove(players, "p2")
	require.True(t, ok)
	assert.Equal(t, []string{"p1", "p3"}, ids(out))

	_, ok = roster.Remove(players, "missing")
	assert.False(t, ok)

	p, ok := roster.Find(players, "p3")
	require.True(t, ok)
	assert.Equal(t, "C", p.Name)
	_, ok = roster.Find(players, "nope")
	assert.False(t, ok)
}

func lineup(fieldSecs []int64, benchSecs []int64) []model.Player {
	var out []model.Player
	for i, s := range fieldSecs {
		out = append(out, model.Player{ID: fmt.Sprintf("f%d", i+1), On: true, Seconds: s, Stats: map[string]int{}})
	}
	for i, s := range benchSecs {
		out = append(out, model.Player{ID: fmt.Sprintf("b%d", i+1), Seconds: s, Stats: map[string]int{}})
	}
	return out
}

func TestToggle(t *testing.T) {
	always := func(model.Player, model.Player) bool { return true }
	never := func(model.Player, model.Player) bool { return false }

	t.Run("unknown id", func(t *testing.T) {
		_, out := roster.Toggle(lineup(nil, []int64{0}), "zz", 7, always)
		assert.Equal(t, roster.ToggleNotFound, out.Result)
	})

	t.Run("field player goes off", func(t *testing.T) {
		players, out := roster.Toggle(lineup([]int64{10}, nil), "f1", 7, nil)
		assert.Equal(t, roster.ToggledOff, out.Result)
		assert.Empty(t, onIDs(players))
	})

	t.Run("bench player goes on with room", func(t *testing.T) {
		players, out := roster.Toggle(lineup([]int64{10}, []int64{0}), "b1", 2, nil)
		assert.Equal(t, roster.ToggledOn, out.Result)
		assert.Equal(t, []string{"f1", "b1"}, onIDs(players))
	})

	t.Run("full field declined leaves roster unchanged", func(t *testing.T) {
		in := lineup([]int64{100, 300, 200}, []int64{0})
		players, out := roster.Toggle(in, "b1", 3, never)
		assert.Equal(t, roster.ToggleDeclined, out.Result)
		require.NotNil(t, out.Outgoing)
		assert.Equal(t, "f2", out.Outgoing.ID)
		assert.Equal(t, in, players)
	})

	t.Run("nil confirm declines", func(t *testing.T) {
		_, out := roster.Toggle(lineup([]int64{1}, []int64{0}), "b1", 1, nil)
		assert.Equal(t, roster.ToggleDeclined, out.Result)
	})

	t.Run("confirmed swap replaces the longest-serving player", func(t *testing.T) {
		players, out := roster.Toggle(lineup([]int64{100, 300, 200}, []int64{0}), "b1", 3, always)
		assert.Equal(t, roster.ToggleSwapped, out.Result)
		assert.Equal(t, "f2", out.Outgoing.ID)
		assert.Equal(t, []string{"f1", "f3", "b1"}, onIDs(players))
		assert.Equal(t, 3, roster.OnFieldCount(players))
	})

	t.Run("tie on seconds picks the earliest roster entry", func(t *testing.T) {
		_, out := roster.Toggle(lineup([]int64{300, 300}, []int64{0}), "b1", 2, never)
		assert.Equal(t, "f1", out.Outgoing.ID)
	})

	t.Run("confirm sees both players", func(t *testing.T) {
		var gotIn, gotOut string
		roster.Toggle(lineup([]int64{50}, []int64{0}), "b1", 1, func(in, out model.Player) bool {
			gotIn, gotOut = in.ID, out.ID
			return false
		})
		assert.Equal(t, "b1", gotIn)
		assert.Equal(t, "f1", gotOut)
	})
}

func TestExecuteSwap(t *testing.T) {
	in := lineup([]int64{600}, []int64{0})
	swapped := roster.ExecuteSwap(in, "f1", "b1")
	assert.Equal(t, []string{"b1"}, onIDs(swapped))

	back := roster.ExecuteSwap(swapped, "b1", "f1")
	assert.Equal(t, in, back, "swapping back restores the roster")
	assert.Equal(t, []string{"f1"}, onIDs(in), "input untouched")
}

func TestExecuteBatch(t *testing.T) {
	in := lineup([]int64{600, 500, 400}, []int64{0, 10, 20})
	out := roster.ExecuteBatch(in, []roster.Pair{{OffID: "f1", OnID: "b1"}, {OffID: "f2", OnID: "b2"}})
	assert.Equal(t, []string{"f3", "b1", "b2"}, onIDs(out))

	// an id that is both off and on in the same batch ends up on
	chained := roster.ExecuteBatch(in, []roster.Pair{{OffID: "f1", OnID: "b1"}, {OffID: "b1", OnID: "b2"}})
	assert.Equal(t, []string{"f2", "f3", "b1", "b2"}, onIDs(chained))

	assert.Equal(t, in, roster.ExecuteBatch(in, nil))
}

func TestBulkResets(t *testing.T) {
	in := lineup([]int64{600, 500}, []int64{30})
	in[0].Stats["goals"] = 2

	benched := roster.BenchAll(in)
	assert.Empty(t, onIDs(benched))

	zeroed := roster.ResetMinutes(in)
	for _, p := range zeroed {
		assert.Zero(t, p.Seconds)
	}
	assert.Equal(t, []string{"f1", "f2"}, onIDs(zeroed))

	cleared := roster.ResetStats(in)
	assert.Empty(t, cleared[0].Stats)
	assert.Equal(t, 2, in[0].Stats["goals"], "input untouched")
}

func TestUpdateStat(t *testing.T) {
	in := lineup([]int64{0}, nil)

	out, ok := roster.UpdateStat(in, "f1", "goals", 2)
	require.True(t, ok)
	assert.Equal(t, 2, out[0].Stats["goals"])
	assert.Zero(t, in[0].Stats["goals"])

	out, _ = roster.UpdateStat(out, "f1", "goals", -5)
	assert.Equal(t, 0, out[0].Stats["goals"], "floored at zero")

	_, ok = roster.UpdateStat(in, "nobody", "goals", 1)
	assert.False(t, ok)

	_, ok = roster.UpdateStat(in, "f1", "  ", 1)
	assert.False(t, ok)
}

func TestTogglePosition(t *testing.T) {
	in := lineup([]int64{0}, nil)

	out, ok := roster.TogglePosition(in, "f1", model.PositionDefense)
	require.True(t, ok)
	out, _ = roster.TogglePosition(out, "f1", model.PositionForward)
	assert.Equal(t, []model.Position{model.PositionDefense, model.PositionForward}, out[0].Positions)

	out, _ = roster.TogglePosition(out, "f1", model.PositionDefense)
	assert.Equal(t, []model.Position{model.PositionForward}, out[0].Positions)
	assert.Empty(t, in[0].Positions)

	_, ok = roster.TogglePosition(in, "x", model.PositionDefense)
	assert.False(t, ok)
}

func TestPartition(t *testing.T) {
	field, bench := roster.Partition(lineup([]int64{1, 2}, []int64{3}))
	assert.Equal(t, []string{"f1", "f2"}, ids(field))
	assert.Equal(t, []string{"b1"}, ids(bench))
}
