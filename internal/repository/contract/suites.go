// Package contract holds behavioral suites every repository implementation must pass.
package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/repository"
)

// StateFactory returns a fresh store and its cleanup.
type StateFactory func(t *testing.T) (repository.StateRepository, func())

// PingerFactory returns a readiness probe and its cleanup.
type PingerFactory func(t *testing.T) (repository.Pinger, func())

// SampleState builds a session exercising every persisted field.
func SampleState() model.MatchState {
	anchor := time.Date(2026, 5, 9, 10, 0, 0, 0, time.UTC)
	return model.MatchState{
		Settings: model.Settings{FieldTarget: 7, HalfMinutes: 25, MaxSuggestions: 3, PositionAware: true},
		CustomStats: []model.CustomStat{
			{ID: "goals", Name: "Goals", Icon: "⚽", Enabled: true},
			{ID: "corners", Name: "Corners", Icon: "📊", Enabled: false},
		},
		Players: []model.Player{
			{ID: "p1", Name: "Emma", Number: "7", Seconds: 600, On: true, Stats: map[string]int{"goals": 2}, Positions: []model.Position{model.PositionForward}},
			{ID: "p2", Name: "Liam", Number: "10", Seconds: 120, Stats: map[string]int{}, Positions: []model.Position{model.PositionDefense, model.PositionMidfield}},
			{ID: "p3", Name: "Noah", Stats: map[string]int{}},
		},
		Clock: model.MatchClock{Running: true, Seconds: 600, Anchor: &anchor},
		Staged: []model.StagedSubstitution{{
			ID:        "s1",
			Off:       model.Player{ID: "p1", Name: "Emma", On: true, Stats: map[string]int{}},
			On:        model.Player{ID: "p2", Name: "Liam", Stats: map[string]int{}},
			CreatedAt: anchor.Add(5 * time.Minute),
		}},
		Scoreboard: model.Scoreboard{HomeName: "Hornets", AwayName: "Comets", HomeScore: 2, AwayScore: 1},
		Sort:       model.SortPreference{Field: model.SortTimeDesc, Bench: model.SortTimeAsc},
		UpdatedAt:  anchor.Add(10 * time.Minute),
	}
}

func RunStateRepositoryContract(t *testing.T, makeRepo StateFactory) {
	t.Helper()

	t.Run("load_missing_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Load(context.Background(), "no-such-match")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("save_and_load_round_trip", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		want := SampleState()
		if err := repo.Save(ctx, "m1", want); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := repo.Load(ctx, "m1")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got.Settings != want.Settings || got.Scoreboard != want.Scoreboard || got.Sort != want.Sort {
			t.Fatalf("header mismatch: %+v", got)
		}
		if got.Clock.Running != want.Clock.Running || got.Clock.Seconds != want.Clock.Seconds {
			t.Fatalf("clock mismatch: %+v", got.Clock)
		}
		if got.Clock.Anchor == nil || !got.Clock.Anchor.Equal(*want.Clock.Anchor) {
			t.Fatalf("anchor mismatch: %v", got.Clock.Anchor)
		}
		if len(got.Players) != len(want.Players) {
			t.Fatalf("players: got %d want %d", len(got.Players), len(want.Players))
		}
		for i := range want.Players {
			g, w := got.Players[i], want.Players[i]
			if g.ID != w.ID || g.Name != w.Name || g.Number != w.Number || g.Seconds != w.Seconds || g.On != w.On {
				t.Fatalf("player %d mismatch: %+v", i, g)
			}
			if g.Stats["goals"] != w.Stats["goals"] || len(g.Positions) != len(w.Positions) {
				t.Fatalf("player %d details mismatch: %+v", i, g)
			}
		}
		if len(got.Staged) != 1 || got.Staged[0].Off.ID != "p1" || got.Staged[0].On.ID != "p2" {
			t.Fatalf("staged mismatch: %+v", got.Staged)
		}
		if len(got.CustomStats) != 2 || got.CustomStats[1].ID != "corners" {
			t.Fatalf("custom stats mismatch: %+v", got.CustomStats)
		}
	})

	t.Run("save_replaces_previous", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		st := SampleState()
		if err := repo.Save(ctx, "m1", st); err != nil {
			t.Fatalf("save: %v", err)
		}
		st.Players = st.Players[:1]
		st.Clock = model.MatchClock{Seconds: 42}
		if err := repo.Save(ctx, "m1", st); err != nil {
			t.Fatalf("save again: %v", err)
		}
		got, err := repo.Load(ctx, "m1")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(got.Players) != 1 || got.Clock.Seconds != 42 || got.Clock.Anchor != nil || got.Clock.Running {
			t.Fatalf("expected replaced state, got players=%d clock=%+v", len(got.Players), got.Clock)
		}
	})

	t.Run("roster_order_preserved", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		st := SampleState()
		st.Players[0], st.Players[2] = st.Players[2], st.Players[0]
		if err := repo.Save(ctx, "m1", st); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := repo.Load(ctx, "m1")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		for i := range st.Players {
			if got.Players[i].ID != st.Players[i].ID {
				t.Fatalf("order mismatch at %d: got %s want %s", i, got.Players[i].ID, st.Players[i].ID)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := repo.Save(ctx, "m1", SampleState()); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := repo.Delete(ctx, "m1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.Load(ctx, "m1"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(ctx, "m1"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}
