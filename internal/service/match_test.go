package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/repository"
	"github.com/maxviazov/equalplay-service/internal/repository/memory"
	"github.com/maxviazov/equalplay-service/internal/roster"
	"github.com/maxviazov/equalplay-service/internal/service"
)

const matchID = "test-match"

var kickoff = time.Date(2026, 5, 9, 10, 0, 0, 0, time.UTC)

// fakeClock is advanced by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type fixture struct {
	svc   *service.Match
	store *memory.StateRepository
	clock *fakeClock
}

func newFixture(t *testing.T, opts ...func(*service.Options)) fixture {
	t.Helper()
	store := memory.NewStateRepository()
	clk := &fakeClock{now: kickoff}
	o := service.Options{
		MatchID:      matchID,
		Defaults:     model.DefaultSettings(),
		PersistEvery: 1,
		Now:          clk.Now,
		NewID:        seqIDs(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	svc := service.NewMatch(store, o, zerolog.New(io.Discard))
	require.NoError(t, svc.Resume(context.Background()))
	t.Cleanup(svc.Close)
	return fixture{svc: svc, store: store, clock: clk}
}

// addSquad adds players named P1..Pn and returns their ids in order.
func addSquad(t *testing.T, svc *service.Match, n int) []string {
	t.Helper()
	batch := make([]roster.NewPlayer, n)
	for i := range batch {
		batch[i] = roster.NewPlayer{Name: fmt.Sprintf("P%d", i+1)}
	}
	res, err := svc.AddPlayers(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, res.Added, n)
	ids := make([]string, n)
	for i, p := range res.Added {
		ids[i] = p.ID
	}
	return ids
}

func TestResume_FreshSession(t *testing.T) {
	f := newFixture(t)
	st := f.svc.Snapshot(context.Background())

	assert.Equal(t, model.DefaultSettings(), st.Settings)
	assert.Equal(t, roster.DefaultCustomStats(), st.CustomStats)
	assert.Equal(t, roster.DefaultScoreboard(), st.Scoreboard)
	assert.Empty(t, st.Players)
	assert.False(t, st.Clock.Running)

	_, err := f.store.Load(context.Background(), matchID)
	assert.NoError(t, err, "fresh session is persisted on resume")
}

func TestResume_ReconcilesRunningClock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateRepository()

	anchor := kickoff.Add(-100 * time.Second)
	saved := model.MatchState{
		Settings: model.DefaultSettings(),
		Players: []model.Player{
			{ID: "a", Name: "A", On: true, Seconds: 100, Stats: map[string]int{}},
			{ID: "b", Name: "B", Seconds: 20, Stats: map[string]int{}},
		},
		Clock: model.MatchClock{Running: true, Seconds: 100, Anchor: &anchor},
	}
	require.NoError(t, store.Save(ctx, matchID, saved))

	clk := &fakeClock{now: kickoff.Add(5 * time.Minute)}
	svc := service.NewMatch(store, service.Options{MatchID: matchID, Now: clk.Now, NewID: seqIDs()}, zerolog.New(io.Discard))
	require.NoError(t, svc.Resume(ctx))
	t.Cleanup(svc.Close)

	st := svc.Snapshot(ctx)
	assert.Equal(t, int64(400), st.Clock.Seconds)
	assert.Equal(t, int64(400), st.Players[0].Seconds)
	assert.Equal(t, int64(20), st.Players[1].Seconds)
	assert.True(t, st.Clock.Running)
	assert.NotNil(t, st.CustomStats, "missing catalogue is repaired")

	// a second reconcile with no time passing changes nothing
	_, gap, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, gap)
	assert.Equal(t, int64(400), svc.Clock(ctx).Seconds)
}

type failingStore struct {
	*memory.StateRepository
	loadErr error
	saveErr error
}

func (s *failingStore) Load(ctx context.Context, id string) (model.MatchState, error) {
	if s.loadErr != nil {
		return model.MatchState{}, s.loadErr
	}
	return s.StateRepository.Load(ctx, id)
}

func (s *failingStore) Save(ctx context.Context, id string, st model.MatchState) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.StateRepository.Save(ctx, id, st)
}

func TestResume_LoadFailure(t *testing.T) {
	store := &failingStore{StateRepository: memory.NewStateRepository(), loadErr: errors.New("conn refused")}
	svc := service.NewMatch(store, service.Options{MatchID: matchID}, zerolog.New(io.Discard))
	t.Cleanup(svc.Close)

	err := svc.Resume(context.Background())
	assert.Error(t, err)
}

func TestMutation_SaveFailureKeepsInMemoryState(t *testing.T) {
	store := &failingStore{StateRepository: memory.NewStateRepository(), saveErr: errors.New("disk full")}
	svc := service.NewMatch(store, service.Options{MatchID: matchID, NewID: seqIDs()}, zerolog.New(io.Discard))
	t.Cleanup(svc.Close)
	require.NoError(t, svc.Resume(context.Background()))

	res, err := svc.AddPlayer(context.Background(), roster.NewPlayer{Name: "Ava"})
	require.NoError(t, err)
	assert.Len(t, res.Added, 1)
	assert.Len(t, svc.Players(context.Background(), model.SortInsertion), 1)
}

func TestClock_StartTickPause(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := addSquad(t, f.svc, 2)
	_, err := f.svc.TogglePlayer(ctx, ids[0], false)
	require.NoError(t, err)

	require.NoError(t, f.svc.Tick(ctx))
	assert.Zero(t, f.svc.Clock(ctx).Seconds, "tick while paused is a no-op")

	v, err := f.svc.StartClock(ctx)
	require.NoError(t, err)
	assert.True(t, v.Running)
	require.NotNil(t, v.Anchor)
	assert.Equal(t, kickoff, *v.Anchor)

	for range 3 {
		require.NoError(t, f.svc.Tick(ctx))
	}
	players := f.svc.Players(ctx, model.SortInsertion)
	assert.Equal(t, int64(3), players[0].Seconds)
	assert.Zero(t, players[1].Seconds)

	v, err = f.svc.PauseClock(ctx)
	require.NoError(t, err)
	assert.False(t, v.Running)
	assert.Nil(t, v.Anchor)

	require.NoError(t, f.svc.Tick(ctx))
	assert.Equal(t, int64(3), f.svc.Clock(ctx).Seconds, "late tick after pause is ignored")
}

func TestClock_ReconcileAfterSuspension(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := addSquad(t, f.svc, 1)
	_, _ = f.svc.TogglePlayer(ctx, ids[0], false)

	_, err := f.svc.StartClock(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.Tick(ctx))
	f.clock.Advance(90 * time.Second)

	v, gap, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(89), gap)
	assert.Equal(t, int64(90), v.Seconds)

	_, gap, _ = f.svc.Reconcile(ctx)
	assert.Zero(t, gap)
}

func TestReconcile_NoOpWhileRunnerActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(o *service.Options) { o.TickInterval = time.Hour })
	_, err := f.svc.StartClock(ctx)
	require.NoError(t, err)
	f.clock.Advance(90 * time.Second)

	v, gap, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, gap, "runner owns catch-up")
	assert.Zero(t, v.Seconds)
}

func TestRunner_CatchesUpAfterSuspension(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(o *service.Options) { o.TickInterval = 10 * time.Millisecond })
	ids := addSquad(t, f.svc, 2)
	_, err := f.svc.TogglePlayer(ctx, ids[0], false)
	require.NoError(t, err)

	_, err = f.svc.StartClock(ctx)
	require.NoError(t, err)
	f.clock.Advance(90 * time.Second)

	assert.Eventually(t, func() bool { return f.svc.Clock(ctx).Seconds >= 90 }, 2*time.Second, time.Millisecond)
	v, err := f.svc.PauseClock(ctx)
	require.NoError(t, err)

	players := f.svc.Players(ctx, model.SortInsertion)
	assert.Equal(t, v.Seconds, players[0].Seconds, "on-field player credited with the caught-up time")
	assert.Zero(t, players[1].Seconds)
}

// slowStore delays Save once armed, holding the match lock the way a sluggish
// database would.
type slowStore struct {
	*memory.StateRepository
	slow  atomic.Bool
	delay time.Duration
}

func (s *slowStore) Save(ctx context.Context, id string, st model.MatchState) error {
	if s.slow.Load() {
		time.Sleep(s.delay)
	}
	return s.StateRepository.Save(ctx, id, st)
}

func TestRunner_StaleTickAfterQuickRestartIsDropped(t *testing.T) {
	ctx := context.Background()
	for i := range 3 {
		t.Run(fmt.Sprintf("round %d", i), func(t *testing.T) {
			store := &slowStore{StateRepository: memory.NewStateRepository(), delay: 120 * time.Millisecond}
			svc := service.NewMatch(store, service.Options{
				MatchID:      matchID,
				PersistEvery: 1,
				TickInterval: 50 * time.Millisecond,
				NewID:        seqIDs(),
			}, zerolog.New(io.Discard))
			t.Cleanup(svc.Close)
			require.NoError(t, svc.Resume(ctx))

			_, err := svc.StartClock(ctx)
			require.NoError(t, err)
			time.Sleep(30 * time.Millisecond)

			// the pending tick of the first loop queues on the lock behind both saves
			store.slow.Store(true)
			paused, err := svc.PauseClock(ctx)
			require.NoError(t, err)
			_, err = svc.StartClock(ctx)
			require.NoError(t, err)
			store.slow.Store(false)

			time.Sleep(15 * time.Millisecond)
			assert.Equal(t, paused.Seconds, svc.Clock(ctx).Seconds, "no tick from the stopped loop")
		})
	}
}

func TestTick_PersistCadence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(o *service.Options) { o.PersistEvery = 3 })
	_, err := f.svc.StartClock(ctx)
	require.NoError(t, err)
	base := f.store.Saves()

	for range 2 {
		require.NoError(t, f.svc.Tick(ctx))
	}
	assert.Equal(t, base, f.store.Saves())

	require.NoError(t, f.svc.Tick(ctx))
	assert.Equal(t, base+1, f.store.Saves())

	stored, err := f.store.Load(ctx, matchID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Clock.Seconds)
}

func TestResetMinutes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := addSquad(t, f.svc, 2)
	_, _ = f.svc.TogglePlayer(ctx, ids[0], false)
	_, _ = f.svc.StartClock(ctx)
	for range 5 {
		_ = f.svc.Tick(ctx)
	}

	require.NoError(t, f.svc.ResetMinutes(ctx))

	v := f.svc.Clock(ctx)
	assert.False(t, v.Running)
	assert.Zero(t, v.Seconds)
	for _, p := range f.svc.Players(ctx, model.SortInsertion) {
		assert.Zero(t, p.Seconds)
	}
	assert.Equal(t, 1, v.OnFieldCount, "lineup is kept")
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addSquad(t, f.svc, 1)

	st := f.svc.Snapshot(ctx)
	st.Players[0].Name = "mutated"
	st.Players[0].Stats["goals"] = 99

	fresh := f.svc.Snapshot(ctx)
	assert.Equal(t, "P1", fresh.Players[0].Name)
	assert.Zero(t, fresh.Players[0].Stats["goals"])
}

func TestConcurrentTicksAndToggles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := addSquad(t, f.svc, 4)
	_, _ = f.svc.TogglePlayer(ctx, ids[0], false)
	_, _ = f.svc.StartClock(ctx)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(2)
		go func() { defer wg.Done(); _ = f.svc.Tick(ctx) }()
		go func() { defer wg.Done(); _, _ = f.svc.UpdateStat(ctx, ids[1], "goals", 1) }()
	}
	wg.Wait()

	st := f.svc.Snapshot(ctx)
	assert.Equal(t, int64(100), st.Clock.Seconds)
	assert.Equal(t, int64(100), st.Players[0].Seconds)
	assert.Equal(t, 100, st.Players[1].Stats["goals"], "no update lost")
}

func TestNotFoundErrorsWrapRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.svc.RemovePlayer(ctx, "ghost")
	assert.ErrorIs(t, err, service.ErrPlayerNotFound)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = f.svc.Unstage(ctx, "ghost")
	assert.ErrorIs(t, err, service.ErrStagedNotFound)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
