package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maxviazov/equalplay-service/internal/clock"
	"github.com/maxviazov/equalplay-service/internal/fairness"
	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/repository"
	"github.com/maxviazov/equalplay-service/internal/roster"
	"github.com/rs/zerolog"
)

// Options tune a Match. Zero values fall back to production defaults.
type Options struct {
	MatchID  string
	Defaults model.Settings
	// TickInterval <= 0 disables the background runner; ticks then only happen via Tick.
	TickInterval time.Duration
	// PersistEvery saves the state after this many ticks; other mutations save immediately.
	PersistEvery int
	Now          func() time.Time
	NewID        func() string
}

// Match is the single writer over one match session. Every command is applied as one
// transform over the previous state while holding mu, so a tick and a toggle arriving
// together can never lose each other's update.
type Match struct {
	mu    sync.Mutex
	state model.MatchState
	store repository.StateRepository
	opts  Options
	log   zerolog.Logger

	runner         *clock.Runner
	runCtx         context.Context
	cancelRun      context.CancelFunc
	ticksSinceSave int
}

var _ MatchService = (*Match)(nil)

// NewMatch wires a Match with a fresh default session. Call Resume to pick up a
// persisted one.
func NewMatch(store repository.StateRepository, opts Options, logger zerolog.Logger) *Match {
	if opts.MatchID == "" {
		opts.MatchID = "default"
	}
	if opts.Defaults == (model.Settings{}) {
		opts.Defaults = model.DefaultSettings()
	}
	opts.Defaults = opts.Defaults.Normalize()
	if opts.PersistEvery < 1 {
		opts.PersistEvery = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	runCtx, cancel := context.WithCancel(context.Background())
	l := logger.With().Str("module", "service").Str("component", "match").Str("match_id", opts.MatchID).Logger()
	return &Match{
		state:     newState(opts.Defaults),
		store:     store,
		opts:      opts,
		log:       l,
		runner:    clock.NewRunner(opts.TickInterval),
		runCtx:    runCtx,
		cancelRun: cancel,
	}
}

func newState(settings model.Settings) model.MatchState {
	return model.MatchState{
		Settings:    settings,
		CustomStats: roster.DefaultCustomStats(),
		Players:     []model.Player{},
		Staged:      []model.StagedSubstitution{},
		Scoreboard:  roster.DefaultScoreboard(),
		Sort:        model.SortPreference{Field: model.SortInsertion, Bench: model.SortInsertion},
	}
}

// Resume loads the persisted session, if any, and applies reconcile-on-resume when the
// clock was left running. The runner is restarted to match the clock state.
func (m *Match) Resume(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.store.Load(ctx, m.opts.MatchID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		st = newState(m.opts.Defaults)
		m.log.Info().Msg("no stored session, starting fresh")
	case err != nil:
		return fmt.Errorf("load match %s: %w", m.opts.MatchID, err)
	default:
		st = sanitize(st, m.opts.Defaults)
	}

	gap := clock.Gap(st, m.opts.Now())
	st = clock.Reconcile(st, m.opts.Now())
	if gap > 0 {
		m.log.Info().Int64("gap_seconds", gap).Int64("match_seconds", st.Clock.Seconds).Msg("clock reconciled after resume")
	}
	m.commitLocked(ctx, "resume", st)
	return nil
}

// sanitize repairs anything a stored session may be missing.
func sanitize(st model.MatchState, defaults model.Settings) model.MatchState {
	if st.Settings == (model.Settings{}) {
		st.Settings = defaults
	}
	st.Settings = st.Settings.Normalize()
	if st.CustomStats == nil {
		st.CustomStats = roster.DefaultCustomStats()
	}
	if st.Players == nil {
		st.Players = []model.Player{}
	}
	for i := range st.Players {
		if st.Players[i].Stats == nil {
			st.Players[i].Stats = map[string]int{}
		}
		if st.Players[i].Seconds < 0 {
			st.Players[i].Seconds = 0
		}
	}
	if st.Staged == nil {
		st.Staged = []model.StagedSubstitution{}
	}
	if st.Scoreboard.HomeName == "" && st.Scoreboard.AwayName == "" {
		def := roster.DefaultScoreboard()
		st.Scoreboard.HomeName, st.Scoreboard.AwayName = def.HomeName, def.AwayName
	}
	st.Sort.Field = model.ParseSortOrder(string(st.Sort.Field))
	st.Sort.Bench = model.ParseSortOrder(string(st.Sort.Bench))
	if st.Clock.Seconds < 0 {
		st.Clock.Seconds = 0
	}
	if !st.Clock.Running {
		st.Clock.Anchor = nil
	}
	return st
}

// Close stops the tick runner and waits for it to exit.
func (m *Match) Close() {
	m.runner.Stop()
	m.cancelRun()
	m.runner.Wait()
}

// Snapshot returns a deep copy of the whole session.
func (m *Match) Snapshot(context.Context) model.MatchState {
	return m.read()
}

func (m *Match) read() model.MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// mutate applies fn to a copy of the current state. When fn fails nothing changes.
func (m *Match) mutate(ctx context.Context, op string, fn func(st model.MatchState) (model.MatchState, error)) (model.MatchState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(m.state.Clone())
	if err != nil {
		m.log.Debug().Err(err).Str("op", op).Msg("mutation rejected")
		return m.state.Clone(), err
	}
	m.commitLocked(ctx, op, next)
	return m.state.Clone(), nil
}

// commitLocked installs next as the live state, persists it and aligns the runner with
// the clock. A storage failure is logged and the in-memory state kept: the match must
// go on, and the next successful save catches the store up.
func (m *Match) commitLocked(ctx context.Context, op string, next model.MatchState) {
	next.UpdatedAt = m.opts.Now().UTC()
	m.state = next
	m.persistLocked(ctx, op)
	if next.Clock.Running {
		m.runner.Start(m.runCtx, m.onTick)
	} else {
		m.runner.Stop()
	}
}

func (m *Match) persistLocked(ctx context.Context, op string) {
	m.ticksSinceSave = 0
	if err := m.store.Save(ctx, m.opts.MatchID, m.state); err != nil {
		m.log.Warn().Err(err).Str("op", op).Msg("persist match state failed")
		return
	}
	m.log.Debug().Str("op", op).Msg("match state persisted")
}

// onTick serves the background runner. Deliveries from a loop that has since been
// stopped, possibly followed by a fresh Start, are dropped. When the runner fell behind
// the anchor (the process was suspended, the ticker skipped beats) all but the second
// this delivery stands for is caught up first.
func (m *Match) onTick(ctx context.Context, gen uint64, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.runner.Current(gen) {
		m.log.Debug().Uint64("gen", gen).Msg("stale tick dropped")
		return
	}
	now := m.opts.Now()
	if gap := clock.Gap(m.state, now); gap > 1 {
		m.state = clock.Reconcile(m.state, now.Add(-time.Second))
		m.log.Info().Int64("gap_seconds", gap-1).Int64("match_seconds", m.state.Clock.Seconds).Msg("runner caught up with wall clock")
	}
	m.tickLocked(ctx)
}

// Tick advances the clock by one second. A tick after the clock was paused is a no-op.
func (m *Match) Tick(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickLocked(ctx)
	return nil
}

func (m *Match) tickLocked(ctx context.Context) {
	if !m.state.Clock.Running {
		return
	}
	m.state = clock.Tick(m.state)
	m.state.UpdatedAt = m.opts.Now().UTC()
	m.ticksSinceSave++
	if m.ticksSinceSave >= m.opts.PersistEvery {
		m.persistLocked(ctx, "tick")
	}
}

func (m *Match) Clock(context.Context) clock.View {
	return clock.Describe(m.read())
}

func (m *Match) StartClock(ctx context.Context) (clock.View, error) {
	st, err := m.mutate(ctx, "start_clock", func(st model.MatchState) (model.MatchState, error) {
		return clock.Start(st, m.opts.Now()), nil
	})
	if err == nil {
		m.log.Info().Int64("match_seconds", st.Clock.Seconds).Msg("clock started")
	}
	return clock.Describe(st), err
}

func (m *Match) PauseClock(ctx context.Context) (clock.View, error) {
	st, err := m.mutate(ctx, "pause_clock", func(st model.MatchState) (model.MatchState, error) {
		return clock.Pause(st), nil
	})
	if err == nil {
		m.log.Info().Int64("match_seconds", st.Clock.Seconds).Msg("clock paused")
	}
	return clock.Describe(st), err
}

// Reconcile applies any wall-clock gap once and returns how many seconds were added.
// While the background runner is active it owns catching up, since a delivery due for
// the current second may still be in flight; Reconcile then reports no gap.
func (m *Match) Reconcile(ctx context.Context) (clock.View, int64, error) {
	var gap int64
	st, err := m.mutate(ctx, "reconcile", func(st model.MatchState) (model.MatchState, error) {
		if m.runner.Active() {
			return st, nil
		}
		now := m.opts.Now()
		gap = clock.Gap(st, now)
		return clock.Reconcile(st, now), nil
	})
	return clock.Describe(st), gap, err
}

// ResetMinutes zeroes every player's time and the match clock, leaving it paused.
func (m *Match) ResetMinutes(ctx context.Context) error {
	_, err := m.mutate(ctx, "reset_minutes", func(st model.MatchState) (model.MatchState, error) {
		st = clock.Reset(st)
		st.Players = roster.ResetMinutes(st.Players)
		return st, nil
	})
	return err
}

func (m *Match) MinutesStats(context.Context) fairness.Report {
	return fairness.Evaluate(m.read().Players)
}
