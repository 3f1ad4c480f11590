// Package clock advances match time and per-player accrued time.
// Every function is a transform over the previous state: callers hand in the current
// MatchState and store whatever comes back.
package clock

import (
	"time"

	"github.com/maxviazov/equalplay-service/internal/model"
)

// Tick advances the match by one second and every on-field player with it.
// A paused clock is left untouched so a tick delivered after cancellation is a no-op.
func Tick(st model.MatchState) model.MatchState {
	if !st.Clock.Running {
		return st
	}
	return advance(st, 1)
}

// Start sets the clock running and anchors it at now minus the seconds already played.
func Start(st model.MatchState, now time.Time) model.MatchState {
	if st.Clock.Running && st.Clock.Anchor != nil {
		return st
	}
	st.Clock.Running = true
	if st.Clock.Anchor == nil {
		anchor := now.Add(-time.Duration(st.Clock.Seconds) * time.Second)
		st.Clock.Anchor = &anchor
	}
	return st
}

// Pause stops the clock and drops the anchor.
func Pause(st model.MatchState) model.MatchState {
	st.Clock.Running = false
	st.Clock.Anchor = nil
	return st
}

// Reconcile catches the clock up after the process was suspended while running.
// The gap between wall-clock elapsed time and stored seconds is applied once; a second
// call with no time passing finds no gap and changes nothing.
func Reconcile(st model.MatchState, now time.Time) model.MatchState {
	gap := Gap(st, now)
	if gap <= 0 {
		return st
	}
	return advance(st, gap)
}

// Gap returns how many whole seconds the stored clock lags the anchor, or 0.
func Gap(st model.MatchState, now time.Time) int64 {
	if !st.Clock.Running || st.Clock.Anchor == nil {
		return 0
	}
	elapsed := int64(now.Sub(*st.Clock.Anchor) / time.Second)
	if elapsed <= st.Clock.Seconds {
		return 0
	}
	return elapsed - st.Clock.Seconds
}

// Reset zeroes the match clock and pauses it.
func Reset(st model.MatchState) model.MatchState {
	st.Clock = model.MatchClock{}
	return st
}

func advance(st model.MatchState, secs int64) model.MatchState {
	st.Clock.Seconds += secs
	players := make([]model.Player, len(st.Players))
	for i, p := range st.Players {
		if p.On {
			p.Seconds += secs
		}
		players[i] = p
	}
	st.Players = players
	return st
}

// View is the read-only clock projection handed to callers.
type View struct {
	Running         bool       `json:"running"`
	Seconds         int64      `json:"seconds"`
	Anchor          *time.Time `json:"anchor,omitempty"`
	Half            int        `json:"half"`
	HalfSeconds     int64      `json:"half_seconds"`
	RemainingInHalf int64      `json:"remaining_in_half"`
	OnFieldCount    int        `json:"on_field_count"`
	FieldTarget     int        `json:"field_target"`
}

// Describe derives the half number and the time left in it from the half length setting.
func Describe(st model.MatchState) View {
	halfSecs := int64(st.Settings.HalfMinutes) * 60
	v := View{
		Running:     st.Clock.Running,
		Seconds:     st.Clock.Seconds,
		Anchor:      st.Clock.Anchor,
		Half:        1,
		HalfSeconds: halfSecs,
		FieldTarget: st.Settings.FieldTarget,
	}
	for _, p := range st.Players {
		if p.On {
			v.OnFieldCount++
		}
	}
	if halfSecs <= 0 {
		return v
	}
	v.Half = int(st.Clock.Seconds/halfSecs) + 1
	v.RemainingInHalf = halfSecs - st.Clock.Seconds%halfSecs
	return v
}
