// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes; the only behavior here is copying and clamping.
package model

import (
	"strings"
	"time"
)

// Position is an optional categorical label used to constrain substitution matching.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefense    Position = "DEF"
	PositionMidfield   Position = "MID"
	PositionForward    Position = "FWD"
)

// AllPositions lists the fixed enumeration in display order.
var AllPositions = []Position{PositionGoalkeeper, PositionDefense, PositionMidfield, PositionForward}

// ParsePosition accepts either the short tag or the full name, case-insensitively.
func ParsePosition(s string) (Position, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GK", "GOALKEEPER":
		return PositionGoalkeeper, true
	case "DEF", "DEFENSE", "DEFENCE":
		return PositionDefense, true
	case "MID", "MIDFIELD":
		return PositionMidfield, true
	case "FWD", "FORWARD":
		return PositionForward, true
	default:
		return "", false
	}
}

// Player is a roster member and the unit every other component reads.
type Player struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Number    string         `json:"number"`
	Seconds   int64          `json:"seconds"`
	On        bool           `json:"on"`
	Stats     map[string]int `json:"stats"`
	Positions []Position     `json:"positions,omitempty"`
}

// HasPosition reports whether the player carries the given tag.
func (p Player) HasPosition(pos Position) bool {
	for _, x := range p.Positions {
		if x == pos {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no mutable state with p.
func (p Player) Clone() Player {
	out := p
	out.Stats = make(map[string]int, len(p.Stats))
	for k, v := range p.Stats {
		out.Stats[k] = v
	}
	if p.Positions != nil {
		out.Positions = append([]Position(nil), p.Positions...)
	}
	return out
}

// CustomStat is a tracked metric definition (goals, assists, ...).
type CustomStat struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Enabled bool   `json:"enabled"`
}

// MatchClock holds elapsed match time. Anchor is the wall-clock instant at which
// the match would have started had it never been paused; it is set only while running.
type MatchClock struct {
	Running bool       `json:"running"`
	Seconds int64      `json:"seconds"`
	Anchor  *time.Time `json:"anchor,omitempty"`
}

// Suggestion pairs an on-field player to come off with a bench player to go on.
// It is derived on every query and never persisted.
type Suggestion struct {
	Off  Player `json:"off"`
	On   Player `json:"on"`
	Diff int64  `json:"diff"`
}

// StagedSubstitution is a user-proposed swap held until the batch is committed.
type StagedSubstitution struct {
	ID        string    `json:"id"`
	Off       Player    `json:"off"`
	On        Player    `json:"on"`
	CreatedAt time.Time `json:"created_at"`
}

// MinutesStats summarizes the accrued-seconds distribution across the roster.
type MinutesStats struct {
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Stdev  float64 `json:"stdev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Setting bounds and defaults.
const (
	DefaultFieldTarget    = 7
	MinFieldTarget        = 1
	MaxFieldTarget        = 11
	DefaultHalfMinutes    = 25
	MinHalfMinutes        = 1
	MaxHalfMinutes        = 90
	DefaultMaxSuggestions = 3
	MinSuggestions        = 1
	MaxSuggestions        = 10
)

// Settings are the user-tunable match parameters.
type Settings struct {
	FieldTarget    int  `json:"field_target"`
	HalfMinutes    int  `json:"half_minutes"`
	MaxSuggestions int  `json:"max_suggestions"`
	PositionAware  bool `json:"position_aware"`
}

// DefaultSettings mirrors the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		FieldTarget:    DefaultFieldTarget,
		HalfMinutes:    DefaultHalfMinutes,
		MaxSuggestions: DefaultMaxSuggestions,
	}
}

// Normalize clamps every value into its allowed range.
func (s Settings) Normalize() Settings {
	s.FieldTarget = clamp(s.FieldTarget, MinFieldTarget, MaxFieldTarget)
	s.HalfMinutes = clamp(s.HalfMinutes, MinHalfMinutes, MaxHalfMinutes)
	s.MaxSuggestions = clamp(s.MaxSuggestions, MinSuggestions, MaxSuggestions)
	return s
}

// ClampSuggestions bounds a requested suggestion count to 1..10.
func ClampSuggestions(n int) int { return clamp(n, MinSuggestions, MaxSuggestions) }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Scoreboard carries team names and the running score.
type Scoreboard struct {
	HomeName  string `json:"home_name"`
	AwayName  string `json:"away_name"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// SortOrder controls how a player listing is ordered for display.
type SortOrder string

const (
	SortInsertion SortOrder = "insertion"
	SortName      SortOrder = "name"
	SortNumber    SortOrder = "number"
	SortTimeAsc   SortOrder = "time_asc"
	SortTimeDesc  SortOrder = "time_desc"
)

// ParseSortOrder falls back to insertion order for anything unknown.
func ParseSortOrder(s string) SortOrder {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortName, SortNumber, SortTimeAsc, SortTimeDesc:
		return o
	default:
		return SortInsertion
	}
}

// SortPreference stores the listing order for field and bench separately.
type SortPreference struct {
	Field SortOrder `json:"field"`
	Bench SortOrder `json:"bench"`
}

// MatchState is the whole persisted session: every field the external store reads and writes.
type MatchState struct {
	Settings    Settings             `json:"settings"`
	CustomStats []CustomStat         `json:"custom_stats"`
	Players     []Player             `json:"players"`
	Clock       MatchClock           `json:"clock"`
	Staged      []StagedSubstitution `json:"staged"`
	Scoreboard  Scoreboard           `json:"scoreboard"`
	Sort        SortPreference       `json:"sort"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Clone deep-copies the state so snapshots handed out never alias the live one.
func (s MatchState) Clone() MatchState {
	out := s
	out.CustomStats = append([]CustomStat(nil), s.CustomStats...)
	out.Players = ClonePlayers(s.Players)
	if s.Clock.Anchor != nil {
		a := *s.Clock.Anchor
		out.Clock.Anchor = &a
	}
	if s.Staged != nil {
		out.Staged = make([]StagedSubstitution, len(s.Staged))
		for i, st := range s.Staged {
			st.Off = st.Off.Clone()
			st.On = st.On.Clone()
			out.Staged[i] = st
		}
	}
	return out
}

// ClonePlayers copies a player slice element by element.
func ClonePlayers(in []Player) []Player {
	if in == nil {
		return nil
	}
	out := make([]Player, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
