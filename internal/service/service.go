// Package service holds business logic orchestration across the match core and storage.
// Kept intentionally lean: use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/maxviazov/equalplay-service/internal/clock"
	"github.com/maxviazov/equalplay-service/internal/fairness"
	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/repository"
	"github.com/maxviazov/equalplay-service/internal/roster"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// Lookup failures wrap repository.ErrNotFound so transport maps them to 404.
var (
	ErrPlayerNotFound = fmt.Errorf("player %w", repository.ErrNotFound)
	ErrStagedNotFound = fmt.Errorf("staged substitution %w", repository.ErrNotFound)
	ErrStatNotFound   = fmt.Errorf("custom stat %w", repository.ErrNotFound)
)

// ErrFieldFull marks a toggle-on refused because the field is at its target size
// and the caller did not confirm the swap.
var ErrFieldFull = errors.New("field is full")

// FieldFullError carries the swap the caller would have to confirm.
type FieldFullError struct {
	Incoming model.Player
	Outgoing *model.Player
}

func (e *FieldFullError) Error() string {
	if e.Outgoing == nil {
		return ErrFieldFull.Error()
	}
	return fmt.Sprintf("%s: swap %s with %s?", ErrFieldFull, e.Incoming.Name, e.Outgoing.Name)
}
func (e *FieldFullError) Unwrap() error { return ErrFieldFull }

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error if any field errors are present.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// AddResult reports how a (bulk) add went; blank and duplicate names are skipped silently.
type AddResult struct {
	Added    []model.Player `json:"added"`
	Rejected int            `json:"rejected"`
}

// ToggleResult describes a completed toggle.
type ToggleResult struct {
	Result   roster.ToggleResult `json:"result"`
	Player   model.Player        `json:"player"`
	Outgoing *model.Player       `json:"outgoing,omitempty"`
}

// Lineup is the roster split into field and bench, each in its preferred display order.
type Lineup struct {
	Field []model.Player `json:"field"`
	Bench []model.Player `json:"bench"`
}

// SettingsUpdate carries optional changes; nil fields are left as they are.
type SettingsUpdate struct {
	FieldTarget    *int  `json:"field_target"`
	HalfMinutes    *int  `json:"half_minutes"`
	MaxSuggestions *int  `json:"max_suggestions"`
	PositionAware  *bool `json:"position_aware"`
}

// RosterService covers the Roster State commands and queries.
type RosterService interface {
	Players(ctx context.Context, order model.SortOrder) []model.Player
	Lineup(ctx context.Context) Lineup
	AddPlayer(ctx context.Context, np roster.NewPlayer) (AddResult, error)
	AddPlayers(ctx context.Context, batch []roster.NewPlayer) (AddResult, error)
	AddPlayersFromText(ctx context.Context, text string) (AddResult, error)
	RemovePlayer(ctx context.Context, id string) error
	TogglePlayer(ctx context.Context, id string, confirmSwap bool) (ToggleResult, error)
	UpdateStat(ctx context.Context, playerID, statID string, delta int) (model.Player, error)
	TogglePosition(ctx context.Context, playerID string, pos model.Position) (model.Player, error)
	BenchAll(ctx context.Context) error
	ResetStats(ctx context.Context) error
}

// ClockService drives and reports match time.
type ClockService interface {
	Clock(ctx context.Context) clock.View
	StartClock(ctx context.Context) (clock.View, error)
	PauseClock(ctx context.Context) (clock.View, error)
	Reconcile(ctx context.Context) (clock.View, int64, error)
	Tick(ctx context.Context) error
	ResetMinutes(ctx context.Context) error
}

// SubstitutionService proposes, stages and executes swaps.
type SubstitutionService interface {
	Suggestions(ctx context.Context, maxCount int, positionAware *bool) []model.Suggestion
	ExecuteSwap(ctx context.Context, offID, onID string) error
	Staged(ctx context.Context) []model.StagedSubstitution
	Stage(ctx context.Context, offID, onID string) (model.StagedSubstitution, error)
	Unstage(ctx context.Context, id string) error
	ClearStaged(ctx context.Context) error
	CommitStaged(ctx context.Context) (int, error)
}

// FairnessService summarizes playing-time balance.
type FairnessService interface {
	MinutesStats(ctx context.Context) fairness.Report
}

// SettingsService covers match configuration, stat catalogue, sorting and the scoreboard.
type SettingsService interface {
	Settings(ctx context.Context) model.Settings
	UpdateSettings(ctx context.Context, upd SettingsUpdate) (model.Settings, error)
	CustomStats(ctx context.Context) []model.CustomStat
	AddCustomStat(ctx context.Context, name, icon string) (model.CustomStat, error)
	RemoveCustomStat(ctx context.Context, id string) error
	ToggleCustomStat(ctx context.Context, id string) (model.CustomStat, error)
	SetSortPreference(ctx context.Context, pref model.SortPreference) (model.SortPreference, error)
	Scoreboard(ctx context.Context) model.Scoreboard
	AdjustScore(ctx context.Context, side roster.Side, delta int) (model.Scoreboard, error)
	RenameTeams(ctx context.Context, home, away string) (model.Scoreboard, error)
}

// MatchService is the full surface handed to the transport layer.
type MatchService interface {
	RosterService
	ClockService
	SubstitutionService
	FairnessService
	SettingsService
	Snapshot(ctx context.Context) model.MatchState
}
