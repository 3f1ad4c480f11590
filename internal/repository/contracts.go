package repository

import (
	"context"

	"github.com/maxviazov/equalplay-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// StateRepository persists the whole match session as one unit.
// Save replaces everything stored for the match; a partial write must never be observable.
type StateRepository interface {
	// Load returns ErrNotFound when nothing was saved for matchID yet.
	Load(ctx context.Context, matchID string) (model.MatchState, error)
	Save(ctx context.Context, matchID string, st model.MatchState) error
	Delete(ctx context.Context, matchID string) error
}

// Store is what the service layer needs from a backend: state plus a readiness probe.
type Store interface {
	StateRepository
	Pinger
}
