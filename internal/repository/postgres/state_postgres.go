package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/repository"
)

// stateRepository keeps the session header in match_states and the roster, one row per
// player, in match_players. Save rewrites both inside a single transaction.
type stateRepository struct {
	repository.Pinger
	pool *pgxpool.Pool
	tx   repository.TxManager
}

// NewStateRepository builds the Postgres-backed store.
func NewStateRepository(pool *pgxpool.Pool) repository.Store {
	return &stateRepository{Pinger: NewPinger(pool), pool: pool, tx: NewTxManager(pool)}
}

func (r *stateRepository) Load(ctx context.Context, matchID string) (model.MatchState, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.MatchState{}, err
	}
	var out model.MatchState
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		exec := getQ(ctx, r.pool)
		var (
			settings, customStats, staged, scoreboard, sortPrefs []byte
			anchor                                               *time.Time
		)
		row := exec.QueryRow(ctx,
			`SELECT settings, custom_stats, clock_running, clock_seconds, clock_anchor,
			        staged, scoreboard, sort_prefs, updated_at
			 FROM match_states WHERE match_id = $1`, matchID)
		if err := row.Scan(&settings, &customStats, &out.Clock.Running, &out.Clock.Seconds, &anchor,
			&staged, &scoreboard, &sortPrefs, &out.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return err
		}
		if anchor != nil {
			a := anchor.UTC()
			out.Clock.Anchor = &a
		}
		if err := unmarshalAll(
			field{settings, &out.Settings},
			field{customStats, &out.CustomStats},
			field{staged, &out.Staged},
			field{scoreboard, &out.Scoreboard},
			field{sortPrefs, &out.Sort},
		); err != nil {
			return err
		}

		players, err := r.loadPlayers(ctx, exec, matchID)
		if err != nil {
			return err
		}
		out.Players = players
		return nil
	})
	if err != nil {
		return model.MatchState{}, err
	}
	return out, nil
}

func (r *stateRepository) loadPlayers(ctx context.Context, exec q, matchID string) ([]model.Player, error) {
	rows, err := exec.Query(ctx,
		`SELECT player_id, name, number, seconds, on_field, stats, positions
		 FROM match_players WHERE match_id = $1
		 ORDER BY roster_order`, matchID)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	players := make([]model.Player, 0)
	for rows.Next() {
		var (
			p         model.Player
			stats     []byte
			positions []string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Number, &p.Seconds, &p.On, &stats, &positions); err != nil {
			return nil, repository.MapPgError(err)
		}
		p.Stats = map[string]int{}
		if len(stats) > 0 {
			if err := json.Unmarshal(stats, &p.Stats); err != nil {
				return nil, fmt.Errorf("%w: player %s stats: %v", repository.ErrInvalidState, p.ID, err)
			}
		}
		for _, s := range positions {
			if pos, ok := model.ParsePosition(s); ok {
				p.Positions = append(p.Positions, pos)
			}
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return players, nil
}

func (r *stateRepository) Save(ctx context.Context, matchID string, st model.MatchState) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	settings, err := json.Marshal(st.Settings)
	if err != nil {
		return err
	}
	customStats, err := json.Marshal(nonNil(st.CustomStats))
	if err != nil {
		return err
	}
	staged, err := json.Marshal(nonNil(st.Staged))
	if err != nil {
		return err
	}
	scoreboard, err := json.Marshal(st.Scoreboard)
	if err != nil {
		return err
	}
	sortPrefs, err := json.Marshal(st.Sort)
	if err != nil {
		return err
	}
	updatedAt := st.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		exec := getQ(ctx, r.pool)
		if _, err := exec.Exec(ctx,
			`INSERT INTO match_states
			    (match_id, settings, custom_stats, clock_running, clock_seconds, clock_anchor,
			     staged, scoreboard, sort_prefs, updated_at)
			 VALUES ($1, $2::jsonb, $3::jsonb, $4, $5, $6, $7::jsonb, $8::jsonb, $9::jsonb, $10)
			 ON CONFLICT (match_id) DO UPDATE SET
			    settings = EXCLUDED.settings,
			    custom_stats = EXCLUDED.custom_stats,
			    clock_running = EXCLUDED.clock_running,
			    clock_seconds = EXCLUDED.clock_seconds,
			    clock_anchor = EXCLUDED.clock_anchor,
			    staged = EXCLUDED.staged,
			    scoreboard = EXCLUDED.scoreboard,
			    sort_prefs = EXCLUDED.sort_prefs,
			    updated_at = EXCLUDED.updated_at`,
			matchID, string(settings), string(customStats), st.Clock.Running, st.Clock.Seconds, st.Clock.Anchor,
			string(staged), string(scoreboard), string(sortPrefs), updatedAt,
		); err != nil {
			return repository.MapPgError(err)
		}

		if _, err := exec.Exec(ctx, `DELETE FROM match_players WHERE match_id = $1`, matchID); err != nil {
			return repository.MapPgError(err)
		}
		if len(st.Players) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, p := range st.Players {
			stats, err := json.Marshal(nonNilMap(p.Stats))
			if err != nil {
				return err
			}
			positions := make([]string, len(p.Positions))
			for j, pos := range p.Positions {
				positions[j] = string(pos)
			}
			batch.Queue(
				`INSERT INTO match_players
				    (match_id, player_id, roster_order, name, number, seconds, on_field, stats, positions)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)`,
				matchID, p.ID, i, p.Name, p.Number, p.Seconds, p.On, string(stats), positions,
			)
		}
		br := exec.SendBatch(ctx, batch)
		for range st.Players {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return repository.MapPgError(err)
			}
		}
		return repository.MapPgError(br.Close())
	})
}

func (r *stateRepository) Delete(ctx context.Context, matchID string) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM match_states WHERE match_id = $1`, matchID)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type field struct {
	raw []byte
	dst any
}

func unmarshalAll(fields ...field) error {
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return fmt.Errorf("%w: %v", repository.ErrInvalidState, err)
		}
	}
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func nonNilMap(in map[string]int) map[string]int {
	if in == nil {
		return map[string]int{}
	}
	return in
}

var _ repository.Store = (*stateRepository)(nil)
