// Package redis stores match sessions as JSON documents in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces every key this store writes.
const DefaultKeyPrefix = "equalplay"

type stateRepository struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewStateRepository wraps a go-redis client. A zero ttl keeps sessions forever.
func NewStateRepository(client *goredis.Client, prefix string, ttl time.Duration) repository.Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &stateRepository{client: client, prefix: prefix, ttl: ttl}
}

// Key returns the storage key for a match.
func Key(prefix, matchID string) string {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return fmt.Sprintf("%s:match:%s:state", prefix, matchID)
}

func (r *stateRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *stateRepository) Load(ctx context.Context, matchID string) (model.MatchState, error) {
	data, err := r.client.Get(ctx, Key(r.prefix, matchID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.MatchState{}, repository.ErrNotFound
		}
		return model.MatchState{}, fmt.Errorf("redis get: %w", err)
	}
	var st model.MatchState
	if err := json.Unmarshal(data, &st); err != nil {
		return model.MatchState{}, fmt.Errorf("%w: %v", repository.ErrInvalidState, err)
	}
	return st, nil
}

func (r *stateRepository) Save(ctx context.Context, matchID string, st model.MatchState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	return r.client.Set(ctx, Key(r.prefix, matchID), data, r.ttl).Err()
}

func (r *stateRepository) Delete(ctx context.Context, matchID string) error {
	n, err := r.client.Del(ctx, Key(r.prefix, matchID)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.Store = (*stateRepository)(nil)
