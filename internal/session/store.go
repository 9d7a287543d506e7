package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is the part of a workspace that survives a restart.
type State struct {
	Role    string   `json:"role"`
	Notices []string `json:"notices,omitempty"`
}

type Store interface {
	Load(ctx context.Context, id string) (State, bool, error)
	Save(ctx context.Context, id string, st State, ttl time.Duration) error
}

const redisKeyPrefix = "tmhna:workspace:"

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (r *RedisStore) Load(ctx context.Context, id string) (State, bool, error) {
	var st State
	val, err := r.rdb.Get(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return st, false, nil
		}
		return st, false, err
	}
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		return st, false, err
	}
	return st, true, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, st State, ttl time.Duration) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, redisKeyPrefix+id, b, ttl).Err()
}
