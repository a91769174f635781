package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lox/holdem/internal/game"
)

// Redis stores snapshots as JSON strings under <prefix><table id>.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis store
type RedisOption func(*Redis)

// WithPrefix changes the key prefix (default "holdem:snapshot:").
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// WithTTL expires snapshots that are not saved again within ttl.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = ttl }
}

// NewRedis wraps a go-redis client.
func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb, prefix: "holdem:snapshot:"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr string, opts ...RedisOption) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return NewRedis(rdb, opts...), nil
}

func (r *Redis) key(tableID string) string { return r.prefix + tableID }

func (r *Redis) Save(ctx context.Context, tableID string, snap game.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(tableID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", tableID, err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, tableID string) (game.Snapshot, error) {
	data, err := r.rdb.Get(ctx, r.key(tableID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load snapshot %s: %w", tableID, err)
	}
	return decode(data)
}

func (r *Redis) Delete(ctx context.Context, tableID string) error {
	return r.rdb.Del(ctx, r.key(tableID)).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error { return r.rdb.Close() }
