package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "save:"
	redisIndexKey  = "saves"
)

// RedisStore keeps each record as a JSON string plus an index set of ids.
type RedisStore struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis for saves", "addr", opt.Addr)
	return &RedisStore{rdb: rdb, logger: logger}, nil
}

func redisKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

// Create stores a new record.
func (s *RedisStore) Create(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, redisKey(r.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("save %s already exists", r.ID)
	}
	if err := s.rdb.SAdd(ctx, redisIndexKey, r.ID.String()).Err(); err != nil {
		return fmt.Errorf("redis sadd failed: %w", err)
	}

	s.logger.Debug("Redis save created", "id", r.ID)
	return nil
}

// Save overwrites an existing record.
func (s *RedisStore) Save(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	ok, err := s.rdb.SetXX(ctx, redisKey(r.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, r.ID)
	}

	s.logger.Debug("Redis save written", "id", r.ID, "level", r.Level)
	return nil
}

// Load returns the record with the given id.
func (s *RedisStore) Load(ctx context.Context, id uuid.UUID) (Record, error) {
	raw, err := s.rdb.Get(ctx, redisKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("redis get failed: %w", err)
	}

	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal save %s: %w", id, err)
	}
	return r, nil
}

// List returns every indexed record, most recent first. Index entries
// whose record is gone are skipped.
func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	ids, err := s.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKeyPrefix + id
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget failed: %w", err)
	}

	records := make([]Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			s.logger.Warn("Save index points at missing record", "id", ids[i])
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal save %s: %w", ids[i], err)
		}
		records = append(records, r)
	}

	sortNewestFirst(records)
	return records, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
