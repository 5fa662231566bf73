package store

import (
	"context"
	"fmt"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"

	"github.com/redis/go-redis/v9"
)

var _ output.ResultStore = (*RedisStore)(nil)

// RedisStore keeps records as JSON strings in a list under the storage key.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, key: entity.ResultStorageKey}
}

func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisStore(rdb), nil
}

func (s *RedisStore) LoadAll(ctx context.Context) ([]entity.ResultRecord, error) {
	items, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}

	records := make([]entity.ResultRecord, 0, len(items))
	for _, item := range items {
		var rec entity.ResultRecord
		if err := json.UnmarshalFromString(item, &rec); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) Append(ctx context.Context, rec entity.ResultRecord) error {
	data, err := json.MarshalToString(rec)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := s.rdb.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
