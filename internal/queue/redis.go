package queue

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"stockflow/backend/internal/domain"
)

// RedisStore persists the queue as a redis list, one JSON document per
// action. RPUSH/LRANGE preserves insertion order; DEL clears the whole
// list in one command.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(addr string, password string, db int, key string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if key == "" {
		key = "stockflow:offline-queue"
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Append(ctx context.Context, action domain.QueuedAction) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, s.key, payload).Err()
}

func (s *RedisStore) List(ctx context.Context) ([]domain.QueuedAction, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	actions := make([]domain.QueuedAction, 0, len(raw))
	for _, item := range raw {
		var action domain.QueuedAction
		if err := json.Unmarshal([]byte(item), &action); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
