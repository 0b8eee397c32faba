package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces the store's keys in a shared Redis
const DefaultKeyPrefix = "kitchen:"

// RedisStore keeps each document as a JSON string key and publishes every
// write on a per-user channel.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewRedisStore wraps client. prefix is prepended to every key and channel.
func NewRedisStore(client redis.UniversalClient, prefix string, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisStore) key(path string) string {
	return s.prefix + path
}

func (s *RedisStore) channel(userID string) string {
	return s.prefix + "changes:" + userID
}

func (s *RedisStore) Get(ctx context.Context, path string, dst any) error {
	b, err := s.client.Get(ctx, s.key(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return json.Unmarshal(b, dst)
}

func (s *RedisStore) Set(ctx context.Context, path string, v any) error {
	if err := validPath(path); err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return s.write(ctx, Change{Path: path, Value: b}, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, s.key(path), b, 0)
	})
}

func (s *RedisStore) Delete(ctx context.Context, path string) error {
	return s.write(ctx, Change{Path: path}, func(pipe redis.Pipeliner) {
		pipe.Del(ctx, s.key(path))
	})
}

// write runs op and the change notification in one transaction
func (s *RedisStore) write(ctx context.Context, change Change, op func(redis.Pipeliner)) error {
	msg, err := json.Marshal(change)
	if err != nil {
		return err
	}
	userID, notify := userFromPath(change.Path)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		op(pipe)
		if notify {
			pipe.Publish(ctx, s.channel(userID), msg)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", change.Path, err)
	}
	return nil
}

func (s *RedisStore) Watch(ctx context.Context, userID string) (<-chan Change, error) {
	sub := s.client.Subscribe(ctx, s.channel(userID))
	// wait for the subscription so no write after Watch returns is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe for %s: %w", userID, err)
	}

	out := make(chan Change, watchBuffer)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					s.logger.Warn("dropping malformed change", "user_id", userID, "error", err)
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
