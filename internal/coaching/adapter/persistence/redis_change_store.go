package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	"coach-portal/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

const streamPrefix = "changes:"

// RedisChangeStore keeps one Redis stream per collection so reconnecting clients
// can replay the writes they missed.
type RedisChangeStore struct {
	client *redis.Client
	maxLen int64
	logger logger.Logger
}

var _ repository.ChangeStore = (*RedisChangeStore)(nil)

// NewRedisChangeStore trims each stream to roughly maxLen entries (0 disables trimming).
func NewRedisChangeStore(client *redis.Client, maxLen int64, log logger.Logger) *RedisChangeStore {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedisChangeStore{client: client, maxLen: maxLen, logger: log.WithComponent("change-store")}
}

// StreamKey names the stream holding a collection's changes.
func StreamKey(collection string) string {
	return streamPrefix + collection
}

func (s *RedisChangeStore) Append(ctx context.Context, change model.StoredChange) (string, error) {
	data, err := json.Marshal(change.Data)
	if err != nil {
		return "", fmt.Errorf("encode change data: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: StreamKey(change.Collection),
		Values: map[string]interface{}{
			"type":       change.Type,
			"collection": change.Collection,
			"id":         change.ID,
			"data":       string(data),
			"timestamp":  change.Timestamp,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		s.logger.Errorf("failed to append %s change for %s/%s: %v", change.Type, change.Collection, change.ID, err)
		return "", err
	}
	return id, nil
}

func (s *RedisChangeStore) Since(ctx context.Context, collection, since string, limit int64) ([]model.StoredChange, error) {
	start := "-"
	if since != "" && since != "0" {
		// exclusive range start
		start = "(" + since
	}
	if limit <= 0 {
		limit = 1000
	}

	msgs, err := s.client.XRangeN(ctx, StreamKey(collection), start, "+", limit).Result()
	if errors.Is(err, redis.Nil) {
		return []model.StoredChange{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s changes: %w", collection, err)
	}

	changes := make([]model.StoredChange, 0, len(msgs))
	for _, msg := range msgs {
		change, err := parseMessage(msg)
		if err != nil {
			s.logger.Warnf("skipping malformed change %s: %v", msg.ID, err)
			continue
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// Ping checks the Redis connection.
func (s *RedisChangeStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisChangeStore) Close() error {
	return s.client.Close()
}

func parseMessage(msg redis.XMessage) (model.StoredChange, error) {
	str := func(key string) string {
		v, _ := msg.Values[key].(string)
		return v
	}
	change := model.StoredChange{
		StreamID:   msg.ID,
		Type:       str("type"),
		Collection: str("collection"),
		ID:         str("id"),
		Timestamp:  str("timestamp"),
	}
	if change.Type == "" || change.ID == "" {
		return change, errors.New("missing type or id")
	}
	if raw := str("data"); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &change.Data); err != nil {
			return change, fmt.Errorf("decode data: %w", err)
		}
	}
	return change, nil
}
