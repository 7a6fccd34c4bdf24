package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/models"
)

// RedisStore holds message documents in Redis, one JSON value per id.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis message store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// messageKey returns the key for a message document.
func messageKey(id string) string {
	return fmt.Sprintf("message:%s", id)
}

// Create stores a new message document, minting a ULID and a UTC timestamp.
func (s *RedisStore) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, messageKey(msg.ID), data, 0).Err()
}

// Get retrieves a message document by id. Returns nil for a missing id.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Message, error) {
	data, err := s.client.Get(ctx, messageKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Edit updates a message's text in place, keeping its id and timestamp.
// Returns false if the id does not resolve.
func (s *RedisStore) Edit(ctx context.Context, id, newText string) (bool, error) {
	msg, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, nil
	}

	msg.Text = newText
	data, err := json.Marshal(msg)
	if err != nil {
		return false, err
	}
	if err := s.client.Set(ctx, messageKey(id), data, 0).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a message document. Deleting a missing id is a no-op.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, messageKey(id)).Err()
}
