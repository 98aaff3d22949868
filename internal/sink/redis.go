package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"SmartTent.api/internal/models"
	"github.com/redis/go-redis/v9"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes each reading as JSON on a Redis pub/sub channel.
type RedisSink struct {
	client  *redis.Client
	pub     publisher
	channel string
}

// NewRedisSink creates a sink publishing on channel.
func NewRedisSink(addr, password string, db int, channel string) *RedisSink {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSink{client: client, pub: client, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

// Ping tests the Redis connection.
func (s *RedisSink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not connect to Redis: %w", err)
	}
	return nil
}

func (s *RedisSink) Publish(ctx context.Context, t models.Telemetry) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding telemetry for %s: %w", t.DeviceID, err)
	}
	if err := s.pub.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", s.channel, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisSink) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
