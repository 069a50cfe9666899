package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisTransport shares envelopes between server instances over one pub/sub channel.
type RedisTransport struct {
	client  *redis.Client
	channel string
}

func NewRedisTransport(client *redis.Client, channel string) *RedisTransport {
	return &RedisTransport{client: client, channel: channel}
}

func (t *RedisTransport) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := t.client.Publish(ctx, t.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Attach subscribes to the channel and feeds every received envelope to hub
// until ctx is cancelled. It returns once the subscription is confirmed.
func (t *RedisTransport) Attach(ctx context.Context, hub *Hub) error {
	sub := t.client.Subscribe(ctx, t.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", t.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					hub.log.Warn().Err(err).Msg("discarding malformed envelope")
					continue
				}
				hub.Deliver(env)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// NewRedisClient builds a client from a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
