package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultHuntChannel = "hunt:results"

// RedisPublisher publishes hunt events as JSON on a Redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultHuntChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// DialRedis connects and pings so misconfiguration fails at startup.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (p *RedisPublisher) PublishHunt(ctx context.Context, ev HuntEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, b).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Subscribe delivers hunt events from channel to fn until ctx ends.
// Malformed payloads are logged and skipped.
func Subscribe(ctx context.Context, client *redis.Client, channel string, fn func(HuntEvent)) error {
	if channel == "" {
		channel = DefaultHuntChannel
	}
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev HuntEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("drop malformed hunt event")
				continue
			}
			fn(ev)
		}
	}
}
