package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

// Redis keeps an origin in a hash and announces every change on a pub/sub
// channel, so several processes can act as tabs of the same origin.
type Redis struct {
	client *redis.Client
	origin string
	source string
}

func NewRedis(client *redis.Client, origin string) *Redis {
	return &Redis{
		client: client,
		origin: origin,
		source: uuid.NewString(),
	}
}

func (r *Redis) hashKey() string { return fmt.Sprintf("storage:%s", r.origin) }
func (r *Redis) channel() string { return fmt.Sprintf("storage:%s:events", r.origin) }

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.hashKey(), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis hget: %w", err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	old, ok, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if ok && old == value {
		return nil
	}
	if err := r.client.HSet(ctx, r.hashKey(), key, value).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return r.publish(ctx, session.Event{Key: key, OldValue: old, NewValue: value, Source: r.source})
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	old, ok, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := r.client.HDel(ctx, r.hashKey(), key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return r.publish(ctx, session.Event{Key: key, OldValue: old, Removed: true, Source: r.source})
}

func (r *Redis) publish(ctx context.Context, ev session.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode storage event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel(), b).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Watch subscribes to changes made by other Redis handles of the origin.
// The subscription is confirmed before Watch returns.
func (r *Redis) Watch(fn func(session.Event)) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := r.client.Subscribe(ctx, r.channel())
	if _, err := sub.Receive(ctx); err != nil {
		slog.Error("storage subscribe failed", "origin", r.origin, "error", err)
	}

	go func() {
		for msg := range sub.Channel() {
			var ev session.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("storage event dropped", "origin", r.origin, "error", err)
				continue
			}
			if ev.Source == r.source {
				continue
			}
			fn(ev)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = sub.Close()
		})
	}
}
