package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "minigames:live:"

// RedisBroker relays live events through Redis pub/sub so every instance
// behind a load balancer sees every session.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func redisChannel(creationID string) string { return redisChannelPrefix + creationID }

func (b *RedisBroker) Publish(ctx context.Context, creationID string, event LiveEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, redisChannel(creationID), data).Err(); err != nil {
		return fmt.Errorf("publishing live event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, creationID string) (<-chan []byte, func(), error) {
	ps := b.client.Subscribe(ctx, redisChannel(creationID))
	// Wait for the subscription confirmation so errors surface here.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, nil, fmt.Errorf("subscribing to live events: %w", err)
	}

	ch := make(chan []byte, 16)
	done := make(chan struct{})
	go func() {
		defer close(ch)
		in := ps.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case ch <- []byte(msg.Payload):
				default:
					// Drop if subscriber is slow.
				}
			}
		}
	}()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			close(done)
			ps.Close()
		})
	}, nil
}

// Check implements health.Checker.
func (b *RedisBroker) Check(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
