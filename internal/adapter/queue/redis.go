package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/firstlist/presentd/internal/domain"
)

// Client is the slice of the go-redis API the producer needs.
// *redis.Client satisfies it.
type Client interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisProducer appends work descriptors to a Redis list consumed by the
// worker pool. Delivery is at-least-once; the producer observes no ack.
type RedisProducer struct {
	client Client
	queue  string
}

// NewRedisProducer creates a producer targeting the given list key.
func NewRedisProducer(client Client, queueName string) *RedisProducer {
	return &RedisProducer{client: client, queue: queueName}
}

// Publish serializes the descriptor and pushes it onto the queue.
func (p *RedisProducer) Publish(ctx context.Context, d domain.WorkDescriptor) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}
	if err := p.client.LPush(ctx, p.queue, payload).Err(); err != nil {
		return fmt.Errorf("%w: lpush %s: %v", domain.ErrQueueUnavailable, p.queue, err)
	}
	return nil
}

var _ domain.WorkQueue = (*RedisProducer)(nil)
