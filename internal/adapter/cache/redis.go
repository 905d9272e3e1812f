package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/firstlist/presentd/internal/domain"
)

// Client is the slice of the go-redis API the reader needs.
// *redis.Client satisfies it.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisReader reads worker-published status and result keys. The core never
// writes these keys; workers own them.
type RedisReader struct {
	client       Client
	statusPrefix string
	resultPrefix string
}

// NewRedisReader creates a reader using the given key prefixes, typically
// "job_status:" and "presentation:".
func NewRedisReader(client Client, statusPrefix, resultPrefix string) *RedisReader {
	return &RedisReader{client: client, statusPrefix: statusPrefix, resultPrefix: resultPrefix}
}

// ReadStatus returns the raw worker-written status string. A missing key is
// ok=false with no error.
func (r *RedisReader) ReadStatus(ctx context.Context, jobID string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.statusPrefix+jobID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get status: %v", domain.ErrCacheUnavailable, err)
	}
	return val, true, nil
}

// ReadResult returns the result payload once the worker has produced it.
func (r *RedisReader) ReadResult(ctx context.Context, jobID string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.resultPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get result: %v", domain.ErrCacheUnavailable, err)
	}
	return val, true, nil
}

var _ domain.StatusCache = (*RedisReader)(nil)
