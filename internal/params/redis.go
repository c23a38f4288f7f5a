package params

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// loadRedisListValues runs a single blocking LRANGE at construction time and
// never touches Redis again; the list snapshot backs the same bounded
// in-memory slice the file sources use.
func loadRedisListValues(addr, key string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	values, err := client.LRange(ctx, key, 0, int64(maxLines)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: redis source LRANGE %q: %v", ErrInvalidSource, key, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: redis key %q yielded zero usable values", ErrInvalidSource, key)
	}
	return values, nil
}

// RedisRoundRobin cycles through values loaded once from a Redis list.
type RedisRoundRobin struct {
	values []string
	idx    uint64
}

func NewRedisRoundRobin(addr, key string, maxLines int) (*RedisRoundRobin, error) {
	values, err := loadRedisListValues(addr, key, maxLines)
	if err != nil {
		return nil, err
	}
	return &RedisRoundRobin{values: values}, nil
}

func (r *RedisRoundRobin) Next() string {
	n := atomic.AddUint64(&r.idx, 1) - 1
	return r.values[n%uint64(len(r.values))]
}

// RedisRandom draws uniformly from values loaded once from a Redis list.
type RedisRandom struct {
	values []string
	rng    *rand.Rand
}

func NewRedisRandom(addr, key string, maxLines int, rng *rand.Rand) (*RedisRandom, error) {
	values, err := loadRedisListValues(addr, key, maxLines)
	if err != nil {
		return nil, err
	}
	return &RedisRandom{values: values, rng: rng}, nil
}

func (r *RedisRandom) Next() string {
	return r.values[r.rng.Intn(len(r.values))]
}
