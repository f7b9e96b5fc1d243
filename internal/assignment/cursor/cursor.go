// Package cursor maintains the round-robin rotation pointers behind the
// assignment engine. One counter per service category lives in Redis so the
// increment-and-read is a single atomic operation across processes.
package cursor

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "assignment:cursor:"

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Next atomically advances the category's rotation counter and returns the
// new value. The first call for a category returns 1.
func (s *Store) Next(ctx context.Context, category string) (int64, error) {
	n, err := s.rdb.Incr(ctx, keyPrefix+category).Result()
	if err != nil {
		return 0, fmt.Errorf("advance cursor for %q: %w", category, err)
	}
	return n, nil
}
