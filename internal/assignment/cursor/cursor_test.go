package cursor

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb)
}

func TestNextIncrementsPerCategory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := store.Next(ctx, "cleaning")
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != want {
			t.Errorf("Next = %d, want %d", got, want)
		}
	}
}

func TestNextIsIndependentAcrossCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Next(ctx, "cleaning"); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := store.Next(ctx, "cleaning"); err != nil {
		t.Fatalf("Next: %v", err)
	}

	got, err := store.Next(ctx, "plumbing")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != 1 {
		t.Errorf("Next(plumbing) = %d, want 1", got)
	}
}
