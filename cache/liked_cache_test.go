package cache

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newLiveCache(t *testing.T) (*LikedCache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLikedCache(client), mr, client
}

// Without a redis client the cache degrades to permanent misses so callers
// never branch on its presence.
func TestLikedCache_NilClient(t *testing.T) {
	for _, c := range []*LikedCache{nil, NewLikedCache(nil)} {
		if c.Available() {
			t.Fatal("cache without a client must report unavailable")
		}

		ids, hit := c.GetSongIDs(context.Background(), 1)
		if hit || ids != nil {
			t.Fatalf("expected a miss, got ids=%v hit=%v", ids, hit)
		}

		if err := c.SetSongIDs(context.Background(), 1, []int64{1, 2}); err != nil {
			t.Fatalf("SetSongIDs should be a no-op, got %v", err)
		}

		// Must not panic.
		c.Invalidate(context.Background(), 1)
	}
}

func TestLikedCache_RoundTrip(t *testing.T) {
	c, mr, _ := newLiveCache(t)
	ctx := context.Background()

	// Empty cache is a miss, not an empty hit.
	if _, hit := c.GetSongIDs(ctx, 1); hit {
		t.Fatal("expected a miss before any fill")
	}

	if err := c.SetSongIDs(ctx, 1, []int64{3, 1, 2}); err != nil {
		t.Fatalf("SetSongIDs error: %v", err)
	}
	if !c.Available() {
		t.Fatal("cache with a live client must report available")
	}

	ids, hit := c.GetSongIDs(ctx, 1)
	if !hit {
		t.Fatal("expected a hit after a fill")
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	want := []int64{1, 2, 3}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}

	if mr.TTL(likedKey(1)) <= 0 {
		t.Fatal("filled set must carry an expiry")
	}
}

func TestLikedCache_SetReplacesPreviousSet(t *testing.T) {
	c, _, _ := newLiveCache(t)
	ctx := context.Background()

	if err := c.SetSongIDs(ctx, 1, []int64{1, 2, 3}); err != nil {
		t.Fatalf("SetSongIDs error: %v", err)
	}
	if err := c.SetSongIDs(ctx, 1, []int64{9}); err != nil {
		t.Fatalf("SetSongIDs error: %v", err)
	}

	ids, hit := c.GetSongIDs(ctx, 1)
	if !hit || len(ids) != 1 || ids[0] != 9 {
		t.Fatalf("ids = %v hit=%v, want [9]", ids, hit)
	}
}

func TestLikedCache_Invalidate(t *testing.T) {
	c, mr, _ := newLiveCache(t)
	ctx := context.Background()

	if err := c.SetSongIDs(ctx, 1, []int64{5}); err != nil {
		t.Fatalf("SetSongIDs error: %v", err)
	}
	c.Invalidate(ctx, 1)

	if mr.Exists(likedKey(1)) {
		t.Fatal("invalidated key must be gone")
	}
	if _, hit := c.GetSongIDs(ctx, 1); hit {
		t.Fatal("expected a miss after invalidation")
	}
}

func TestLikedCache_CorruptMemberDropsSet(t *testing.T) {
	c, mr, client := newLiveCache(t)
	ctx := context.Background()

	if err := client.SAdd(ctx, likedKey(1), "12", "not-a-number").Err(); err != nil {
		t.Fatalf("SAdd error: %v", err)
	}

	if _, hit := c.GetSongIDs(ctx, 1); hit {
		t.Fatal("corrupt set must read as a miss")
	}
	if mr.Exists(likedKey(1)) {
		t.Fatal("corrupt set must be dropped, not served again")
	}
}

func TestLikedKey(t *testing.T) {
	if got := likedKey(42); got != "liked:42" {
		t.Fatalf("unexpected key %q", got)
	}
}
