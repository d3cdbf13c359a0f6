package cache

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*Redis[entry], func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedis[entry](rdb, "tc:")

	return cache, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func TestRedisPutGetRemove(t *testing.T) {
	ctx := context.Background()
	c, done := newTestRedis(t)
	defer done()

	if err := c.Put(ctx, "t1", entry{Owner: "alice", N: 7}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := c.Get(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("Get missed: ok=%v err=%v", ok, err)
	}
	if got.Owner != "alice" || got.N != 7 {
		t.Fatalf("round trip mangled entry: %+v", got)
	}

	if _, ok, _ := c.Get(ctx, "absent"); ok {
		t.Fatal("Get hit on absent token")
	}

	if err := c.Remove(ctx, "t1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "t1"); ok {
		t.Fatal("entry survived Remove")
	}
}

func TestRedisRemoveWhere(t *testing.T) {
	ctx := context.Background()
	c, done := newTestRedis(t)
	defer done()

	_ = c.Put(ctx, "a1", entry{Owner: "alice"})
	_ = c.Put(ctx, "a2", entry{Owner: "alice"})
	_ = c.Put(ctx, "b1", entry{Owner: "bob"})

	removed, err := c.RemoveWhere(ctx, func(e entry) bool { return e.Owner == "alice" })
	if err != nil {
		t.Fatalf("RemoveWhere failed: %v", err)
	}
	sort.Strings(removed)
	if len(removed) != 2 || removed[0] != "a1" || removed[1] != "a2" {
		t.Fatalf("removed %v", removed)
	}
	if _, ok, _ := c.Get(ctx, "b1"); !ok {
		t.Fatal("unrelated entry removed")
	}
}

func TestRedisClearAndLen(t *testing.T) {
	ctx := context.Background()
	c, done := newTestRedis(t)
	defer done()

	_ = c.Put(ctx, "a", entry{})
	_ = c.Put(ctx, "b", entry{})

	if n, _ := c.Len(ctx); n != 2 {
		t.Fatalf("len %d, want 2", n)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n, _ := c.Len(ctx); n != 0 {
		t.Fatalf("len %d after Clear", n)
	}
}
