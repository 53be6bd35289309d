package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, "test")
}

func TestRedisSetGet(t *testing.T) {
	s := newTestRedis(t)
	ctx := context.Background()

	if err := s.Set(ctx, "a", "1", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "1" {
		t.Fatalf("Get = %q, want %q", got, "1")
	}
}

func TestRedisGetMissing(t *testing.T) {
	s := newTestRedis(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestRedisRemove(t *testing.T) {
	s := newTestRedis(t)
	ctx := context.Background()

	if err := s.Set(ctx, "a", "1", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get removed = %v, want ErrNotFound", err)
	}
}

func TestRedisClear(t *testing.T) {
	s := newTestRedis(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, k, "v", 0); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Clear = %v, want ErrNotFound", err)
	}
}

func TestRedisClearSparesOtherPrefixes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	a := NewRedis(client, "a")
	b := NewRedis(client, "b")
	ctx := context.Background()

	if err := a.Set(ctx, "k", "va", 0); err != nil {
		t.Fatalf("Set a: %v", err)
	}
	if err := b.Set(ctx, "k", "vb", 0); err != nil {
		t.Fatalf("Set b: %v", err)
	}
	if err := a.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := a.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("a key survived Clear: %v", err)
	}
	got, err := b.Get(ctx, "k")
	if err != nil || got != "vb" {
		t.Fatalf("b key lost after a.Clear: %q, %v", got, err)
	}
}

func TestRedisTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewRedis(client, "test")
	ctx := context.Background()

	if err := s.Set(ctx, "short", "v", time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, err := s.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get expired = %v, want ErrNotFound", err)
	}
}

func TestRedisPing(t *testing.T) {
	s := newTestRedis(t)
	if _, err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
