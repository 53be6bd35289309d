package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	s := NewMemory()
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

func TestMemoryGetMissing(t *testing.T) {
	s := NewMemory()
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Set(ctx, "short", "v", time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := s.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get expired = %v, want ErrNotFound", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d after expiry purge, want 0", s.Len())
	}
}

func TestMemoryRemove(t *testing.T) {
	s := NewMemory()
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
	if err := s.Remove(ctx, "absent"); err != nil {
		t.Fatalf("Remove absent = %v, want nil", err)
	}
}

func TestMemoryClear(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, k, "v", 0); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d after Clear, want 0", s.Len())
	}
}

func TestMemoryContextCancelled(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Set(ctx, "a", "1", 0); err == nil {
		t.Fatal("Set with cancelled context should fail")
	}
	if _, err := s.Get(ctx, "a"); err == nil {
		t.Fatal("Get with cancelled context should fail")
	}
}
