package cache

import (
	"testing"
	"time"
)

func TestTTL_GetSet(t *testing.T) {
	c, err := New[uint, string](4, time.Minute)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Set(1, "ada")
	got, ok := c.Get(1)
	if !ok || got != "ada" {
		t.Errorf("Expected cached value 'ada', got %q (ok=%v)", got, ok)
	}

	if _, ok := c.Get(2); ok {
		t.Error("Missing key should not be found")
	}

	c.Delete(1)
	if _, ok := c.Get(1); ok {
		t.Error("Deleted key should not be found")
	}
}

func TestTTL_Expiry(t *testing.T) {
	c, err := New[string, int](4, time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("views", 10)
	now = now.Add(500 * time.Millisecond)
	if _, ok := c.Get("views"); !ok {
		t.Fatal("Entry should still be fresh")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("views"); ok {
		t.Error("Entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("Expired entry should be evicted on read, len=%d", c.Len())
	}
}

func TestTTL_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New[int, int](2, time.Minute)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1)
	c.Set(3, 3)

	if _, ok := c.Get(2); ok {
		t.Error("Least recently used key should be evicted")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("Recently used key should survive")
	}
}

func TestNew_RejectsNonPositiveSize(t *testing.T) {
	if _, err := New[int, int](0, time.Minute); err == nil {
		t.Error("Expected error for zero size")
	}
}
