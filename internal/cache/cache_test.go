package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Errorf("Get(a) = %v, %v, want 1, true", got, ok)
	}

	c.Set("a", 2)
	got, _ = c.Get("a")
	if got != 2 {
		t.Errorf("Get(a) after overwrite = %v, want 2", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // a is now the most recently used
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive, it was touched last")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should survive, it was just inserted")
	}
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should be a miss")
	}
	if c.Size() != 0 {
		t.Errorf("Size() after expiry-on-access = %d, want 0", c.Size())
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)

	c.Set("a", 1)
	c.Delete("a")
	c.Delete("a") // deleting twice is a no-op

	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry should be a miss")
	}
}

func TestLRUCache_DeletePrefix(t *testing.T) {
	c := NewLRUCache[int](8, time.Minute)

	c.Set(Key("user", "3", "total"), 100)
	c.Set(Key("user", "3", "categories"), 200)
	c.Set(Key("user", "30", "total"), 300)
	c.Set(Key("user", "4", "total"), 400)

	removed := c.DeletePrefix(Key("user", "3") + ":")
	if removed != 2 {
		t.Errorf("DeletePrefix removed %d entries, want 2", removed)
	}

	if _, ok := c.Get(Key("user", "3", "total")); ok {
		t.Error("user 3 total should be invalidated")
	}
	if _, ok := c.Get(Key("user", "30", "total")); !ok {
		t.Error("user 30 must not be caught by user 3's prefix")
	}
	if _, ok := c.Get(Key("user", "4", "total")); !ok {
		t.Error("user 4 should be untouched")
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c := NewLRUCache[int](8, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	removed := c.CleanExpired()
	if removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("fresh entry should survive the sweep")
	}
}

func TestKey(t *testing.T) {
	if got := Key("user", "7", "total"); got != "user:7:total" {
		t.Errorf("Key() = %q, want %q", got, "user:7:total")
	}
}
