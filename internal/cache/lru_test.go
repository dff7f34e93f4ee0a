package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Get() on empty cache should miss")
	}

	c.Set("a", 1)
	v, found := c.Get("a")
	if !found || v != 1 {
		t.Errorf("Get(a) = %v, %v, want 1, true", v, found)
	}

	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after overwrite = %v, want 2", v)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1 after overwrite", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	// Touch k0 so k1 becomes the eviction candidate.
	c.Get("k0")
	c.Set("k3", 3)

	if _, found := c.Get("k1"); found {
		t.Error("k1 should have been evicted as least recently used")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, found := c.Get(key); !found {
			t.Errorf("%s should still be cached", key)
		}
	}
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)
	c.Set("a", "x")

	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("entry should have expired")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after expired read", c.Size())
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)

	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1 after cleanup", c.Size())
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("never-existed")

	if _, found := c.Get("a"); found {
		t.Error("deleted entry should miss")
	}
}

func TestManager_Cleanup(t *testing.T) {
	c := NewLRUCache[int](10, 5*time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after manager sweep", c.Size())
	}
}
