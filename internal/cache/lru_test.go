package cache

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](3)
	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Insert("c", 3)
	c.Insert("d", 4)

	if c.Len() != 3 {
		t.Errorf("Expected 3 keys, got %d", c.Len())
	}
	if c.Cap() != 3 {
		t.Errorf("Expected capacity 3, got %d", c.Cap())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Expected 'a' to be evicted")
	}
	for _, key := range []string{"b", "c", "d"} {
		if !c.Contains(key) {
			t.Errorf("Expected '%s' to be cached", key)
		}
	}
}

func TestLRUPromotion(t *testing.T) {
	tests := []struct {
		name    string
		promote func(c *LRU[string, int])
		evicted string
	}{
		{
			name:    "get promotes",
			promote: func(c *LRU[string, int]) { c.Get("a") },
			evicted: "b",
		},
		{
			name:    "contains promotes",
			promote: func(c *LRU[string, int]) { c.Contains("a") },
			evicted: "b",
		},
		{
			name:    "insert of existing key promotes",
			promote: func(c *LRU[string, int]) { c.Insert("a", 10) },
			evicted: "b",
		},
		{
			name:    "miss does not promote",
			promote: func(c *LRU[string, int]) { c.Get("z") },
			evicted: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[string, int](3)
			c.Insert("a", 1)
			c.Insert("b", 2)
			c.Insert("c", 3)

			tt.promote(c)
			c.Insert("d", 4)

			if c.Contains(tt.evicted) {
				t.Errorf("Expected '%s' to be evicted, keys are %v", tt.evicted, c.Keys())
			}
			if c.Len() != 3 {
				t.Errorf("Expected 3 keys, got %d", c.Len())
			}
		})
	}
}

func TestLRUInsertUpdatesValue(t *testing.T) {
	c := New[string, int](2)
	c.Insert("a", 1)
	c.Insert("a", 2)

	if c.Len() != 1 {
		t.Errorf("Expected 1 key, got %d", c.Len())
	}
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Expected 2, got %d", v)
	}
}

func TestLRUKeysOrder(t *testing.T) {
	c := New[int, struct{}](4)
	for i := range 4 {
		c.Insert(i, struct{}{})
	}
	c.Get(1)

	if diff := cmp.Diff([]int{1, 3, 2, 0}, c.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
}

func TestLRUDeleteFunc(t *testing.T) {
	c := New[string, int](5)
	for _, key := range []string{"tmp/1", "root", "tmp/2", "docs"} {
		c.Insert(key, 0)
	}

	removed := c.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, "tmp/") })
	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}
	if diff := cmp.Diff([]string{"docs", "root"}, c.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	if c.Contains("tmp/1") {
		t.Error("Expected 'tmp/1' to be gone")
	}
}

func TestLRUCapacityOne(t *testing.T) {
	c := New[string, int](1)
	c.Insert("a", 1)
	c.Insert("b", 2)

	if c.Contains("a") {
		t.Error("Expected 'a' to be evicted")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("Expected b=2, got %d (found=%v)", v, ok)
	}
}

func TestLRUPanicsOnNonPositiveCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected New(0) to panic")
		}
	}()
	New[string, int](0)
}
