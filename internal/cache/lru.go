package cache

import (
	"fmt"

	"github.com/gammazero/deque"
)

// LRU is a fixed capacity map that evicts its least recently used key.
//
// Recency is kept in a deque with the most recent key at the front. Lookups
// scan the deque, which is fine for the tens to low hundreds of entries the
// engine keeps.
type LRU[K comparable, V any] struct {
	capacity int
	order    deque.Deque[K]
	values   map[K]V
}

// New creates an LRU holding at most capacity keys. It panics if capacity
// is not positive.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		panic(fmt.Sprintf("cache: capacity must be positive, got %d", capacity))
	}
	return &LRU[K, V]{
		capacity: capacity,
		values:   make(map[K]V, capacity),
	}
}

// Get returns the value for key and marks key as most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := c.values[key]
	if ok {
		c.touch(key)
	}
	return v, ok
}

// Contains reports whether key is cached. A hit marks key as most recently used.
func (c *LRU[K, V]) Contains(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Insert stores value under key, marks key as most recently used and evicts
// the least recently used key if the cache grew past its capacity.
func (c *LRU[K, V]) Insert(key K, value V) {
	if _, ok := c.values[key]; ok {
		c.values[key] = value
		c.touch(key)
		return
	}

	c.values[key] = value
	c.order.PushFront(key)
	for c.order.Len() > c.capacity {
		delete(c.values, c.order.PopBack())
	}
}

func (c *LRU[K, V]) Len() int {
	return c.order.Len()
}

func (c *LRU[K, V]) Cap() int {
	return c.capacity
}

// Keys returns the cached keys, most recently used first.
func (c *LRU[K, V]) Keys() []K {
	keys := make([]K, c.order.Len())
	for i := range keys {
		keys[i] = c.order.At(i)
	}
	return keys
}

// DeleteFunc removes every key for which del returns true and reports how
// many were removed. It does not change the order of the remaining keys.
func (c *LRU[K, V]) DeleteFunc(del func(K) bool) int {
	removed := 0
	for i := 0; i < c.order.Len(); {
		key := c.order.At(i)
		if !del(key) {
			i++
			continue
		}
		c.order.Remove(i)
		delete(c.values, key)
		removed++
	}
	return removed
}

func (c *LRU[K, V]) touch(key K) {
	i := c.order.Index(func(k K) bool { return k == key })
	if i <= 0 {
		return
	}
	c.order.Remove(i)
	c.order.PushFront(key)
}
