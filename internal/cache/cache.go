package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a size-bounded LRU whose entries also expire after a fixed duration.
type TTL[K comparable, V any] struct {
	lru *lru.Cache[K, item[V]]
	ttl time.Duration
	now func() time.Time
}

// New creates a TTL cache holding at most size entries.
func New[K comparable, V any](size int, ttl time.Duration) (*TTL[K, V], error) {
	l, err := lru.New[K, item[V]](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &TTL[K, V]{lru: l, ttl: ttl, now: time.Now}, nil
}

// Set stores value under key until the TTL elapses
func (c *TTL[K, V]) Set(key K, value V) {
	c.lru.Add(key, item[V]{value: value, expiresAt: c.now().Add(c.ttl)})
}

// Get returns the cached value, dropping it if expired
func (c *TTL[K, V]) Get(key K) (V, bool) {
	var zero V
	it, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().After(it.expiresAt) {
		c.lru.Remove(key)
		return zero, false
	}
	return it.value, true
}

// Delete removes key
func (c *TTL[K, V]) Delete(key K) {
	c.lru.Remove(key)
}

// Len reports the number of entries, expired ones included until they are touched
func (c *TTL[K, V]) Len() int {
	return c.lru.Len()
}
