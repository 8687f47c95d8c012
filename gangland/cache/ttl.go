package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/gangland/server/internal/clock"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is a size bounded LRU whose entries also expire after a fixed age.
type TTL[V any] struct {
	cache *lru.Cache
	ttl   time.Duration
	clock clock.Clock
}

func NewTTL[V any](size int, ttl time.Duration, clk clock.Clock) (*TTL[V], error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &TTL[V]{cache: c, ttl: ttl, clock: clk}, nil
}

func (t *TTL[V]) Get(key string) (V, bool) {
	var zero V
	raw, ok := t.cache.Get(key)
	if !ok {
		return zero, false
	}
	e := raw.(entry[V])
	if t.clock.Now().Sub(e.storedAt) >= t.ttl {
		t.cache.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Stale returns the entry even when it expired. Callers use it to keep serving
// the last good value when a refresh fails.
func (t *TTL[V]) Stale(key string) (V, bool) {
	var zero V
	raw, ok := t.cache.Peek(key)
	if !ok {
		return zero, false
	}
	return raw.(entry[V]).value, true
}

func (t *TTL[V]) Add(key string, value V) {
	t.cache.Add(key, entry[V]{value: value, storedAt: t.clock.Now()})
}

func (t *TTL[V]) Remove(key string) {
	t.cache.Remove(key)
}

func (t *TTL[V]) Len() int {
	return t.cache.Len()
}
