// Package cache is a small TTL cache keyed by event, used for computed
// dashboard data that is cheap to drop on writes.
package cache

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Cache struct {
	store *gocache.Cache
	ttl   time.Duration
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{
		store: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func Key(prefix string, eventID uint) string {
	return fmt.Sprintf("%s:%d", prefix, eventID)
}

func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, c.ttl)
}

// InvalidateEvent drops every entry of the event, whatever the prefix.
func (c *Cache) InvalidateEvent(eventID uint) {
	suffix := fmt.Sprintf(":%d", eventID)
	for key := range c.store.Items() {
		if strings.HasSuffix(key, suffix) {
			c.store.Delete(key)
		}
	}
}

// GetOrLoad returns the cached value of key or stores the result of load.
func GetOrLoad[T any](c *Cache, key string, load func() (T, error)) (T, bool, error) {
	if v, ok := c.store.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, true, nil
		}
	}

	v, err := load()
	if err != nil {
		var zero T
		return zero, false, err
	}
	c.Set(key, v)

	return v, false, nil
}
