package search

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache keeps the most recently used index of each event.
type Cache struct {
	lru *lru.Cache[uint, *Index]

	mu sync.Mutex
	// generation counts the invalidations of each event.
	generation map[uint]uint64
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 64
	}
	c, err := lru.New[uint, *Index](size)
	if err != nil {
		return nil, fmt.Errorf("lru.New -> %w", err)
	}
	return &Cache{lru: c, generation: make(map[uint]uint64)}, nil
}

// GetOrBuild returns the cached index of the event, building it on a miss.
// An index whose build overlapped an invalidation is returned but not cached.
func (c *Cache) GetOrBuild(eventID uint, build func() ([]Document, error)) (*Index, error) {
	if ix, ok := c.lru.Get(eventID); ok {
		return ix, nil
	}

	gen := c.gen(eventID)
	docs, err := build()
	if err != nil {
		return nil, err
	}
	ix := NewIndex(docs)

	c.mu.Lock()
	if c.generation[eventID] == gen {
		c.lru.Add(eventID, ix)
	}
	c.mu.Unlock()

	return ix, nil
}

func (c *Cache) Invalidate(eventID uint) {
	c.mu.Lock()
	c.generation[eventID]++
	c.lru.Remove(eventID)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

func (c *Cache) gen(eventID uint) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation[eventID]
}
