package memstore

import "sync"

// MemoryCache is a process-local documentation cache with the same staging
// rules as the bolt store: entries stored during a file become visible to
// Lookup at once but only survive Discard once committed.
type MemoryCache struct {
	mu        sync.RWMutex
	committed map[string]string
	pending   map[string]string
	hits      int
	misses    int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		committed: make(map[string]string),
		pending:   make(map[string]string),
	}
}

func (c *MemoryCache) Lookup(hash string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	docs, ok := c.committed[hash]
	if !ok {
		docs, ok = c.pending[hash]
	}
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return docs, ok
}

func (c *MemoryCache) Store(hash, docs string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[hash] = docs
}

func (c *MemoryCache) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.pending {
		c.committed[k] = v
	}
	c.pending = make(map[string]string)
	return nil
}

func (c *MemoryCache) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = make(map[string]string)
}

// Len returns the number of committed entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.committed)
}

// Counters returns lookup hits and misses.
func (c *MemoryCache) Counters() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
