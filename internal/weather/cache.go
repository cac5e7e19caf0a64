package weather

import "sync"

// Cache memoizes samples by rounded coordinate for one render pass.
// Entries are never evicted; Reset clears everything at the start of a pass.
type Cache struct {
	mu      sync.RWMutex
	samples map[Key]Sample
}

func NewCache() *Cache {
	return &Cache{samples: make(map[Key]Sample)}
}

func (c *Cache) Get(k Key) (Sample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.samples[k]
	return s, ok
}

func (c *Cache) Put(k Key, s Sample) {
	c.mu.Lock()
	c.samples[k] = s
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.samples)
}

// Reset drops all entries.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.samples = make(map[Key]Sample)
	c.mu.Unlock()
}
