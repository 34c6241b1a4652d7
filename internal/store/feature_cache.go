package store

import (
	"sync"

	"github.com/agenthands/sightline/internal/model"
)

// FeatureCache is the two-tier feature cache. L1 holds window-level
// features, L2 holds tokenized tracklet labels seeded by stage 3. Hit and
// miss counters are cumulative for the cache's lifetime, which is the
// engine instance: repeated identical queries are expected to warm it.
type FeatureCache struct {
	mu     sync.Mutex
	l1     map[string]model.WindowFeatures
	l2     map[string][]string
	hits   int
	misses int
}

func NewFeatureCache() *FeatureCache {
	return &FeatureCache{
		l1: make(map[string]model.WindowFeatures),
		l2: make(map[string][]string),
	}
}

func (c *FeatureCache) GetL1(key string) (model.WindowFeatures, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.l1[key]
	if !ok {
		c.misses++
		return model.WindowFeatures{}, false
	}
	c.hits++
	return item, true
}

func (c *FeatureCache) SetL1(key string, value model.WindowFeatures) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l1[key] = value
}

func (c *FeatureCache) GetL2(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.l2[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return item, true
}

func (c *FeatureCache) SetL2(key string, value []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l2[key] = value
}

// Counters returns the cumulative hit and miss counts.
func (c *FeatureCache) Counters() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
