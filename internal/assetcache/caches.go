package assetcache

import (
	"slices"
	"sync"

	"github.com/patrickmn/go-cache"
)

// Caches is a set of named asset caches, one per worker version.
type Caches struct {
	mu     sync.Mutex
	byName map[string]*cache.Cache
}

func NewCaches() *Caches {
	return &Caches{byName: make(map[string]*cache.Cache)}
}

// Open returns the cache called name, creating it if needed. Entries never
// expire; a cache is dropped as a whole when its version is retired.
func (c *Caches) Open(name string) *cache.Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byName[name]; ok {
		return existing
	}
	created := cache.New(cache.NoExpiration, 0)
	c.byName[name] = created
	return created
}

// Keys returns the cache names in sorted order.
func (c *Caches) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Delete drops the cache called name and reports whether it existed.
func (c *Caches) Delete(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.byName[name]
	if ok {
		existing.Flush()
		delete(c.byName, name)
	}
	return ok
}

// Match looks key up in every cache, the way a request is matched against
// all caches of an origin.
func (c *Caches) Match(key string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.byName {
		if v, ok := ch.Get(key); ok {
			return v.(*Response).clone(), true
		}
	}
	return nil, false
}
