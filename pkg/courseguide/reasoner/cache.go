package reasoner

import (
	"sort"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
)

const (
	// DefaultCacheSize bounds the domain cache when no size is configured.
	DefaultCacheSize = 128

	domainKeyPrefix = "domain_"
)

// CacheStats describes the domain cache.
type CacheStats struct {
	Size     int      `json:"size"`
	Capacity int      `json:"capacity"`
	Keys     []string `json:"keys"`
	Hits     uint64   `json:"hits"`
	Misses   uint64   `json:"misses"`
}

// domainCache is a bounded read-through cache for resolved domain lookups.
// Empty results are cached too. Concurrent misses on one key share a single
// resolution.
type domainCache struct {
	entries  *lru.Cache[string, []model.Course]
	flight   singleflight.Group
	capacity int
	hits     atomic.Uint64
	misses   atomic.Uint64
}

func newDomainCache(size int) *domainCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, []model.Course](size)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &domainCache{entries: entries, capacity: size}
}

func domainKey(domain string) string { return domainKeyPrefix + domain }

func (c *domainCache) get(key string) ([]model.Course, bool) {
	v, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
		return cloneCourses(v), true
	}
	c.misses.Add(1)
	return nil, false
}

func (c *domainCache) add(key string, v []model.Course) {
	c.entries.Add(key, cloneCourses(v))
}

// resolve returns the cached value for key or runs fn once for all
// concurrent callers. fn reports whether its result may be cached.
func (c *domainCache) resolve(key string, fn func() ([]model.Course, bool)) []model.Course {
	v, _, _ := c.flight.Do(key, func() (any, error) {
		if cached, ok := c.entries.Peek(key); ok {
			return cached, nil
		}
		res, cacheable := fn()
		if cacheable {
			c.add(key, res)
		}
		return res, nil
	})
	return cloneCourses(v.([]model.Course))
}

func (c *domainCache) invalidate(domain string) {
	if domain == "" {
		c.entries.Purge()
		return
	}
	c.entries.Remove(domainKey(domain))
}

func (c *domainCache) stats() CacheStats {
	keys := c.entries.Keys()
	sort.Strings(keys)
	return CacheStats{
		Size:     c.entries.Len(),
		Capacity: c.capacity,
		Keys:     keys,
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
	}
}

func cloneCourses(in []model.Course) []model.Course {
	if in == nil {
		return []model.Course{}
	}
	out := make([]model.Course, len(in))
	for i, c := range in {
		out[i] = c
		if c.Skills != nil {
			out[i].Skills = append([]string(nil), c.Skills...)
		}
	}
	return out
}
