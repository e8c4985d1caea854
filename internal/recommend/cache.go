package recommend

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const resultCacheSize = 512

// resultCache memoizes ranked lists per (query, k). The matrix is fixed
// between builds, so entries stay valid until the next Build purges them.
type resultCache struct {
	lru *lru.Cache[string, []Recommendation]
}

func newResultCache(size int) *resultCache {
	c, err := lru.New[string, []Recommendation](size)
	if err != nil {
		// Only fails for size <= 0.
		panic(fmt.Sprintf("creating result cache: %v", err))
	}
	return &resultCache{lru: c}
}

func cacheKey(queryID string, k int) string {
	return fmt.Sprintf("%s|%d", queryID, k)
}

func (c *resultCache) get(queryID string, k int) ([]Recommendation, bool) {
	return c.lru.Get(cacheKey(queryID, k))
}

func (c *resultCache) put(queryID string, k int, results []Recommendation) {
	c.lru.Add(cacheKey(queryID, k), results)
}

func (c *resultCache) purge() {
	c.lru.Purge()
}
