package knowledge

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

// cacheSize bounds the per-process search result cache. Entries are
// read-mostly; concurrent overwrite is semantically benign.
const cacheSize = 64

type resultCache struct {
	lru *lru.Cache[string, []model.Source]
}

func newResultCache() *resultCache {
	c, err := lru.New[string, []model.Source](cacheSize)
	if err != nil {
		// only fails on non-positive size
		panic(err)
	}
	return &resultCache{lru: c}
}

func (c *resultCache) get(key string) ([]model.Source, bool) {
	return c.lru.Get(key)
}

func (c *resultCache) put(key string, results []model.Source) {
	c.lru.Add(key, results)
}
