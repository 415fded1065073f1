// Package caching is a thin in-memory cache used for parsed resources that
// are expensive to rebuild on every request.
package caching

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultExpiration = 10 * time.Minute
	CleanupInterval   = 10 * time.Minute
)

type Cache struct {
	memoryCache *cache.Cache
}

func NewCache() *Cache {
	return NewCacheWithExpiration(DefaultExpiration, CleanupInterval)
}

func NewCacheWithExpiration(expiration, cleanup time.Duration) *Cache {
	return &Cache{memoryCache: cache.New(expiration, cleanup)}
}

func (s *Cache) Get(key string) (any, bool) {
	return s.memoryCache.Get(key)
}

func (s *Cache) Set(key string, value any) {
	s.memoryCache.SetDefault(key, value)
}

func (s *Cache) Delete(key string) {
	s.memoryCache.Delete(key)
}

func (s *Cache) Flush() {
	s.memoryCache.Flush()
}

func (s *Cache) Len() int {
	return s.memoryCache.ItemCount()
}
