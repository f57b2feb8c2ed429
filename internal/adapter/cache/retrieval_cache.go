// Package cache memoizes retrieval results for repeated questions.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/port"
)

const (
	defaultMaxEntries = 128
	defaultTTL        = 5 * time.Minute
)

// RetrievalCache is an LRU cache with expiry over retrieval results.
// Identical questions against an unchanged collection return the same
// chunks, so a hit skips the embedding round trip entirely.
type RetrievalCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      []string
	maxEntries int
	ttl        time.Duration
}

type entry struct {
	chunks   []domain.ScoredChunk
	storedAt time.Time
}

// NewRetrievalCache creates a cache holding at most maxEntries results,
// each valid for ttl. Non-positive arguments fall back to defaults.
func NewRetrievalCache(maxEntries int, ttl time.Duration) *RetrievalCache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RetrievalCache{
		entries:    make(map[string]*entry),
		order:      make([]string, 0, maxEntries),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

func key(query string, k int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", k, query)))
	return hex.EncodeToString(sum[:16])
}

// Get returns the cached chunks for the query, or false when the entry
// is missing or expired.
func (c *RetrievalCache) Get(query string, k int) ([]domain.ScoredChunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := key(query, k)
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if time.Since(e.storedAt) > c.ttl {
		c.drop(id)
		return nil, false
	}
	c.touch(id)
	return e.chunks, true
}

// Put stores the chunks for the query, evicting the least recently used
// entry when the cache is full.
func (c *RetrievalCache) Put(query string, k int, chunks []domain.ScoredChunk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := key(query, k)
	if _, ok := c.entries[id]; ok {
		c.entries[id] = &entry{chunks: chunks, storedAt: time.Now()}
		c.touch(id)
		return
	}
	if len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		c.drop(c.order[0])
	}
	c.entries[id] = &entry{chunks: chunks, storedAt: time.Now()}
	c.order = append(c.order, id)
}

// Invalidate empties the cache. Call it after re-indexing a collection.
func (c *RetrievalCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.order = c.order[:0]
}

// Len reports how many entries the cache currently holds.
func (c *RetrievalCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *RetrievalCache) drop(id string) {
	delete(c.entries, id)
	for i, other := range c.order {
		if other == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *RetrievalCache) touch(id string) {
	for i, other := range c.order {
		if other == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, id)
}

// CachedRetriever serves retrievals from the cache and falls through to
// the wrapped retriever on a miss. Errors are never cached.
type CachedRetriever struct {
	inner port.Retriever
	cache *RetrievalCache
}

func NewCachedRetriever(inner port.Retriever, cache *RetrievalCache) *CachedRetriever {
	return &CachedRetriever{inner: inner, cache: cache}
}

func (r *CachedRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if chunks, ok := r.cache.Get(query, k); ok {
		return chunks, nil
	}
	chunks, err := r.inner.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}
	r.cache.Put(query, k, chunks)
	return chunks, nil
}
