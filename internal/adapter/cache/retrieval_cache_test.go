package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

type countingRetriever struct {
	calls  int
	chunks []domain.ScoredChunk
	err    error
}

func (r *countingRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.chunks, nil
}

func scored(text string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{ID: text, Text: text},
		Score: score,
	}
}

func TestCachedRetrieverServesRepeats(t *testing.T) {
	inner := &countingRetriever{chunks: []domain.ScoredChunk{scored("a", 0.9), scored("b", 0.7)}}
	cached := NewCachedRetriever(inner, NewRetrievalCache(8, time.Minute))

	first, err := cached.Retrieve(context.Background(), "what changed?", 2)
	if err != nil {
		t.Fatalf("first retrieve: %v", err)
	}
	second, err := cached.Retrieve(context.Background(), "what changed?", 2)
	if err != nil {
		t.Fatalf("second retrieve: %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("inner retriever called %d times, want 1", inner.calls)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("got %d and %d chunks, want 2 and 2", len(first), len(second))
	}
	if second[0].Chunk.Text != "a" {
		t.Fatalf("cached result starts with %q, want %q", second[0].Chunk.Text, "a")
	}
}

func TestCachedRetrieverKeyIncludesK(t *testing.T) {
	inner := &countingRetriever{chunks: []domain.ScoredChunk{scored("a", 0.9)}}
	cached := NewCachedRetriever(inner, NewRetrievalCache(8, time.Minute))

	if _, err := cached.Retrieve(context.Background(), "same question", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Retrieve(context.Background(), "same question", 3); err != nil {
		t.Fatal(err)
	}

	if inner.calls != 2 {
		t.Fatalf("inner retriever called %d times, want 2", inner.calls)
	}
}

func TestCachedRetrieverDoesNotCacheErrors(t *testing.T) {
	inner := &countingRetriever{err: errors.New("provider down")}
	cached := NewCachedRetriever(inner, NewRetrievalCache(8, time.Minute))

	for i := 0; i < 2; i++ {
		if _, err := cached.Retrieve(context.Background(), "q", 2); err == nil {
			t.Fatal("expected error from inner retriever")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("inner retriever called %d times, want 2", inner.calls)
	}
}

func TestRetrievalCacheExpiry(t *testing.T) {
	c := NewRetrievalCache(8, 10*time.Millisecond)
	c.Put("q", 2, []domain.ScoredChunk{scored("a", 0.9)})

	if _, ok := c.Get("q", 2); !ok {
		t.Fatal("entry should be present before expiry")
	}
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("q", 2); ok {
		t.Fatal("entry should have expired")
	}
	if c.Len() != 0 {
		t.Fatalf("cache holds %d entries after expiry, want 0", c.Len())
	}
}

func TestRetrievalCacheEvictsOldest(t *testing.T) {
	c := NewRetrievalCache(2, time.Minute)
	c.Put("first", 2, []domain.ScoredChunk{scored("a", 0.9)})
	c.Put("second", 2, []domain.ScoredChunk{scored("b", 0.8)})

	// Refresh "first" so "second" becomes the eviction candidate.
	if _, ok := c.Get("first", 2); !ok {
		t.Fatal("first entry missing")
	}
	c.Put("third", 2, []domain.ScoredChunk{scored("c", 0.7)})

	if c.Len() != 2 {
		t.Fatalf("cache holds %d entries, want 2", c.Len())
	}
	if _, ok := c.Get("second", 2); ok {
		t.Fatal("second entry should have been evicted")
	}
	if _, ok := c.Get("first", 2); !ok {
		t.Fatal("first entry should have survived")
	}
	if _, ok := c.Get("third", 2); !ok {
		t.Fatal("third entry should be present")
	}
}

func TestRetrievalCacheInvalidate(t *testing.T) {
	c := NewRetrievalCache(8, time.Minute)
	c.Put("q", 2, []domain.ScoredChunk{scored("a", 0.9)})
	c.Invalidate()

	if c.Len() != 0 {
		t.Fatalf("cache holds %d entries after invalidate, want 0", c.Len())
	}
	if _, ok := c.Get("q", 2); ok {
		t.Fatal("entry should be gone after invalidate")
	}
}
