package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/port"
)

// MemoryStore is a VectorStore held entirely in memory. Used in tests
// and as a throwaway backend for experiments.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	meta    collectionMeta
	order   []string
	records map[string]port.VectorItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memCollection),
	}
}

func (s *MemoryStore) EnsureCollection(name, embeddingModel string, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		if c.meta.EmbeddingModel != embeddingModel {
			return fmt.Errorf("collection %s was built with embedding model %s, not %s",
				name, c.meta.EmbeddingModel, embeddingModel)
		}
		if c.meta.Dimension != dimension {
			return fmt.Errorf("collection %s has dimension %d, not %d",
				name, c.meta.Dimension, dimension)
		}
		return nil
	}

	s.collections[name] = &memCollection{
		meta: collectionMeta{
			EmbeddingModel: embeddingModel,
			Dimension:      dimension,
			CreatedAt:      time.Now().UTC(),
		},
		records: make(map[string]port.VectorItem),
	}
	return nil
}

func (s *MemoryStore) Count(collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	return len(c.records), nil
}

func (s *MemoryStore) Upsert(collection string, items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}

	for _, item := range items {
		if len(item.Vector) != c.meta.Dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d",
				c.meta.Dimension, len(item.Vector))
		}
		if _, exists := c.records[item.ID]; !exists {
			c.order = append(c.order, item.ID)
		}
		c.records[item.ID] = item
	}
	return nil
}

func (s *MemoryStore) Search(collection string, query []float32, k int) ([]port.VectorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}
	if len(c.records) == 0 {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
	}
	scores := make([]scored, 0, len(c.records))
	for id, item := range c.records {
		scores = append(scores, scored{id: id, score: cosineSimilarity(query, item.Vector)})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]port.VectorResult, k)
	for i := 0; i < k; i++ {
		item := c.records[scores[i].id]
		results[i] = port.VectorResult{
			ID:       item.ID,
			Score:    scores[i].score,
			Text:     item.Text,
			Metadata: item.Metadata,
		}
	}
	return results, nil
}

func (s *MemoryStore) DeleteCollection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	delete(s.collections, name)
	return nil
}

func (s *MemoryStore) ListCollections() ([]domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.CollectionInfo, 0, len(s.collections))
	for name, c := range s.collections {
		infos = append(infos, domain.CollectionInfo{
			Name:           name,
			Count:          len(c.records),
			EmbeddingModel: c.meta.EmbeddingModel,
			Dimension:      c.meta.Dimension,
			CreatedAt:      c.meta.CreatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *MemoryStore) Sample(collection string, limit int) ([]domain.SampleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}

	var samples []domain.SampleRecord
	for _, id := range c.order {
		if len(samples) >= limit {
			break
		}
		item := c.records[id]
		head := item.Vector
		if len(head) > vectorHeadLen {
			head = head[:vectorHeadLen]
		}
		samples = append(samples, domain.SampleRecord{
			ID:         item.ID,
			Text:       item.Text,
			Metadata:   item.Metadata,
			Dimension:  len(item.Vector),
			VectorHead: head,
		})
	}
	return samples, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
