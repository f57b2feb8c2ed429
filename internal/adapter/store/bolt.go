package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/port"
)

var (
	bucketCollections = []byte("collections")
	bucketMeta        = []byte("collection_meta")
)

// vectorHeadLen is how many leading embedding values Sample returns.
const vectorHeadLen = 3

// BoltStore persists named vector collections in a single BoltDB file.
// Each collection is a nested bucket of id -> storedRecord. Search is
// brute-force cosine over an in-memory cache, loaded per collection on
// first use.
type BoltStore struct {
	db *bbolt.DB

	mu    sync.RWMutex
	cache map[string]map[string]cacheEntry
}

type cacheEntry struct {
	vector   []float32
	text     string
	metadata map[string]string
}

type storedRecord struct {
	Vector   []float32         `json:"v"`
	Text     string            `json:"t"`
	Metadata map[string]string `json:"m,omitempty"`
}

type collectionMeta struct {
	EmbeddingModel string    `json:"embedding_model"`
	Dimension      int       `json:"dimension"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketCollections, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{
		db:    db,
		cache: make(map[string]map[string]cacheEntry),
	}, nil
}

// EnsureCollection creates the named collection if absent. An existing
// collection must have been built with the same embedding model and
// dimension; anything else would make stored and query vectors
// incomparable.
func (s *BoltStore) EnsureCollection(name, embeddingModel string, dimension int) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		metaBucket := tx.Bucket(bucketMeta)

		if data := metaBucket.Get([]byte(name)); data != nil {
			var meta collectionMeta
			if err := json.Unmarshal(data, &meta); err != nil {
				return fmt.Errorf("corrupt metadata for collection %s: %w", name, err)
			}
			if meta.EmbeddingModel != embeddingModel {
				return fmt.Errorf("collection %s was built with embedding model %s, not %s",
					name, meta.EmbeddingModel, embeddingModel)
			}
			if meta.Dimension != dimension {
				return fmt.Errorf("collection %s has dimension %d, not %d",
					name, meta.Dimension, dimension)
			}
			return nil
		}

		if _, err := tx.Bucket(bucketCollections).CreateBucketIfNotExists([]byte(name)); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
		meta := collectionMeta{
			EmbeddingModel: embeddingModel,
			Dimension:      dimension,
			CreatedAt:      time.Now().UTC(),
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return metaBucket.Put([]byte(name), data)
	})
}

// Count returns the number of stored records. An absent collection
// counts as zero.
func (s *BoltStore) Count(collection string) (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCollections).Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}

func (s *BoltStore) Upsert(collection string, items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCollections).Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
		}

		dimension, err := s.dimensionOf(tx, collection)
		if err != nil {
			return err
		}

		for _, item := range items {
			if len(item.Vector) != dimension {
				return fmt.Errorf("vector dimension mismatch: expected %d, got %d",
					dimension, len(item.Vector))
			}

			data, err := json.Marshal(storedRecord{
				Vector:   item.Vector,
				Text:     item.Text,
				Metadata: item.Metadata,
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(item.ID), data); err != nil {
				return err
			}

			if cached, ok := s.cache[collection]; ok {
				cached[item.ID] = cacheEntry{
					vector:   item.Vector,
					text:     item.Text,
					metadata: item.Metadata,
				}
			}
		}
		return nil
	})
}

// Search returns the k records most similar to query by cosine
// similarity, in descending score order.
func (s *BoltStore) Search(collection string, query []float32, k int) ([]port.VectorResult, error) {
	if err := s.ensureCached(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.cache[collection]
	if len(entries) == 0 {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
	}
	scores := make([]scored, 0, len(entries))
	for id, entry := range entries {
		scores = append(scores, scored{id: id, score: cosineSimilarity(query, entry.vector)})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]port.VectorResult, k)
	for i := 0; i < k; i++ {
		entry := entries[scores[i].id]
		results[i] = port.VectorResult{
			ID:       scores[i].id,
			Score:    scores[i].score,
			Text:     entry.text,
			Metadata: entry.metadata,
		}
	}
	return results, nil
}

func (s *BoltStore) DeleteCollection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		collections := tx.Bucket(bucketCollections)
		if collections.Bucket([]byte(name)) == nil {
			return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
		}
		if err := collections.DeleteBucket([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Delete([]byte(name))
	})
	if err != nil {
		return err
	}

	delete(s.cache, name)
	return nil
}

func (s *BoltStore) ListCollections() ([]domain.CollectionInfo, error) {
	var infos []domain.CollectionInfo

	err := s.db.View(func(tx *bbolt.Tx) error {
		collections := tx.Bucket(bucketCollections)
		return tx.Bucket(bucketMeta).ForEach(func(k, v []byte) error {
			var meta collectionMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return nil
			}
			count := 0
			if b := collections.Bucket(k); b != nil {
				count = b.Stats().KeyN
			}
			infos = append(infos, domain.CollectionInfo{
				Name:           string(k),
				Count:          count,
				EmbeddingModel: meta.EmbeddingModel,
				Dimension:      meta.Dimension,
				CreatedAt:      meta.CreatedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *BoltStore) Sample(collection string, limit int) ([]domain.SampleRecord, error) {
	var samples []domain.SampleRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCollections).Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
		}

		c := b.Cursor()
		for k, v := c.First(); k != nil && len(samples) < limit; k, v = c.Next() {
			var rec storedRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			head := rec.Vector
			if len(head) > vectorHeadLen {
				head = head[:vectorHeadLen]
			}
			samples = append(samples, domain.SampleRecord{
				ID:         string(k),
				Text:       rec.Text,
				Metadata:   rec.Metadata,
				Dimension:  len(rec.Vector),
				VectorHead: head,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) dimensionOf(tx *bbolt.Tx, collection string) (int, error) {
	data := tx.Bucket(bucketMeta).Get([]byte(collection))
	if data == nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}
	var meta collectionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return 0, fmt.Errorf("corrupt metadata for collection %s: %w", collection, err)
	}
	return meta.Dimension, nil
}

// ensureCached loads the collection's records into memory once.
func (s *BoltStore) ensureCached(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[collection]; ok {
		return nil
	}

	entries := make(map[string]cacheEntry)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCollections).Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
		}
		return b.ForEach(func(k, v []byte) error {
			var rec storedRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil
			}
			entries[string(k)] = cacheEntry{
				vector:   rec.Vector,
				text:     rec.Text,
				metadata: rec.Metadata,
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.cache[collection] = entries
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
