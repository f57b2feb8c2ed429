package port

import "github.com/MiMa6/rag-search-system/internal/domain"

// VectorStore persists embedded chunks grouped into named collections.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist and
	// verifies the recorded embedding model matches when it does.
	EnsureCollection(name, embeddingModel string, dimension int) error

	// Count returns the number of records in the collection. A collection
	// that was never created counts as zero.
	Count(collection string) (int, error)

	// Upsert adds or replaces records in the collection.
	Upsert(collection string, items []VectorItem) error

	// Search finds the k records nearest to the query vector, best first.
	Search(collection string, query []float32, k int) ([]VectorResult, error)

	// DeleteCollection removes the collection and all its records.
	DeleteCollection(name string) error

	// ListCollections describes every collection in the store.
	ListCollections() ([]domain.CollectionInfo, error)

	// Sample returns up to limit stored records for inspection.
	Sample(collection string, limit int) ([]domain.SampleRecord, error)

	Close() error
}

// VectorItem represents a record to be stored.
type VectorItem struct {
	ID       string            // Unique identifier (typically chunk ID)
	Vector   []float32         // Embedding vector
	Text     string            // Chunk text, stored for retrieval
	Metadata map[string]string // Optional metadata
}

// VectorResult represents a search result.
type VectorResult struct {
	ID       string            // Chunk ID
	Score    float64           // Similarity score (higher is better)
	Text     string            // Stored chunk text
	Metadata map[string]string // Stored metadata
}
