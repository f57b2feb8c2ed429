package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MiMa6/rag-search-system/internal/adapter/retriever"
	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/port"
)

// BuildProgress reports embedding progress during an index build.
type BuildProgress func(done, total int)

// CollectionManager owns the lifecycle of one named collection: count,
// build (chunk, embed, upsert), delete. A nil chunker is fine for
// query-only callers that never build.
type CollectionManager struct {
	store      port.VectorStore
	embedder   port.Embedder
	chunker    port.Chunker
	collection string
}

func NewCollectionManager(store port.VectorStore, embedder port.Embedder, chunker port.Chunker, collection string) *CollectionManager {
	return &CollectionManager{
		store:      store,
		embedder:   embedder,
		chunker:    chunker,
		collection: collection,
	}
}

func (m *CollectionManager) Collection() string {
	return m.collection
}

func (m *CollectionManager) DocumentCount() (int, error) {
	return m.store.Count(m.collection)
}

// ExistingIndex returns a handle over the stored collection, or nil
// when the collection holds no records. An absent collection and an
// empty one are indistinguishable here on purpose: both mean there is
// nothing to query yet.
func (m *CollectionManager) ExistingIndex() (*Index, error) {
	count, err := m.store.Count(m.collection)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	return m.newIndex(), nil
}

// BuildIndex chunks the documents, embeds the chunks in batches and
// upserts them into the collection. Returns the queryable index and
// the number of chunks written. A failure mid-build leaves the chunks
// already written in place; callers wanting a clean slate must delete
// and rebuild.
func (m *CollectionManager) BuildIndex(ctx context.Context, docs []domain.Document, progress BuildProgress) (*Index, int, error) {
	if err := m.store.EnsureCollection(m.collection, m.embedder.ModelName(), m.embedder.Dimension()); err != nil {
		return nil, 0, err
	}

	var chunks []domain.Chunk
	for _, doc := range docs {
		cs, err := m.chunker.Chunk(doc)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to chunk document %s: %w", doc.ID, err)
		}
		chunks = append(chunks, cs...)
	}
	if len(chunks) == 0 {
		return m.newIndex(), 0, nil
	}

	const batchSize = 100
	done := 0

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}
		vectors, err := m.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, 0, domain.WrapProvider("embed chunks", err)
		}
		if len(vectors) != len(batch) {
			return nil, 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		items := make([]port.VectorItem, len(batch))
		for j, c := range batch {
			metadata := make(map[string]string, len(c.Metadata)+2)
			for k, v := range c.Metadata {
				metadata[k] = v
			}
			metadata["doc_id"] = c.DocID
			metadata["chunk_index"] = strconv.Itoa(c.Position)
			items[j] = port.VectorItem{
				ID:       c.ID,
				Vector:   vectors[j],
				Text:     c.Text,
				Metadata: metadata,
			}
		}
		if err := m.store.Upsert(m.collection, items); err != nil {
			return nil, 0, err
		}

		done += len(batch)
		if progress != nil {
			progress(done, len(chunks))
		}
	}

	return m.newIndex(), len(chunks), nil
}

func (m *CollectionManager) DeleteCollection() error {
	return m.store.DeleteCollection(m.collection)
}

func (m *CollectionManager) newIndex() *Index {
	return &Index{
		retriever:  retriever.NewSemanticRetriever(m.store, m.embedder, m.collection),
		collection: m.collection,
	}
}

// Index is a queryable handle over a populated collection.
type Index struct {
	retriever  port.Retriever
	collection string
}

func (ix *Index) Collection() string {
	return ix.collection
}

func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	return ix.retriever.Retrieve(ctx, query, k)
}
