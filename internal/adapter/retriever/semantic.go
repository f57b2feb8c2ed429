package retriever

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/port"
)

// SemanticRetriever embeds the query and runs a similarity search
// against one named collection.
type SemanticRetriever struct {
	store      port.VectorStore
	embedder   port.Embedder
	collection string
}

func NewSemanticRetriever(store port.VectorStore, embedder port.Embedder, collection string) *SemanticRetriever {
	return &SemanticRetriever{
		store:      store,
		embedder:   embedder,
		collection: collection,
	}
}

func (r *SemanticRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	results, err := r.store.Search(r.collection, embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	chunks := make([]domain.ScoredChunk, 0, len(results))
	for _, result := range results {
		chunks = append(chunks, domain.ScoredChunk{
			Chunk: chunkFromResult(result),
			Score: result.Score,
		})
	}
	return chunks, nil
}

// chunkFromResult rebuilds a Chunk from its stored form. Provenance
// fields written at index time travel in the metadata.
func chunkFromResult(result port.VectorResult) domain.Chunk {
	chunk := domain.Chunk{
		ID:       result.ID,
		Text:     result.Text,
		Metadata: result.Metadata,
	}
	if result.Metadata != nil {
		chunk.DocID = result.Metadata["doc_id"]
		if pos, err := strconv.Atoi(result.Metadata["chunk_index"]); err == nil {
			chunk.Position = pos
		}
	}
	return chunk
}
