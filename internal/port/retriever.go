package port

import (
	"context"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

// Retriever finds the stored chunks most relevant to a question.
type Retriever interface {
	// Retrieve returns the top-k chunks for the query, best first.
	Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)
}
