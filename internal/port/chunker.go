package port

import "github.com/MiMa6/rag-search-system/internal/domain"

type Chunker interface {
	Chunk(doc domain.Document) ([]domain.Chunk, error)
}
