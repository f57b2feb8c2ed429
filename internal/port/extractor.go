package port

import "github.com/MiMa6/rag-search-system/internal/domain"

// Extractor turns one file into text fragments. Formats with internal
// structure return one fragment per page, sheet or slide.
type Extractor interface {
	Extract(path string) ([]domain.Fragment, error)
}
