package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MiMa6/rag-search-system/internal/adapter/extract"
	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/port"
)

// DocumentLoader turns the files under a directory into Documents.
// Files that cannot be parsed are reported as warnings, not errors, so
// one bad file does not sink the whole load.
type DocumentLoader struct {
	walker   port.FileWalker
	registry *extract.Registry
}

func NewDocumentLoader(walker port.FileWalker, registry *extract.Registry) *DocumentLoader {
	return &DocumentLoader{
		walker:   walker,
		registry: registry,
	}
}

func (l *DocumentLoader) Load(dir string) ([]domain.Document, []string, error) {
	files, err := l.walker.Walk(dir)
	if err != nil {
		return nil, nil, err
	}

	var docs []domain.Document
	var warnings []string

	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Path))
		extractor, ok := l.registry.For(ext)
		if !ok {
			continue
		}

		fragments, err := extractor.Extract(file.Path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to extract %s: %v", file.Path, err))
			continue
		}

		docID := generateDocID(file.Path)
		for i, frag := range fragments {
			if strings.TrimSpace(frag.Text) == "" {
				continue
			}

			metadata := map[string]string{
				"file_name": filepath.Base(file.Path),
				"file_path": file.Path,
				"extension": ext,
			}
			for k, v := range frag.Metadata {
				metadata[k] = v
			}

			id := docID
			if len(fragments) > 1 {
				id = fmt.Sprintf("%s_%d", docID, i)
			}
			docs = append(docs, domain.Document{
				ID:       id,
				Text:     frag.Text,
				Metadata: metadata,
			})
		}
	}

	return docs, warnings, nil
}

// generateDocID creates a stable ID for a document based on its path.
func generateDocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}
