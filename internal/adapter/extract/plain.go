package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

// PlainText reads a file as UTF-8 text. Invalid byte sequences are
// replaced so downstream chunking never sees broken runes.
type PlainText struct{}

func (PlainText) Extract(path string) ([]domain.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}

	return []domain.Fragment{{Text: text}}, nil
}
