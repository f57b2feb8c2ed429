package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

// PDF extracts text from a PDF file, one fragment per page. Pages with
// no text layer (scanned images) are skipped.
type PDF struct{}

func (PDF) Extract(path string) ([]domain.Fragment, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var fragments []domain.Fragment
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}

		fragments = append(fragments, domain.Fragment{
			Text:     text,
			Metadata: map[string]string{"page_label": strconv.Itoa(i)},
		})
	}

	return fragments, nil
}
