package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

// Xlsx extracts cell text from a workbook, one fragment per non-empty
// sheet. Cells in a row are joined with tabs so tabular structure stays
// readable in prompts.
type Xlsx struct{}

func (Xlsx) Extract(path string) ([]domain.Fragment, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer f.Close()

	var fragments []domain.Fragment
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		var b strings.Builder
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			continue
		}

		fragments = append(fragments, domain.Fragment{
			Text:     text,
			Metadata: map[string]string{"sheet": sheet},
		})
	}

	return fragments, nil
}
