package extract

import (
	"archive/zip"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

const docxDocumentPath = "word/document.xml"

// wtTag matches <w:t>text</w:t> including variants with attributes such
// as <w:t xml:space="preserve">.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// Docx extracts text from a .docx file by reading the main document part
// of the OOXML zip container and collecting its text runs. Paragraph
// boundaries become newlines.
type Docx struct{}

func (Docx) Extract(path string) ([]domain.Fragment, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx %s: %w", path, err)
	}
	defer zr.Close()

	raw, err := readZipFile(&zr.Reader, docxDocumentPath)
	if err != nil {
		return nil, fmt.Errorf("docx %s: %w", path, err)
	}

	var b strings.Builder
	for _, para := range strings.Split(string(raw), "</w:p>") {
		runs := wtTag.FindAllStringSubmatch(para, -1)
		if len(runs) == 0 {
			continue
		}
		for _, r := range runs {
			b.WriteString(html.UnescapeString(r[1]))
		}
		b.WriteByte('\n')
	}

	return []domain.Fragment{{Text: strings.TrimSpace(b.String())}}, nil
}

// readZipFile returns the named entry's contents.
func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}
