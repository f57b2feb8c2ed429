package extract

import (
	"archive/zip"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

// atTag matches <a:t>text</a:t> runs in DrawingML slide content.
var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// slideName captures the slide number from ppt/slides/slideN.xml.
var slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Pptx extracts text from a .pptx file, one fragment per slide.
type Pptx struct{}

func (Pptx) Extract(path string) ([]domain.Fragment, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open pptx %s: %w", path, err)
	}
	defer zr.Close()

	type slide struct {
		number int
		name   string
	}
	var slides []slide
	for _, f := range zr.File {
		m := slideName.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{number: n, name: f.Name})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var fragments []domain.Fragment
	for _, s := range slides {
		raw, err := readZipFile(&zr.Reader, s.name)
		if err != nil {
			return nil, fmt.Errorf("pptx %s: %w", path, err)
		}

		var b strings.Builder
		for _, run := range atTag.FindAllStringSubmatch(string(raw), -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(html.UnescapeString(strings.TrimSpace(run[1])))
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			continue
		}

		fragments = append(fragments, domain.Fragment{
			Text:     text,
			Metadata: map[string]string{"page_label": strconv.Itoa(s.number)},
		})
	}

	return fragments, nil
}
