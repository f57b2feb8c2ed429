package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

// Markdown reads a markdown file and strips the formatting down to plain
// text so heading and emphasis markers do not pollute the embeddings.
type Markdown struct{}

var (
	mdImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdLink       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdHeading    = regexp.MustCompile(`^#{1,6}\s+`)
	mdListMarker = regexp.MustCompile(`^\s*([-*+]|\d+\.)\s+`)
)

func (Markdown) Extract(path string) ([]domain.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return []domain.Fragment{{Text: stripMarkdown(string(data))}}, nil
}

func stripMarkdown(text string) string {
	text = mdImage.ReplaceAllString(text, "$1")
	text = mdLink.ReplaceAllString(text, "$1")

	var b strings.Builder
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			// Code block content stays verbatim.
			b.WriteString(line)
			b.WriteByte('\n')
			continue
		}

		line = mdHeading.ReplaceAllString(line, "")
		line = mdListMarker.ReplaceAllString(line, "")
		line = strings.TrimPrefix(line, "> ")
		line = strings.ReplaceAll(line, "**", "")
		line = strings.ReplaceAll(line, "__", "")
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return strings.TrimSpace(b.String())
}
