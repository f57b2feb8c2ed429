package extract

import (
	"sort"
	"strings"

	"github.com/MiMa6/rag-search-system/internal/port"
)

// Registry maps file extensions to format extractors.
type Registry struct {
	byExt map[string]port.Extractor
}

// NewRegistry returns a registry with every built-in format registered.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]port.Extractor)}
	r.Register(".txt", PlainText{})
	r.Register(".md", Markdown{})
	r.Register(".pdf", PDF{})
	r.Register(".docx", Docx{})
	r.Register(".xlsx", Xlsx{})
	r.Register(".pptx", Pptx{})
	return r
}

// Register adds or replaces the extractor for an extension.
func (r *Registry) Register(ext string, e port.Extractor) {
	r.byExt[strings.ToLower(ext)] = e
}

// For returns the extractor registered for the extension.
func (r *Registry) For(ext string) (port.Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(ext)]
	return e, ok
}

// Extensions lists every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
