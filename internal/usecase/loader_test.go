package usecase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MiMa6/rag-search-system/internal/adapter/extract"
	"github.com/MiMa6/rag-search-system/internal/adapter/fs"
)

func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newLoader(extensions ...string) *DocumentLoader {
	if len(extensions) == 0 {
		extensions = []string{".txt", ".md", ".docx"}
	}
	walker := fs.NewWalker(extensions, true, true, nil)
	return NewDocumentLoader(walker, extract.NewRegistry())
}

func TestLoadBuildsDocumentsWithMetadata(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"overview.txt":   "The project overview.",
		"notes/spec.md":  "# Spec\n\nThe technical spec.",
		"ignored.binary": "not a document",
	})

	docs, warnings, err := newLoader().Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	byName := make(map[string]bool)
	for _, doc := range docs {
		if doc.ID == "" {
			t.Error("document has empty ID")
		}
		if doc.Metadata["file_name"] == "" || doc.Metadata["file_path"] == "" || doc.Metadata["extension"] == "" {
			t.Errorf("incomplete metadata: %v", doc.Metadata)
		}
		byName[doc.Metadata["file_name"]] = true
	}
	if !byName["overview.txt"] || !byName["spec.md"] {
		t.Errorf("missing expected documents: %v", byName)
	}
}

func TestLoadSkipsEmptyAndReportsBroken(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"empty.txt":   "   \n\t ",
		"good.txt":    "Usable content.",
		"broken.docx": "this is not a zip archive",
	})

	docs, warnings, err := newLoader().Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected only the good document, got %d", len(docs))
	}
	if docs[0].Metadata["file_name"] != "good.txt" {
		t.Errorf("wrong document survived: %v", docs[0].Metadata)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for the broken file, got %v", warnings)
	}
}

func TestLoadStableDocIDs(t *testing.T) {
	dir := writeDocs(t, map[string]string{"a.txt": "content"})

	first, _, err := newLoader().Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := newLoader().Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].ID != second[0].ID {
		t.Errorf("document ID not stable across loads: %s vs %s", first[0].ID, second[0].ID)
	}
}
