package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func pptxBytes(t *testing.T, slides ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i, text := range slides {
		fw, err := w.Create("ppt/slides/slide" + string(rune('1'+i)) + ".xml")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(`<p:sld xmlns:p="p" xmlns:a="a"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPlainText(t *testing.T) {
	path := writeFile(t, "note.txt", []byte("Hello world\nLine 2"))

	frags, err := PlainText{}.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}
	if frags[0].Text != "Hello world\nLine 2" {
		t.Errorf("got %q", frags[0].Text)
	}
}

func TestPlainTextInvalidUTF8(t *testing.T) {
	path := writeFile(t, "broken.txt", []byte("hello\x80world"))

	frags, err := PlainText{}.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if frags[0].Text != "hello�world" {
		t.Errorf("expected replacement rune, got %q", frags[0].Text)
	}
}

func TestMarkdownStripsFormatting(t *testing.T) {
	src := `# Release Notes

Version **2.0** adds [clustering](https://example.com/docs).

- Hourly backups
- Enhanced monitoring

> Upgrade before Q4.
`
	path := writeFile(t, "notes.md", []byte(src))

	frags, err := Markdown{}.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	text := frags[0].Text

	for _, marker := range []string{"# ", "**", "](", "- Hourly", "> "} {
		if strings.Contains(text, marker) {
			t.Errorf("markdown marker %q survived: %q", marker, text)
		}
	}
	for _, want := range []string{"Release Notes", "Version 2.0", "clustering", "Hourly backups", "Upgrade before Q4."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output, got %q", want, text)
		}
	}
}

func TestMarkdownKeepsCodeBlocks(t *testing.T) {
	src := "Setup:\n\n```\nmake install\n```\n"
	path := writeFile(t, "setup.md", []byte(src))

	frags, err := Markdown{}.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(frags[0].Text, "make install") {
		t.Errorf("code block content lost: %q", frags[0].Text)
	}
	if strings.Contains(frags[0].Text, "```") {
		t.Errorf("fence marker survived: %q", frags[0].Text)
	}
}

func TestDocx(t *testing.T) {
	path := writeFile(t, "doc.docx", docxBytes(t, "First paragraph.", "Second &amp; third."))

	frags, err := Docx{}.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}
	if frags[0].Text != "First paragraph.\nSecond & third." {
		t.Errorf("got %q", frags[0].Text)
	}
}

func TestDocxMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("other.xml")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("<x/>"))
	w.Close()
	path := writeFile(t, "empty.docx", buf.Bytes())

	if _, err := Docx{}.Extract(path); err == nil {
		t.Error("expected error for archive without word/document.xml")
	}
}

func TestPptxSlidesBecomeFragments(t *testing.T) {
	path := writeFile(t, "deck.pptx", pptxBytes(t, "Slide one content", "Slide two content"))

	frags, err := Pptx{}.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(frags))
	}
	if frags[0].Text != "Slide one content" {
		t.Errorf("slide 1: got %q", frags[0].Text)
	}
	if frags[0].Metadata["page_label"] != "1" {
		t.Errorf("expected page_label=1, got %q", frags[0].Metadata["page_label"])
	}
	if frags[1].Metadata["page_label"] != "2" {
		t.Errorf("expected page_label=2, got %q", frags[1].Metadata["page_label"])
	}
}

func TestXlsx(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Quarter")
	f.SetCellValue("Sheet1", "B1", "Budget")
	f.SetCellValue("Sheet1", "A2", "Q1 2023")
	f.SetCellValue("Sheet1", "B2", "500000")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	f.Close()
	path := writeFile(t, "budget.xlsx", buf.Bytes())

	frags, err := Xlsx{}.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}
	if frags[0].Metadata["sheet"] != "Sheet1" {
		t.Errorf("expected sheet metadata, got %v", frags[0].Metadata)
	}
	if !strings.Contains(frags[0].Text, "Quarter\tBudget") {
		t.Errorf("expected tab-joined header row, got %q", frags[0].Text)
	}
	if !strings.Contains(frags[0].Text, "Q1 2023") {
		t.Errorf("expected cell value in text, got %q", frags[0].Text)
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()

	for _, ext := range []string{".txt", ".md", ".pdf", ".docx", ".xlsx", ".pptx"} {
		if _, ok := r.For(ext); !ok {
			t.Errorf("expected extractor for %s", ext)
		}
	}
	if _, ok := r.For(".PDF"); !ok {
		t.Error("extension lookup should be case-insensitive")
	}
	if _, ok := r.For(".exe"); ok {
		t.Error("expected no extractor for .exe")
	}
}
