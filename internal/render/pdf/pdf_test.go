package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gompdf/livepage/internal/document"
	"github.com/gompdf/livepage/internal/layout"
	"github.com/gompdf/livepage/internal/pagination"
)

// threePages lays out 60 one-line paragraphs with breaks before paragraphs
// 24 and 48.
func threePages(t *testing.T) *layout.Root {
	t.Helper()
	blocks := make([]document.Block, 60)
	for i := range blocks {
		blocks[i] = document.Block{Kind: document.KindParagraph, Text: fmt.Sprintf("para%02d", i)}
	}
	doc := document.New(blocks)
	e := layout.NewEngine(layout.Options{Geometry: pagination.DefaultGeometry()})
	root, err := e.Layout(doc, []int{doc.ContentStart(24), doc.ContentStart(48)})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return root
}

func TestRenderer_OnePagePerVisualPage(t *testing.T) {
	root := threePages(t)
	var buf bytes.Buffer
	err := NewRenderer(nil).Render(root, &buf, RenderOptions{Title: "Draft", PageNumbers: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	n, err := CountPages(buf.Bytes())
	if err != nil {
		t.Fatalf("count pages: %v", err)
	}
	if n != 3 {
		t.Fatalf("pages = %d, want 3", n)
	}

	texts, err := PageText(buf.Bytes())
	if err != nil {
		t.Fatalf("page text: %v", err)
	}
	checks := []struct {
		page    int
		want    []string
		notWant []string
	}{
		{0, []string{"para00", "para23", "1 / 3"}, []string{"para24"}},
		{1, []string{"para24", "para47", "2 / 3"}, []string{"para23", "para48"}},
		{2, []string{"para48", "para59"}, []string{"para47"}},
	}
	for _, c := range checks {
		for _, w := range c.want {
			if !strings.Contains(texts[c.page], w) {
				t.Errorf("page %d missing %q", c.page+1, w)
			}
		}
		for _, w := range c.notWant {
			if strings.Contains(texts[c.page], w) {
				t.Errorf("page %d unexpectedly has %q", c.page+1, w)
			}
		}
	}
}

func TestRenderer_RenderFileCreatesDirectory(t *testing.T) {
	root := threePages(t)
	out := filepath.Join(t.TempDir(), "nested", "draft.pdf")
	if err := NewRenderer(nil).RenderFile(root, out, RenderOptions{}); err != nil {
		t.Fatalf("render file: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output is not a pdf: %q", data[:8])
	}
}

func TestRenderer_EmptyDocument(t *testing.T) {
	e := layout.NewEngine(layout.Options{Geometry: pagination.DefaultGeometry()})
	root, err := e.Layout(document.New(nil), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	var buf bytes.Buffer
	if err := NewRenderer(nil).Render(root, &buf, RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if n, err := CountPages(buf.Bytes()); err != nil || n != 1 {
		t.Errorf("pages = %d, %v", n, err)
	}
}

func TestCountPages_RejectsGarbage(t *testing.T) {
	if _, err := CountPages([]byte("not a pdf")); err == nil {
		t.Error("expected an error")
	}
}
