package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"

	"github.com/gompdf/livepage/internal/document"
)

var want = []document.Block{
	{Kind: document.KindHeading, Level: 1, Text: "Title"},
	{Kind: document.KindParagraph, Text: "Hello big world"},
	{Kind: document.KindBlockquote, Text: "quoted"},
	{Kind: document.KindListItem, Text: "one"},
	{Kind: document.KindListItem, Text: "two"},
	{Kind: document.KindListItem, Ordered: true, Text: "first"},
	{Kind: document.KindCode, Text: "line1\n  line2"},
}

func checkBlocks(t *testing.T, got, want []document.Block) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d blocks %+v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestHTMLImporter_Import(t *testing.T) {
	src := `<html><head><title>ignored</title><style>p { color: red }</style></head><body>
<h1>Title</h1>
<p>Hello <b>big</b>
   world</p>
<div class="page-break" contenteditable="false" data-pos="12"></div>
<blockquote><p>quoted</p></blockquote>
<ul><li>one</li><li><p>two</p></li></ul>
<ol><li>first</li></ol>
<pre>line1
  line2</pre>
<script>var x = 1;</script>
</body></html>`
	got, err := HTMLImporter{}.Import(strings.NewReader(src))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	checkBlocks(t, got, want)
}

func TestHTMLImporter_RoundTripsEditorHTML(t *testing.T) {
	doc := document.New(want)
	got, err := HTMLImporter{}.Import(strings.NewReader(doc.HTML([]int{doc.ContentStart(1) + 3, doc.BlockStart(3)})))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	checkBlocks(t, got, want)
}

func TestMarkdownImporter_Import(t *testing.T) {
	src := "# Title\n\nHello *big*\nworld\n\n> quoted\n\n- one\n- two\n\n1. first\n\n```go\nline1\n  line2\n```\n\n---\n"
	got, err := MarkdownImporter{}.Import(strings.NewReader(src))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	checkBlocks(t, got, want)
}

func TestDOCXImporter_Import(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().Style("Heading1").AddText("Title")
	w.AddParagraph().AddText("Hello big world")
	w.AddParagraph().Style("Quote").AddText("quoted")
	w.AddParagraph()

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	got, err := DOCXImporter{}.Import(&buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	checkBlocks(t, got, want[:3])
}

func TestDOCXImporter_RejectsGarbage(t *testing.T) {
	if _, err := (DOCXImporter{}).Import(strings.NewReader("not a zip")); err == nil {
		t.Error("expected an error")
	}
}

func TestTextImporter_Import(t *testing.T) {
	got, err := TextImporter{}.Import(strings.NewReader("one\ntwo\n\n\nthree"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	checkBlocks(t, got, []document.Block{
		{Kind: document.KindParagraph, Text: "one two"},
		{Kind: document.KindParagraph, Text: "three"},
	})
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name string
		want Format
		err  bool
	}{
		{"notes.md", FormatMarkdown, false},
		{"Report.DOCX", FormatDOCX, false},
		{"index.htm", FormatHTML, false},
		{"https://example.com/post.html?x=1", FormatHTML, false},
		{"README", FormatText, false},
		{"slides.pptx", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatOf(tt.name)
			if tt.err {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("FormatOf(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
			}
		})
	}
}

func TestLoad_WrapsImportErrors(t *testing.T) {
	if _, err := Load(strings.NewReader("x"), "rtf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v", err)
	}
	doc, err := Load(strings.NewReader("# Hi"), FormatMarkdown)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.BlockCount() != 1 || doc.Block(0).Kind != document.KindHeading {
		t.Errorf("blocks = %+v", doc.Blocks())
	}
}
