// Package importer converts source documents into editor blocks.
//
// Supported formats are HTML, Markdown, DOCX and plain text. Inline
// formatting is flattened since the editor holds plain text per block.
package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gompdf/livepage/internal/document"
)

// ErrUnsupportedFormat is returned for sources with no registered importer.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Importer turns a source into blocks.
type Importer interface {
	Import(r io.Reader) ([]document.Block, error)
}

// Format names a source format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatDOCX     Format = "docx"
	FormatText     Format = "text"
)

var extensions = map[string]Format{
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".docx":     FormatDOCX,
	".txt":      FormatText,
	"":          FormatText,
}

// FormatOf guesses the format from a file name or URL path.
func FormatOf(name string) (Format, error) {
	if i := strings.IndexAny(name, "?#"); i >= 0 && strings.Contains(name, "://") {
		name = name[:i]
	}
	ext := strings.ToLower(filepath.Ext(name))
	f, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// For returns the importer for f.
func For(f Format) (Importer, error) {
	switch f {
	case FormatHTML:
		return &HTMLImporter{}, nil
	case FormatMarkdown:
		return &MarkdownImporter{}, nil
	case FormatDOCX:
		return &DOCXImporter{}, nil
	case FormatText:
		return &TextImporter{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// ForFile returns the importer matching name's extension.
func ForFile(name string) (Importer, error) {
	f, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	return For(f)
}

// Load reads a document of format f from r.
func Load(r io.Reader, f Format) (*document.Document, error) {
	imp, err := For(f)
	if err != nil {
		return nil, err
	}
	blocks, err := imp.Import(r)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", f, err)
	}
	return document.New(blocks), nil
}

// TextImporter splits plain text into paragraphs at blank lines.
type TextImporter struct{}

func (TextImporter) Import(r io.Reader) ([]document.Block, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return document.FromText(string(src)).Blocks(), nil
}

// collapse normalizes inline whitespace the way a browser renders it.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
