// Package res loads editor sources: documents and stylesheets from local
// files, http(s) URLs or data URLs.
package res

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gompdf/livepage/internal/document"
	"github.com/gompdf/livepage/internal/importer"
	"github.com/gompdf/livepage/internal/parser/css"
)

// ErrNotFound is returned when a local resource exists in no search path.
var ErrNotFound = errors.New("resource not found")

// ResourceType represents the type of resource
type ResourceType int

const (
	// ResourceTypeUnknown is an unknown resource type
	ResourceTypeUnknown ResourceType = iota
	// ResourceTypeDocument is an importable document
	ResourceTypeDocument
	// ResourceTypeCSS is a stylesheet
	ResourceTypeCSS
)

const docxMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Format   importer.Format
	Data     []byte
	MimeType string
}

// Loader handles loading resources
type Loader struct {
	// Base URL or file path for resolving relative URLs
	BaseURL string

	cache     map[string]*Resource
	cacheLock sync.RWMutex

	searchPaths []string

	client *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   make(map[string]*Resource),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Load loads a resource from a URL or file path
func (l *Loader) Load(ctx context.Context, urlStr string) (*Resource, error) {
	l.cacheLock.RLock()
	if res, ok := l.cache[urlStr]; ok {
		l.cacheLock.RUnlock()
		return res, nil
	}
	l.cacheLock.RUnlock()

	var (
		res *Resource
		err error
	)
	if strings.HasPrefix(urlStr, "data:") {
		res, err = parseDataURL(urlStr)
	} else {
		var resolved string
		resolved, err = l.resolveURL(urlStr)
		if err != nil {
			return nil, err
		}
		if isRemote(resolved) {
			res, err = l.loadRemote(ctx, resolved)
		} else {
			res, err = l.loadLocal(resolved)
		}
	}
	if err != nil {
		return nil, err
	}

	l.cacheLock.Lock()
	l.cache[urlStr] = res
	l.cacheLock.Unlock()
	return res, nil
}

// LoadDocument loads and imports a document.
func (l *Loader) LoadDocument(ctx context.Context, urlStr string) (*document.Document, error) {
	res, err := l.Load(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	if res.Type != ResourceTypeDocument {
		return nil, fmt.Errorf("%w: %s is %s", importer.ErrUnsupportedFormat, urlStr, res.MimeType)
	}
	return importer.Load(res.GetReader(), res.Format)
}

// LoadCSS loads and parses a stylesheet.
func (l *Loader) LoadCSS(ctx context.Context, urlStr string) (*css.Stylesheet, error) {
	res, err := l.Load(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	if res.Type != ResourceTypeCSS {
		return nil, fmt.Errorf("resource is not CSS: %s", urlStr)
	}
	sheet, err := css.NewParser().ParseString(res.GetString())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", urlStr, err)
	}
	return sheet, nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// parseDataURL parses a data URL (RFC 2397) and returns a Resource.
// Examples:
//
//	data:text/markdown;base64,<base64>
//	data:text/plain,Hello%20World
func parseDataURL(u string) (*Resource, error) {
	s := strings.TrimPrefix(u, "data:")
	meta, dataPart, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL")
	}

	mimeType := "text/plain"
	isBase64 := false
	comps := strings.Split(meta, ";")
	if comps[0] != "" {
		mimeType = comps[0]
	}
	for _, c := range comps[1:] {
		if strings.EqualFold(strings.TrimSpace(c), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		var err error
		data, err = base64.StdEncoding.DecodeString(dataPart)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
	} else if d, err := url.PathUnescape(dataPart); err == nil {
		data = []byte(d)
	} else {
		data = []byte(dataPart)
	}

	r := &Resource{URL: u, Data: data, MimeType: mimeType}
	r.Type, r.Format = classify(mimeType, "")
	return r, nil
}

// resolveURL resolves a URL relative to the base URL
func (l *Loader) resolveURL(urlStr string) (string, error) {
	if isRemote(urlStr) || filepath.IsAbs(urlStr) {
		return urlStr, nil
	}

	if !isRemote(l.BaseURL) {
		if l.BaseURL == "" {
			return urlStr, nil
		}
		return filepath.Join(filepath.Dir(l.BaseURL), urlStr), nil
	}

	baseURL, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", err
	}
	relURL, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(relURL).String(), nil
}

func (l *Loader) loadRemote(ctx context.Context, urlStr string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP error: %s", urlStr, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	res := &Resource{
		URL:      urlStr,
		Data:     data,
		MimeType: resp.Header.Get("Content-Type"),
	}
	path := urlStr
	if u, err := url.Parse(urlStr); err == nil {
		path = u.Path
	}
	res.Type, res.Format = classify(res.MimeType, path)
	return res, nil
}

func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l.loadFromSearchPaths(path)
	}
	if err != nil {
		return nil, err
	}
	return localResource(path, data), nil
}

func (l *Loader) loadFromSearchPaths(filename string) (*Resource, error) {
	base := filepath.Base(filename)
	for _, searchPath := range l.searchPaths {
		path := filepath.Join(searchPath, base)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return localResource(path, data), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
}

func localResource(path string, data []byte) *Resource {
	res := &Resource{URL: path, Data: data, MimeType: determineMimeType(path)}
	res.Type, res.Format = classify(res.MimeType, path)
	return res
}

// determineMimeType determines the MIME type of a file
func determineMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return "text/css"
	case ".html", ".htm":
		return "text/html"
	case ".md", ".markdown":
		return "text/markdown"
	case ".docx":
		return docxMime
	case ".txt", "":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// classify picks the resource type from its MIME type, falling back to the
// path's extension.
func classify(mimeType, path string) (ResourceType, importer.Format) {
	media, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		media = ""
	}
	switch media {
	case "text/css":
		return ResourceTypeCSS, ""
	case "text/html", "application/xhtml+xml":
		return ResourceTypeDocument, importer.FormatHTML
	case "text/markdown", "text/x-markdown":
		return ResourceTypeDocument, importer.FormatMarkdown
	case docxMime:
		return ResourceTypeDocument, importer.FormatDOCX
	}

	if strings.EqualFold(filepath.Ext(path), ".css") {
		return ResourceTypeCSS, ""
	}
	if path != "" {
		f, err := importer.FormatOf(path)
		if err == nil && (f != importer.FormatText || media == "" || media == "text/plain") {
			return ResourceTypeDocument, f
		}
	}
	if media == "text/plain" {
		return ResourceTypeDocument, importer.FormatText
	}
	return ResourceTypeUnknown, ""
}

// GetReader returns a reader for a resource
func (r *Resource) GetReader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

// GetString returns the resource data as a string
func (r *Resource) GetString() string {
	return string(r.Data)
}
