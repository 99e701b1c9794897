// Package api is the public entry point of livepage: a Session owns a live
// editor view paginated in the background, and exposes thread safe editing,
// inspection and export on top of it.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gompdf/livepage/internal/document"
	"github.com/gompdf/livepage/internal/layout"
	"github.com/gompdf/livepage/internal/loop"
	"github.com/gompdf/livepage/internal/pagination"
	"github.com/gompdf/livepage/internal/parser/css"
	"github.com/gompdf/livepage/internal/render/pdf"
	"github.com/gompdf/livepage/internal/res"
	"github.com/gompdf/livepage/internal/store"
	"github.com/gompdf/livepage/internal/view"
)

// ErrClosed is returned by every operation on a closed session.
var ErrClosed = loop.ErrClosed

// Status is a snapshot of a session's pagination state.
type Status struct {
	Pages   int   `json:"pages" yaml:"pages"`
	Breaks  []int `json:"breaks" yaml:"breaks"`
	Blocks  int   `json:"blocks" yaml:"blocks"`
	Size    int   `json:"size" yaml:"size"`
	Version int   `json:"version" yaml:"version"`
	Passes  int   `json:"passes" yaml:"passes"`
	Waiting bool  `json:"waiting" yaml:"waiting"`
}

// Session is a live paginated document. All methods are safe for concurrent
// use; the view itself is only ever touched from the session's loop.
type Session struct {
	options Options
	log     *slog.Logger
	loader  *res.Loader
	store   *store.Store

	loop   *loop.Loop
	view   *view.View
	engine *pagination.Engine

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Open starts a session on doc. A nil doc starts from an empty paragraph.
// With autosave enabled, a document previously saved under the session name
// takes precedence over doc.
func Open(ctx context.Context, doc *document.Document, opts ...Option) (*Session, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return OpenWithOptions(ctx, doc, options)
}

// OpenSource imports the document at src, a path or URL, and opens a session
// on it.
func OpenSource(ctx context.Context, src string, opts ...Option) (*Session, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	doc, err := newLoader(options).LoadDocument(ctx, src)
	if err != nil {
		return nil, err
	}
	return OpenWithOptions(ctx, doc, options)
}

// OpenWithOptions starts a session on doc with fully specified options.
func OpenWithOptions(ctx context.Context, doc *document.Document, options Options) (*Session, error) {
	log := newLogger(options)
	geometry := options.Geometry()
	if err := geometry.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		options: options,
		log:     log,
		loader:  newLoader(options),
		done:    make(chan struct{}),
	}

	sheet, err := s.stylesheet(ctx)
	if err != nil {
		return nil, err
	}

	if options.StorePath != "" {
		s.store, err = store.Open(options.StorePath)
		if err != nil {
			return nil, err
		}
		saved, err := s.store.Load(ctx, options.Name)
		switch {
		case err == nil:
			log.Info("restored saved document", "name", options.Name, "blocks", saved.BlockCount())
			doc = saved
		case !errors.Is(err, store.ErrNotFound):
			s.store.Close()
			return nil, err
		}
	}
	if doc == nil {
		doc = document.New(nil)
	}

	layouter := layout.NewEngine(layout.Options{
		Geometry:   geometry,
		Stylesheet: sheet,
		Logger:     log,
	})

	s.loop = loop.New(options.FrameInterval, log)
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		defer close(s.done)
		if err := s.loop.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("session loop stopped", "error", err)
		}
	}()

	err = s.loop.Do(ctx, func() error {
		s.view = view.New(doc, layouter, log)
		engine, err := pagination.NewEngine(s.view, s.loop, pagination.Options{
			Geometry:     geometry,
			Debounce:     options.Debounce,
			InitialDelay: options.InitialDelay,
			StaleSlack:   options.StaleSlack,
			Logger:       log,
		})
		if err != nil {
			return err
		}
		s.engine = engine
		s.view.AddPlugin(engine)
		if s.store != nil {
			s.view.AddPlugin(&autosave{store: s.store, name: options.Name, log: log})
		}
		engine.Start()
		return nil
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	log.Debug("session opened",
		"page_width", geometry.PageWidth,
		"page_height", geometry.PageHeight,
		"content_height", geometry.ContentHeight,
		"blocks", doc.BlockCount())
	return s, nil
}

func newLogger(options Options) *slog.Logger {
	if options.Logger != nil {
		return options.Logger
	}
	if options.Debug {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}

func newLoader(options Options) *res.Loader {
	loader := res.NewLoader("")
	for _, path := range options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	return loader
}

// stylesheet combines the inline stylesheet with the linked ones, in order.
func (s *Session) stylesheet(ctx context.Context) (*css.Stylesheet, error) {
	if s.options.Stylesheet == "" && len(s.options.StylesheetURLs) == 0 {
		return nil, nil
	}
	sheet := &css.Stylesheet{}
	if s.options.Stylesheet != "" {
		parsed, err := css.NewParser().ParseString(s.options.Stylesheet)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stylesheet: %w", err)
		}
		sheet.Merge(parsed)
	}
	for _, url := range s.options.StylesheetURLs {
		linked, err := s.loader.LoadCSS(ctx, url)
		if err != nil {
			return nil, err
		}
		sheet.Merge(linked)
	}
	return sheet, nil
}

// Options returns the options the session was opened with.
func (s *Session) Options() Options {
	return s.options
}

// Edit builds a transaction from the current document with fn and dispatches
// it. Nothing is dispatched if fn fails.
func (s *Session) Edit(ctx context.Context, fn func(tr *document.Transaction) error) error {
	return s.loop.Do(ctx, func() error {
		tr := s.view.Doc().Tr()
		if err := fn(tr); err != nil {
			return err
		}
		return s.view.Dispatch(tr)
	})
}

// Insert inserts text at pos.
func (s *Session) Insert(ctx context.Context, pos int, text string) error {
	return s.Edit(ctx, func(tr *document.Transaction) error {
		return tr.Insert(pos, text)
	})
}

// Delete removes the range [from, to), joining blocks it spans.
func (s *Session) Delete(ctx context.Context, from, to int) error {
	return s.Edit(ctx, func(tr *document.Transaction) error {
		return tr.Delete(from, to)
	})
}

// Replace replaces the range [from, to) with text.
func (s *Session) Replace(ctx context.Context, from, to int, text string) error {
	return s.Edit(ctx, func(tr *document.Transaction) error {
		return tr.Replace(from, to, text)
	})
}

// Split splits the block containing pos.
func (s *Session) Split(ctx context.Context, pos int) error {
	return s.Edit(ctx, func(tr *document.Transaction) error {
		return tr.Split(pos)
	})
}

// SetKind changes the type of the block containing pos.
func (s *Session) SetKind(ctx context.Context, pos int, kind document.Kind, level int) error {
	return s.Edit(ctx, func(tr *document.Transaction) error {
		return tr.SetKind(pos, kind, level)
	})
}

// Type inserts text at pos, starting a new block at every newline.
func (s *Session) Type(ctx context.Context, pos int, text string) error {
	return s.Edit(ctx, func(tr *document.Transaction) error {
		_, err := tr.InsertParagraphs(pos, text)
		return err
	})
}

// Append adds text as new paragraphs at the end of the document.
func (s *Session) Append(ctx context.Context, text string) error {
	return s.Edit(ctx, func(tr *document.Transaction) error {
		end := tr.Doc().Size() - 1
		if err := tr.Split(end); err != nil {
			return err
		}
		_, err := tr.InsertParagraphs(end+2, text)
		return err
	})
}

func query[T any](ctx context.Context, s *Session, fn func() (T, error)) (T, error) {
	var out T
	err := s.loop.Do(ctx, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

// Doc returns the current document. Documents are immutable, so the result
// stays valid after later edits.
func (s *Session) Doc(ctx context.Context) (*document.Document, error) {
	return query(ctx, s, func() (*document.Document, error) {
		return s.view.Doc(), nil
	})
}

// PageCount returns the number of pages currently displayed.
func (s *Session) PageCount(ctx context.Context) (int, error) {
	return query(ctx, s, func() (int, error) {
		return s.engine.PageCount(), nil
	})
}

// Breaks returns the document positions of the displayed page breaks.
func (s *Session) Breaks(ctx context.Context) ([]int, error) {
	return query(ctx, s, func() ([]int, error) {
		return s.engine.Breaks().Positions(), nil
	})
}

// Status returns a snapshot of the pagination state.
func (s *Session) Status(ctx context.Context) (Status, error) {
	return query(ctx, s, func() (Status, error) {
		doc := s.view.Doc()
		return Status{
			Pages:   s.engine.PageCount(),
			Breaks:  s.engine.Breaks().Positions(),
			Blocks:  doc.BlockCount(),
			Size:    doc.Size(),
			Version: s.view.Version(),
			Passes:  s.engine.Passes(),
			Waiting: s.engine.Waiting(),
		}, nil
	})
}

// HTML renders the document the way the editor shows it, break widgets
// included.
func (s *Session) HTML(ctx context.Context) (string, error) {
	return query(ctx, s, func() (string, error) {
		return s.view.HTML(), nil
	})
}

// Layout returns the layout of the displayed state.
func (s *Session) Layout(ctx context.Context) (*layout.Root, error) {
	return query(ctx, s, s.view.Layout)
}

// Settle paginates synchronously until the breaks stop changing and returns
// the number of passes it took.
func (s *Session) Settle(ctx context.Context) (int, error) {
	return query(ctx, s, func() (int, error) {
		return s.engine.Settle(MaxSettlePasses)
	})
}

// Recalculate runs a single pagination pass immediately and reports whether
// it changed the breaks.
func (s *Session) Recalculate(ctx context.Context) (bool, error) {
	return query(ctx, s, s.engine.Recalculate)
}

// WaitIdle blocks until no pass or commit is scheduled.
func (s *Session) WaitIdle(ctx context.Context) error {
	interval := s.options.FrameInterval
	if interval <= 0 {
		interval = loop.DefaultFrameInterval
	}
	for {
		waiting, err := query(ctx, s, func() (bool, error) {
			return s.engine.Waiting(), nil
		})
		if err != nil || !waiting {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Subscribe calls fn with the page count and break positions every time the
// displayed breaks change. fn runs on the session loop and must not call back
// into the session.
func (s *Session) Subscribe(ctx context.Context, fn func(pages int, breaks []int)) (cancel func(), err error) {
	return query(ctx, s, func() (func(), error) {
		unsubscribe := s.engine.Subscribe(pagination.ObserverFunc(func(set pagination.BreakSet) {
			fn(set.PageCount(), set.Positions())
		}))
		return func() { _ = s.loop.Post(unsubscribe) }, nil
	})
}

// ExportPDF writes the displayed pages as a PDF, one PDF page per page on
// screen.
func (s *Session) ExportPDF(ctx context.Context, w io.Writer) error {
	root, err := s.Layout(ctx)
	if err != nil {
		return err
	}
	return pdf.NewRenderer(s.log).Render(root, w, s.renderOptions())
}

// ExportPDFFile writes the displayed pages as a PDF file at path.
func (s *Session) ExportPDFFile(ctx context.Context, path string) error {
	root, err := s.Layout(ctx)
	if err != nil {
		return err
	}
	return pdf.NewRenderer(s.log).RenderFile(root, path, s.renderOptions())
}

func (s *Session) renderOptions() pdf.RenderOptions {
	return pdf.RenderOptions{
		Title:       s.options.Title,
		Author:      s.options.Author,
		Subject:     s.options.Subject,
		Keywords:    s.options.Keywords,
		Creator:     "livepage",
		Producer:    "livepage",
		PageNumbers: s.options.PageNumbers,
	}
}

// Save stores the current document immediately. It fails when autosave is
// not enabled.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return errors.New("autosave is not enabled")
	}
	doc, err := s.Doc(ctx)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, s.options.Name, doc)
}

// Close tears the view down and stops the loop. It is safe to call more than
// once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.loop != nil {
			_ = s.loop.Do(context.Background(), func() error {
				if s.view != nil {
					s.view.Destroy()
				}
				return nil
			})
			s.loop.Close()
			s.cancel()
			<-s.done
		}
		if s.store != nil {
			s.closeErr = s.store.Close()
		}
	})
	return s.closeErr
}

const saveTimeout = 5 * time.Second

// autosave persists every document change.
type autosave struct {
	store *store.Store
	name  string
	log   *slog.Logger
}

func (a *autosave) Apply(*document.Transaction) {}

func (a *autosave) Update(tr *document.Transaction) {
	if !tr.DocChanged() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := a.store.Save(ctx, a.name, tr.Doc()); err != nil {
		a.log.Warn("autosave failed", "name", a.name, "error", err)
	}
}

func (a *autosave) Decorations() []int { return nil }

func (a *autosave) Destroy() {}
