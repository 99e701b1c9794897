package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gompdf/livepage/internal/document"
	"github.com/gompdf/livepage/pkg/api"
)

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
.page-break { height: {{.Overhead}}px; background: #eee; }
.page-indicator { position: fixed; top: 8px; right: 8px; font: 12px sans-serif; }
</style>
</head>
<body>
<div class="page-indicator">{{.Pages}} {{if eq .Pages 1}}Page{{else}}Pages{{end}}</div>
<div class="editor" style="width: {{.Width}}px; padding: {{.Margin}}px">
{{.Body}}
</div>
</body>
</html>
`))

// handlePreview renders the document as the editor shows it, with a page
// indicator.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	html, err := s.session.HTML(ctx)
	if err != nil {
		jsonError(w, "failed to render document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	pages, err := s.session.PageCount(ctx)
	if err != nil {
		jsonError(w, "failed to count pages: "+err.Error(), http.StatusInternalServerError)
		return
	}
	options := s.session.Options()
	g := options.Geometry()
	title := options.Title
	if title == "" {
		title = options.Name
	}

	var buf bytes.Buffer
	err = previewTemplate.Execute(&buf, map[string]any{
		"Title":    title,
		"Pages":    pages,
		"Width":    g.ContentWidth(),
		"Margin":   g.Margin,
		"Overhead": g.BreakOverhead(),
		"Body":     template.HTML(html),
	})
	if err != nil {
		jsonError(w, "failed to render preview: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleDocument returns the document HTML with its break widgets, or plain
// text with ?format=text.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.URL.Query().Get("format") == "text" {
		doc, err := s.session.Doc(ctx)
		if err != nil {
			sessionError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(doc.String()))
		return
	}
	html, err := s.session.HTML(ctx)
	if err != nil {
		sessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.Status(r.Context())
	if err != nil {
		sessionError(w, err)
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := s.session.Settle(ctx); err != nil {
		jsonError(w, "failed to paginate: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.respondStatus(ctx, w)
}

// editOp is one edit of an edit request. Positions are document positions.
type editOp struct {
	Op    string `json:"op"`
	Pos   int    `json:"pos"`
	From  int    `json:"from"`
	To    int    `json:"to"`
	Text  string `json:"text"`
	Kind  string `json:"kind"`
	Level int    `json:"level"`
}

type editRequest struct {
	Ops []editOp `json:"ops"`
}

var errUnknownOp = errors.New("unknown op")

func (op editOp) apply(tr *document.Transaction) error {
	switch op.Op {
	case "insert":
		return tr.Insert(op.Pos, op.Text)
	case "delete":
		return tr.Delete(op.From, op.To)
	case "replace":
		return tr.Replace(op.From, op.To, op.Text)
	case "split":
		return tr.Split(op.Pos)
	case "type":
		_, err := tr.InsertParagraphs(op.Pos, op.Text)
		return err
	case "append":
		end := tr.Doc().Size() - 1
		if err := tr.Split(end); err != nil {
			return err
		}
		_, err := tr.InsertParagraphs(end+2, op.Text)
		return err
	case "set_kind":
		return tr.SetKind(op.Pos, document.Kind(op.Kind), op.Level)
	default:
		return fmt.Errorf("%w %q", errUnknownOp, op.Op)
	}
}

// handleEdits applies every op of the request as a single transaction.
func (s *Server) handleEdits(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEditBytes)
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid edit request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Ops) == 0 {
		jsonError(w, "ops is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	err := s.session.Edit(ctx, func(tr *document.Transaction) error {
		for i, op := range req.Ops {
			if err := op.apply(tr); err != nil {
				return fmt.Errorf("op %d: %w", i, err)
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, errUnknownOp):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, document.ErrInvalidPosition):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		sessionError(w, err)
		return
	}
	s.log.Debug("edits applied", "ops", len(req.Ops))
	s.respondStatus(ctx, w)
}

func (s *Server) respondStatus(ctx context.Context, w http.ResponseWriter) {
	st, err := s.session.Status(ctx)
	if err != nil {
		sessionError(w, err)
		return
	}
	writeJSON(w, st)
}

// handleExport streams the displayed pages as a PDF.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.session.ExportPDF(r.Context(), &buf); err != nil {
		jsonError(w, "failed to export: "+err.Error(), http.StatusInternalServerError)
		return
	}
	name := s.session.Options().Name
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name+".pdf"))
	w.Write(buf.Bytes())
}

// sessionError maps a session failure to a response.
func sessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, api.ErrClosed) {
		jsonError(w, "session closed", http.StatusServiceUnavailable)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}
