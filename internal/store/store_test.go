package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gompdf/livepage/internal/document"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	doc := document.New([]document.Block{
		{Kind: document.KindHeading, Level: 2, Text: "Plan"},
		{Kind: document.KindParagraph, Text: "Ship it & celebrate <soon>"},
		{Kind: document.KindListItem, Ordered: true, Text: "first"},
		{Kind: document.KindCode, Text: "a := 1\n  b"},
	})
	if err := s.Save(ctx, "draft", doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "draft")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Equal(doc) {
		t.Errorf("restored %+v, want %+v", got.Blocks(), doc.Blocks())
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	_ = s.Save(ctx, "draft", document.FromText("one"))
	if err := s.Save(ctx, "draft", document.FromText("two\n\nthree")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "draft")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.String() != "two\n\nthree" {
		t.Errorf("doc = %q", got.String())
	}
	entries, _ := s.List(ctx)
	if len(entries) != 1 || entries[0].Blocks != 2 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestStore_ListOrder(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	clock := time.Unix(1000, 0)
	s.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	for _, name := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, name, document.FromText(name)); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if len(names) != 3 || names[0] != "c" || names[2] != "a" {
		t.Errorf("names = %v", names)
	}
	if !entries[0].UpdatedAt.Equal(time.Unix(1003, 0)) {
		t.Errorf("updated at %v", entries[0].UpdatedAt)
	}
}

func TestStore_NotFound(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("load err = %v", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete err = %v", err)
	}
	_ = s.Save(ctx, "x", document.FromText("x"))
	if err := s.Delete(ctx, "x"); err != nil {
		t.Errorf("delete: %v", err)
	}
}

func TestStore_ReopensFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.db")
	ctx := context.Background()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save(ctx, "draft", document.FromText("kept")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Load(ctx, "draft")
	if err != nil || got.String() != "kept" {
		t.Errorf("reloaded %v, %v", got, err)
	}
}
