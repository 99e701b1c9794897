package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gompdf/livepage/internal/pagination"
	"github.com/gompdf/livepage/pkg/api"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Debounce != 300*time.Millisecond || cfg.Margin != 96 {
		t.Errorf("debounce=%v margin=%v", cfg.Debounce, cfg.Margin)
	}
}

func TestLoad_ProfileAndEnv(t *testing.T) {
	path := writeProfile(t, `
page_size: a4
orientation: landscape
margin: 48
debounce: 150ms
title: Notes
page_numbers: true
`)
	t.Setenv("LIVEPAGE_MARGIN", "72")
	t.Setenv("LIVEPAGE_STORE_PATH", "/tmp/livepage.db")
	t.Setenv("LIVEPAGE_MAX_PAGES", "not a number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PageSize != "a4" || cfg.Orientation != "landscape" || cfg.Title != "Notes" || !cfg.PageNumbers {
		t.Errorf("profile not applied: %+v", cfg)
	}
	if cfg.Debounce != 150*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Debounce)
	}
	if cfg.Margin != 72 || cfg.StorePath != "/tmp/livepage.db" {
		t.Errorf("env not applied: margin=%v store=%q", cfg.Margin, cfg.StorePath)
	}
	if cfg.MaxPages != pagination.DefaultMaxPages {
		t.Errorf("invalid env value was applied: %d", cfg.MaxPages)
	}

	o := api.DefaultOptions()
	for _, opt := range cfg.Options() {
		opt(&o)
	}
	g := o.Geometry()
	if g.PageWidth != pagination.PageSizeA4.Height || g.PageHeight != pagination.PageSizeA4.Width {
		t.Errorf("geometry = %vx%v, want landscape A4", g.PageWidth, g.PageHeight)
	}
	if g.Margin != 72 || o.StorePath != "/tmp/livepage.db" || o.Name != "default" {
		t.Errorf("options = %+v", o)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		profile string
	}{
		{"page size", "page_size: tabloid"},
		{"orientation", "orientation: sideways"},
		{"margins", "margin: 600"},
		{"debounce", "debounce: -1s"},
		{"name", `name: ""`},
		{"syntax", "margin: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeProfile(t, tt.profile)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error")
	}
}
