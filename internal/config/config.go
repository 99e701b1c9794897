package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gompdf/livepage/internal/pagination"
	"github.com/gompdf/livepage/pkg/api"
)

// Config is a livepage profile. Lengths are CSS pixels.
type Config struct {
	Listen    string `yaml:"listen"`
	StorePath string `yaml:"store_path"`
	Name      string `yaml:"name"`
	Debug     bool   `yaml:"debug"`

	// Page
	PageSize    string `yaml:"page_size"`
	Orientation string `yaml:"orientation"`
	// PageWidth and PageHeight override PageSize when both are positive.
	PageWidth     float64 `yaml:"page_width"`
	PageHeight    float64 `yaml:"page_height"`
	Margin        float64 `yaml:"margin"`
	Gutter        float64 `yaml:"gutter"`
	ContentHeight float64 `yaml:"content_height"`
	MaxPages      int     `yaml:"max_pages"`
	HitInset      float64 `yaml:"hit_inset"`

	// Pagination timing
	Debounce     time.Duration `yaml:"debounce"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	StaleSlack   float64       `yaml:"stale_slack"`

	// Styling and export
	Stylesheet  string `yaml:"stylesheet"`
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	PageNumbers bool   `yaml:"page_numbers"`
}

// Default returns the built-in profile.
func Default() Config {
	return Config{
		Listen:       ":8080",
		Name:         "default",
		PageSize:     pagination.PageSizeLetter.Name,
		Orientation:  string(api.PageOrientationPortrait),
		Margin:       pagination.DefaultMargin,
		Gutter:       pagination.DefaultGutter,
		MaxPages:     pagination.DefaultMaxPages,
		HitInset:     pagination.DefaultInset,
		Debounce:     pagination.DefaultDebounce,
		InitialDelay: pagination.DefaultInitialDelay,
		StaleSlack:   pagination.DefaultStaleSlack,
	}
}

// Load reads the YAML profile at path over the defaults, applies LIVEPAGE_*
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read profile: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse profile %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Listen = envOr("LIVEPAGE_LISTEN", c.Listen)
	c.StorePath = envOr("LIVEPAGE_STORE_PATH", c.StorePath)
	c.Name = envOr("LIVEPAGE_NAME", c.Name)
	c.Debug = envBool("LIVEPAGE_DEBUG", c.Debug)

	c.PageSize = envOr("LIVEPAGE_PAGE_SIZE", c.PageSize)
	c.Orientation = envOr("LIVEPAGE_ORIENTATION", c.Orientation)
	c.Margin = envFloat("LIVEPAGE_MARGIN", c.Margin)
	c.Gutter = envFloat("LIVEPAGE_GUTTER", c.Gutter)
	c.ContentHeight = envFloat("LIVEPAGE_CONTENT_HEIGHT", c.ContentHeight)
	c.PageWidth = envFloat("LIVEPAGE_PAGE_WIDTH", c.PageWidth)
	c.PageHeight = envFloat("LIVEPAGE_PAGE_HEIGHT", c.PageHeight)
	c.MaxPages = envInt("LIVEPAGE_MAX_PAGES", c.MaxPages)
	c.HitInset = envFloat("LIVEPAGE_HIT_INSET", c.HitInset)

	c.Debounce = envDuration("LIVEPAGE_DEBOUNCE", c.Debounce)
	c.InitialDelay = envDuration("LIVEPAGE_INITIAL_DELAY", c.InitialDelay)
	c.StaleSlack = envFloat("LIVEPAGE_STALE_SLACK", c.StaleSlack)

	c.Stylesheet = envOr("LIVEPAGE_STYLESHEET", c.Stylesheet)
	c.Title = envOr("LIVEPAGE_TITLE", c.Title)
	c.Author = envOr("LIVEPAGE_AUTHOR", c.Author)
	c.PageNumbers = envBool("LIVEPAGE_PAGE_NUMBERS", c.PageNumbers)
}

func (c Config) Validate() error {
	if _, ok := api.PageSizeByName(c.PageSize); !ok {
		return fmt.Errorf("unknown page_size %q", c.PageSize)
	}
	switch api.PageOrientation(c.Orientation) {
	case api.PageOrientationPortrait, api.PageOrientationLandscape:
	default:
		return fmt.Errorf("orientation must be portrait or landscape, got %q", c.Orientation)
	}
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.Debounce < 0 || c.InitialDelay < 0 {
		return errors.New("debounce and initial_delay must not be negative")
	}
	if c.StaleSlack < 0 || c.HitInset < 0 {
		return errors.New("stale_slack and hit_inset must not be negative")
	}
	o := api.DefaultOptions()
	for _, opt := range c.Options() {
		opt(&o)
	}
	return o.Geometry().Validate()
}

// Options converts the profile into session options.
func (c Config) Options() []api.Option {
	opts := []api.Option{
		api.WithPageOrientation(api.PageOrientation(c.Orientation)),
		api.WithMargin(c.Margin),
		api.WithGutter(c.Gutter),
		api.WithContentHeight(c.ContentHeight),
		api.WithMaxPages(c.MaxPages),
		api.WithInset(c.HitInset),
		api.WithDebounce(c.Debounce),
		api.WithInitialDelay(c.InitialDelay),
		api.WithStaleSlack(c.StaleSlack),
		api.WithDebug(c.Debug),
		api.WithTitle(c.Title),
		api.WithAuthor(c.Author),
		api.WithPageNumbers(c.PageNumbers),
	}
	if c.PageWidth > 0 && c.PageHeight > 0 {
		opts = append(opts, api.WithPageSize(c.PageWidth, c.PageHeight))
	} else if size, ok := api.PageSizeByName(c.PageSize); ok {
		opts = append(opts, api.WithPageSize(size.Width, size.Height))
	}
	if c.Stylesheet != "" {
		opts = append(opts, api.WithStylesheetURL(c.Stylesheet))
	}
	if c.StorePath != "" {
		opts = append(opts, api.WithAutosave(c.StorePath, c.Name))
	}
	return opts
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
