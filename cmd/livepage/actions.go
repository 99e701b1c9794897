package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/gompdf/livepage/internal/config"
	"github.com/gompdf/livepage/internal/server"
	"github.com/gompdf/livepage/internal/store"
	"github.com/gompdf/livepage/pkg/api"
)

func newLogger(c *cli.Context, cfg config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("debug") || cfg.Debug {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// setup loads the profile and builds the session options shared by every
// command.
func setup(c *cli.Context) (config.Config, []api.Option, *slog.Logger, error) {
	cfg, err := config.Load(c.String("profile"))
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}
	logger := newLogger(c, cfg)
	opts := append(cfg.Options(), api.WithLogger(logger))
	return cfg, opts, logger, nil
}

func sourceArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one source, got %d", c.NArg())
	}
	return c.Args().First(), nil
}

// openSettled opens src and paginates it to convergence.
func openSettled(ctx context.Context, src string, opts []api.Option) (*api.Session, error) {
	session, err := api.OpenSource(ctx, src, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := session.Settle(ctx); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to paginate %s: %w", src, err)
	}
	return session, nil
}

type paginateOutput struct {
	Source string `yaml:"source"`
	Pages  int    `yaml:"pages"`
	Breaks []int  `yaml:"breaks"`
	Blocks int    `yaml:"blocks"`
	Passes int    `yaml:"passes"`
}

func paginateAction(c *cli.Context) error {
	src, err := sourceArg(c)
	if err != nil {
		return err
	}
	_, opts, _, err := setup(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	session, err := openSettled(ctx, src, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	st, err := session.Status(ctx)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(paginateOutput{
		Source: src,
		Pages:  st.Pages,
		Breaks: st.Breaks,
		Blocks: st.Blocks,
		Passes: st.Passes,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func exportAction(c *cli.Context) error {
	src, err := sourceArg(c)
	if err != nil {
		return err
	}
	_, opts, logger, err := setup(c)
	if err != nil {
		return err
	}
	if c.Bool("page-numbers") {
		opts = append(opts, api.WithPageNumbers(true))
	}

	output := c.String("output")
	if output == "" {
		base := filepath.Base(src)
		if i := strings.IndexAny(base, "?#"); i >= 0 {
			base = base[:i]
		}
		output = strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
	}

	ctx := c.Context
	session, err := openSettled(ctx, src, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.ExportPDFFile(ctx, output); err != nil {
		return fmt.Errorf("failed to export %s: %w", src, err)
	}
	pages, _ := session.PageCount(ctx)
	logger.Info("exported", "source", src, "output", output, "pages", pages)
	return nil
}

func serveAction(c *cli.Context) error {
	cfg, opts, logger, err := setup(c)
	if err != nil {
		return err
	}
	if path := c.String("store"); path != "" {
		opts = append(opts, api.WithAutosave(path, cfg.Name))
	}
	listen := c.String("listen")
	if listen == "" {
		listen = cfg.Listen
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var session *api.Session
	if c.NArg() > 0 {
		session, err = api.OpenSource(ctx, c.Args().First(), opts...)
	} else {
		session, err = api.Open(ctx, nil, opts...)
	}
	if err != nil {
		return err
	}
	defer session.Close()

	httpServer := &http.Server{
		Addr:         listen,
		Handler:      server.NewServer(session, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting livepage", "listen", listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func savedListAction(c *cli.Context) error {
	st, err := store.Open(c.String("store"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	entries, err := st.List(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No saved documents")
		return nil
	}

	fmt.Printf("%-30s %-8s %-20s\n", "Name", "Blocks", "Updated")
	fmt.Println(strings.Repeat("-", 60))
	for _, e := range entries {
		fmt.Printf("%-30s %-8d %-20s\n", e.Name, e.Blocks, e.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("\nTotal: %d documents\n", len(entries))
	return nil
}

func savedDeleteAction(c *cli.Context) error {
	name, err := sourceArg(c)
	if err != nil {
		return err
	}
	st, err := store.Open(c.String("store"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	if err := st.Delete(c.Context, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no saved document named %q", name)
		}
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	fmt.Printf("Deleted %s\n", name)
	return nil
}
