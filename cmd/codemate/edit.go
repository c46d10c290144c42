package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codemate/internal/app"
	"github.com/dshills/codemate/internal/config"
	"github.com/dshills/codemate/internal/engine"
	"github.com/dshills/codemate/internal/ui"
)

// runEditor opens path in the terminal editor. With no path the editor
// starts without a document.
func runEditor(ctx context.Context, opts *options, path string) error {
	cfg, logger, err := opts.loadLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	store, err := config.Open(opts.path(), config.WithLogger(logger.WithComponent("config").Logger))
	if err != nil {
		return err
	}
	defer store.Close()

	var doc *engine.Engine
	if path != "" {
		if doc, err = engine.Open(path); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	u := ui.New(screen,
		ui.WithTheme(ui.ThemeFrom(cfg.Preview)),
		ui.WithHighlightDuration(cfg.Preview.HighlightDuration.Std()),
		ui.WithLogger(logger.WithComponent("ui").Logger),
	)

	a, err := app.New(store,
		app.WithHost(u),
		app.WithLogger(logger),
		app.WithDocument(doc),
	)
	if err != nil {
		return err
	}
	defer a.Close()

	store.OnChange(func(_, cur *config.Config) { u.ApplyConfig(cur) })
	if err := store.Watch(); err != nil {
		logger.Warn("config file not watched", "path", store.Path(), "error", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("editor started", "version", version, "file", path, "config", store.Path())
	return u.Run(ctx, a)
}
