package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tagit/internal/adapters/backend"
	"tagit/internal/adapters/editor"
	"tagit/internal/adapters/filesystem"
	"tagit/internal/adapters/launcher"
	"tagit/internal/adapters/tui"
	"tagit/internal/adapters/watcher"
	"tagit/internal/application"
	"tagit/internal/config"
	"tagit/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "config file (default $XDG_CONFIG_HOME/tagit/config.yaml)")
	watchFlag := flag.Bool("watch", false, "follow renames and deletions while the browser is open")
	flag.Parse()

	if err := run(*configFlag, *watchFlag, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, watch bool, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		if cfg.Root, err = config.ExpandPath(args[0]); err != nil {
			return err
		}
	}

	logger, err := logging.NewForTUI(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := backend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Backend, err)
	}
	defer storage.Close()

	// Initialize adapters
	store := application.NewTagStore(storage, application.WithLogger(logger))
	ws, err := filesystem.NewWorkspace(cfg.Root, cfg.Ignore)
	if err != nil {
		return err
	}

	if watch {
		w, err := watcher.New(ws, store, watcher.WithLogger(logger), watcher.WithSettle(cfg.Watch.Settle))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer func() {
			w.Stop()
			stats := w.Stats()
			logger.Info("watch stopped", zap.Int("renamed", stats.Renamed), zap.Int("cleared", stats.Cleared))
		}()
	}

	// Create and run TUI app
	app := tui.NewApp(store, ws, editor.NewOpener())
	app.SetLauncher(launcher.NewLauncher())

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
