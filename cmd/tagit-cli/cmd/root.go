package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tagit/internal/adapters/backend"
	"tagit/internal/adapters/filesystem"
	"tagit/internal/application"
	"tagit/internal/config"
	"tagit/internal/logging"
	"tagit/internal/ports"
)

var (
	configPath  string
	rootFlag    string
	backendFlag string
	verbose     bool

	cfg       *config.Config
	logger    *zap.Logger
	storage   ports.TagStorage
	store     *application.TagStore
	workspace *filesystem.Workspace
)

var rootCmd = &cobra.Command{
	Use:   "tagit-cli",
	Short: "Tag files and find them with boolean tag queries",
	Long: `tagit-cli attaches free-form tags to files and finds files with
boolean queries over those tags.

Tags are stored per file outside the files themselves. Queries combine
tag names with & (and), | (or) and parentheses; & binds tighter than |.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		teardown()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tagit/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootFlag, "root", "r", "", "workspace root (default $TAGIT_ROOT or the working directory)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: sqlite, memory, postgres, consul, s3")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level")
}

func setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if rootFlag != "" {
		if cfg.Root, err = config.ExpandPath(rootFlag); err != nil {
			return err
		}
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err = logging.New(cfg.Log, verbose)
	if err != nil {
		return err
	}

	storage, err = backend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Backend, err)
	}
	logger.Debug("storage opened", zap.String("backend", cfg.Backend), zap.String("root", cfg.Root))

	store = application.NewTagStore(storage, application.WithLogger(logger))

	workspace, err = filesystem.NewWorkspace(cfg.Root, cfg.Ignore)
	return err
}

func teardown() {
	if storage != nil {
		if err := storage.Close(); err != nil && logger != nil {
			logger.Warn("closing storage", zap.Error(err))
		}
		storage = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

// GetStore returns the initialized tag store
func GetStore() ports.TagRepository {
	return store
}

// GetWorkspace returns the initialized workspace
func GetWorkspace() *filesystem.Workspace {
	return workspace
}
