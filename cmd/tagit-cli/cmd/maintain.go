package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tagit/internal/adapters/filesystem"
	"tagit/internal/adapters/watcher"
	"tagit/internal/application/commands"
)

var moveCmd = &cobra.Command{
	Use:     "mv <old> <new>",
	Aliases: []string{"rename"},
	Short:   "Move the tags of a file to a new path",
	Long: `Move the tags of a file to a new path after the file itself was moved.
The file is not touched. Tags already on the new path are replaced.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewRenameCommand(GetStore(), GetWorkspace(), args[0], args[1]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete the tags of files that no longer exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := commands.NewSweepCommand(GetStore(), filesystem.Exists).Execute(cmd.Context())
		if report == nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, id := range report.Removed {
			fmt.Fprintf(out, "removed\t%s\n", GetWorkspace().Display(id))
		}
		for _, id := range report.Skipped {
			fmt.Fprintf(out, "skipped\t%s\n", GetWorkspace().Display(id))
		}
		for _, id := range report.Failed {
			fmt.Fprintf(out, "failed\t%s\n", GetWorkspace().Display(id))
		}
		fmt.Fprintf(out, "Checked %d, removed %d, skipped %d in %s\n",
			report.Checked, len(report.Removed), len(report.Skipped), report.Duration.Round(time.Millisecond))
		return err
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep tags in step with renames and deletions under the root",
	Long: `Watch the workspace root and move tags when a file is renamed, or
clear them when it is deleted, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w, err := watcher.New(GetWorkspace(), store,
			watcher.WithLogger(logger),
			watcher.WithSettle(cfg.Watch.Settle))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (ctrl+c to stop)\n", GetWorkspace().Root())

		<-ctx.Done()
		w.Stop()

		stats := w.Stats()
		logger.Info("watch stopped",
			zap.Int("renamed", stats.Renamed),
			zap.Int("cleared", stats.Cleared),
			zap.Int("errors", stats.Errors))
		fmt.Fprintf(cmd.OutOrStdout(), "Moved %d, cleared %d\n", stats.Renamed, stats.Cleared)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(watchCmd)
}
