// Package cli provides the command-line interface for gostl.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sartorproj/gostl/internal/config"
	"github.com/sartorproj/gostl/internal/logging"
)

// Version is set at build time.
var Version = "0.1.0"

// app carries the state shared by every command of one invocation.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	cleanup func() error
	verbose bool
}

func newRootCmd() *cobra.Command {
	a := &app{
		logger:  slog.New(slog.DiscardHandler),
		cleanup: func() error { return nil },
	}

	root := &cobra.Command{
		Use:   "gostl",
		Short: "Seasonal decomposition and driver regression for quarterly series",
		Long: `gostl decomposes a quarterly series into trend, seasonal and remainder
components with STL, aligns it with exogenous driver series on their
timestamps, and fits an OLS model of the target on the drivers.

Input is CSV with a date column (ISO dates or labels like 2020Q1) and a
value column. Results are written as JSON; a summary is printed as tables.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			a.cfg = config.Load()
			level := a.cfg.LogLevel
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger, a.cleanup = logging.SetupLogger(a.cfg.LogFile, level)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := a.cleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newDecomposeCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gostl %s\n", Version)
		},
	}
}
