package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/screen-text-alert/internal/config"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes.
const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return exitConfig
	}
	return exitError
}

func newRootCmd() *cobra.Command {
	watch := newWatchCmd()

	root := &cobra.Command{
		Use:   "screen-alert",
		Short: "Watch the screen for a phrase and sound an alert when it appears",
		Long: `screen-alert periodically captures the screen (or a region of it), runs
OCR over the frame and plays a sound once the target text has been seen on
enough consecutive scans.

Configuration is read from flags, SCREEN_ALERT_* environment variables and an
optional screen-alert.yaml in the working directory or
$HOME/.config/screen-alert/.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running without a subcommand behaves like "watch".
		Args: cobra.NoArgs,
		RunE: watch.RunE,
	}
	root.Flags().AddFlagSet(watch.Flags())

	root.AddCommand(watch, newProbeCmd(), newSelftestCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "screen-alert %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}
