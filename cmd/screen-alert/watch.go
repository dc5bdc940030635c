package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/screen-text-alert/internal/metrics"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan the screen until interrupted and alert on the target text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}

			a, err := newApp(cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return runWatch(cmd.Context(), a)
		},
	}
	addConfigFlags(cmd.Flags())
	return cmd
}

// runWatch runs the loop and, when configured, the metrics server until ctx
// is cancelled. A failing metrics server stops the loop.
func runWatch(ctx context.Context, a *app) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.MetricsAddr != "" {
		srv, err := metrics.Listen(a.cfg.MetricsAddr, a.registry, a.logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return srv.Serve(ctx) })
	}

	g.Go(func() error { return a.loop.Run(ctx) })

	return g.Wait()
}
