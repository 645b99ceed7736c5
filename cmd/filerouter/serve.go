package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/filerouter/internal/errors"
	"github.com/vango-dev/filerouter/pkg/pipeline"
	"github.com/vango-dev/filerouter/pkg/routesapi"
)

func serveCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route table over HTTP",
		Long: `Compile the routes and serve them:

  GET  /routes            merged route tree
  GET  /menu              navigation menu
  GET  /match?path=/a/b   resolve a request path
  POST /reload            recompile from disk
  GET  /metrics           Prometheus metrics
  GET  /healthz           liveness

A failed reload keeps serving the previous table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics := pipeline.NewMetrics(pipeline.WithRegistry(reg))

			srv := routesapi.New(routesapi.Options{
				Compile: func(ctx context.Context) (*pipeline.Result, error) {
					return c.compile(ctx, metrics)
				},
				Gatherer: reg,
			})
			res, err := srv.Reload(ctx)
			if err != nil {
				return err
			}
			reportWarnings(cmd.ErrOrStderr(), diagnostics(res, c.cfg.RoutesPath()))

			addr := c.cfg.Serve.Addr
			success(cmd.OutOrStdout(), "Serving %d views on http://%s", len(res.Views()), addr)
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return errors.New("R402").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "listen address (default: serve.addr, \"localhost:8085\")")
	return cmd
}
