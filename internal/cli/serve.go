package cli

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/nodedocs/pkg/config"
	"github.com/matzehuels/nodedocs/pkg/metrics"
	"github.com/matzehuels/nodedocs/pkg/notify"
	"github.com/matzehuels/nodedocs/pkg/observability"
	"github.com/matzehuels/nodedocs/pkg/server"
)

type serveFlags struct {
	catalog   string
	addr      string
	docs      string
	noMetrics bool
	noHistory bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the documentation processor behind an HTTP API",
		Long: `Serve accepts documentation tasks over HTTP and runs them one at a time.
Generated trees are served under /docs, Prometheus metrics under /metrics.

  POST /api/tasks           submit a task (JSON task settings)
  GET  /api/tasks[/{id}]    task status
  GET  /api/notifications   progress notifications
  GET  /api/history         finished runs`,
		Example: `  nodedocs serve --catalog catalog.yaml --addr :9000 --docs ./site`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = f.addr
			}
			return c.runServe(cmd.Context(), cfg, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.catalog, "catalog", "", "catalog manifest (YAML)")
	flags.StringVar(&f.addr, "addr", config.DefaultServerAddr, "listen address")
	flags.StringVar(&f.docs, "docs", config.DefaultOutputRoot, "directory generated trees are written to and served from")
	flags.BoolVar(&f.noMetrics, "no-metrics", false, "do not expose /metrics")
	flags.BoolVar(&f.noHistory, "no-history", false, "do not record runs")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.File, f serveFlags) error {
	var metricsHandler http.Handler
	if !f.noMetrics {
		m := metrics.New(prometheus.NewRegistry())
		m.Register()
		defer observability.Reset()
		metricsHandler = m.Handler()
	}

	rt, err := c.newRuntime(ctx, cfg, runtimeOptions{
		catalogPath: f.catalog,
		noHistory:   f.noHistory,
		sink:        notify.NewLogSink(c.Logger),
	})
	if err != nil {
		return err
	}
	defer rt.close()

	srv := server.New(server.Options{
		Tasks:    rt.proc,
		History:  rt.history,
		Board:    rt.board,
		DocsRoot: f.docs,
		Defaults: cfg.Task,
		Metrics:  metricsHandler,
		Logger:   c.Logger,
	})

	c.printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(cfg.Server.Addr)))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rt.bridge.Run(gctx) })
	g.Go(func() error {
		defer rt.bridge.Close()
		return rt.proc.Run(gctx)
	})
	g.Go(func() error {
		err := srv.ListenAndServe(gctx, cfg.Server.Addr)
		// The processor has no other reason to stop.
		rt.proc.RequestStop()
		return err
	})
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

// displayAddr turns a listen address into something a browser accepts.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
