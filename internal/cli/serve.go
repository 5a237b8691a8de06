package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/muninboard/internal/server"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr    string
	noCache bool
}

// serveCommand creates the command running the dashboard HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dashboards over HTTP",
		Long: `Serve the dashboard HTTP API.

Endpoints:
  GET /health                  liveness and build information
  GET /api/v1/dashboard?node=  dashboard JSON for a node (from, line, key, refresh)
  GET /api/v1/nodes?pattern=   indexed nodes matching a glob pattern`,
		Example: `  muninboard serve
  muninboard serve --addr :9090 --no-cache`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the directory lookup cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()
	cfg := c.config()

	s, err := c.newSession(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	addr := cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	c.Logger.Info("starting server", "addr", addr, "directory", cfg.Directory.Backend, "cache", cfg.Cache.Backend)
	srv := server.New(s.runner, server.Options{
		Addr:            addr,
		ReadTimeout:     cfg.Server.ReadTimeout.Duration,
		WriteTimeout:    cfg.Server.WriteTimeout.Duration,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
		RequestTimeout:  cfg.Directory.Timeout.Duration,
		Defaults:        c.defaultOptions(),
	}, c.Logger)
	return srv.Run(ctx)
}
