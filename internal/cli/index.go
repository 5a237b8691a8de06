package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/muninboard/pkg/config"
	"github.com/matzehuels/muninboard/pkg/indexer"
)

// indexOpts holds the flags of the index command.
type indexOpts struct {
	once        bool
	interval    time.Duration
	concurrency int
	filter      string
	prefix      string
}

// indexCommand creates the command polling munin nodes into the directory.
func (c *CLI) indexCommand() *cobra.Command {
	opts := indexOpts{}

	cmd := &cobra.Command{
		Use:   "index [host...]",
		Short: "Poll munin nodes and store their plugin metadata",
		Long: `Connect to munin-node on each host, read the configuration of every
plugin and store it in the directory, replacing the previous record.

Hosts come from the arguments, or from the [[hosts]] entries of the
configuration when no argument is given. Without --once, the nodes are
polled again every interval until interrupted.`,
		Example: `  muninboard index --once db1.example.com web1.example.com:4950
  muninboard index --interval 10m --filter '^(cpu|load|df)'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIndex(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.once, "once", false, "poll every node once and exit")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "time between polling rounds (default from config)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "nodes polled in parallel (default from config)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "regular expression selecting the plugins to index")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "metric prefix stored with every node")

	return cmd
}

func (c *CLI) runIndex(cmd *cobra.Command, args []string, opts indexOpts) error {
	ctx := cmd.Context()
	cfg := c.config()

	targets := indexTargets(args, cfg.Hosts)
	if len(targets) == 0 {
		return errors.New("no hosts to index: pass hosts as arguments or configure [[hosts]]")
	}

	s, err := c.newSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	filter := cfg.Indexer.Filter
	if opts.filter != "" {
		filter = opts.filter
	}
	ix, err := indexer.New(s.runner.Directory, filter, c.Logger)
	if err != nil {
		return err
	}
	ix.Port = cfg.Indexer.Port
	ix.Timeout = cfg.Indexer.Timeout.Duration
	ix.Concurrency = cfg.Indexer.Concurrency
	if opts.concurrency > 0 {
		ix.Concurrency = opts.concurrency
	}
	ix.Prefix = opts.prefix

	if !opts.once {
		interval := cfg.Indexer.Interval.Duration
		if opts.interval > 0 {
			interval = opts.interval
		}
		c.Logger.Info("indexing", "targets", len(targets), "interval", interval)
		return ix.Run(ctx, targets, interval)
	}

	prog := newProgress(c.Logger)
	n, err := ix.RunOnce(ctx, targets)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Indexed %d of %d nodes", n, len(targets)))
	if n < len(targets) {
		printWarning("%d nodes could not be indexed", len(targets)-n)
	}
	return nil
}

// indexTargets returns one target per argument, or the configured hosts
// when there are no arguments.
func indexTargets(args []string, hosts []config.HostConfig) []indexer.Target {
	if len(args) > 0 {
		targets := make([]indexer.Target, len(args))
		for i, a := range args {
			targets[i] = indexer.Target{Address: a}
		}
		return targets
	}

	targets := make([]indexer.Target, len(hosts))
	for i, h := range hosts {
		targets[i] = indexer.Target{
			Address:    h.Address,
			Name:       h.Name,
			RemoteNode: h.RemoteNode,
			Prefix:     h.Prefix,
		}
	}
	return targets
}
