package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/muninboard/pkg/cache"
	"github.com/matzehuels/muninboard/pkg/dashboard"
	"github.com/matzehuels/muninboard/pkg/directory"
	"github.com/matzehuels/muninboard/pkg/errors"
	"github.com/matzehuels/muninboard/pkg/munin"
	"github.com/matzehuels/muninboard/pkg/observability"
)

// Runner builds dashboards against a cached directory.
//
// The Runner holds no per-request state. Multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Directory *directory.Cached
	Settings  dashboard.Settings
	Logger    *log.Logger

	assembler *dashboard.Assembler
}

// NewRunner creates a runner reading from dir.
// If cache is nil, caching is disabled. If keyer is nil, a DefaultKeyer is used.
func NewRunner(dir directory.Directory, c cache.Cache, keyer cache.Keyer, settings dashboard.Settings, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	cached := directory.NewCached(dir, c, keyer)
	return &Runner{
		Directory: cached,
		Settings:  settings,
		Logger:    logger,
		assembler: dashboard.NewAssembler(cached, settings),
	}
}

// Execute validates opts and builds the dashboard.
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.Node)
	mode := dashboard.ModeNoNode
	defer func() {
		graphs := 0
		if result != nil {
			graphs = result.Stats.Graphs
		}
		hooks.OnBuildComplete(ctx, opts.Node, mode.String(), graphs, time.Since(start), err)
	}()

	if opts.Refresh && opts.Node != "" {
		if err := r.Directory.Invalidate(ctx, opts.Node); err != nil {
			r.Logger.Warn("cache invalidation failed", "node", opts.Node, "error", err)
		}
	}

	doc, mode, err := r.assembler.Build(ctx, opts.Request())
	if err != nil {
		r.Logger.Error("dashboard build failed", "node", opts.Node, "error", err)
		return nil, err
	}

	result = &Result{Dashboard: doc, Mode: mode, Stats: collectStats(doc)}
	result.Stats.Duration = time.Since(start)

	r.Logger.Info("built dashboard",
		"node", opts.Node,
		"mode", mode,
		"rows", result.Stats.Rows,
		"graphs", result.Stats.Graphs,
		"duration", result.Stats.Duration)

	return result, nil
}

// Nodes lists the indexed nodes matching the glob pattern.
func (r *Runner) Nodes(ctx context.Context, pattern string) ([]munin.NodeRef, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if err := errors.ValidatePattern(pattern); err != nil {
		return nil, err
	}
	nodes, err := r.Directory.ListNodes(ctx, pattern)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDirectoryUnavailable, err, "list nodes %s", pattern)
	}
	r.Logger.Debug("listed nodes", "pattern", pattern, "count", len(nodes))
	return nodes, nil
}
