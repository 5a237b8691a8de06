// Package indexer polls munin nodes and publishes their plugin metadata to
// a directory.
//
// Each round connects to every configured node, lists its plugins, fetches
// the config of each plugin and stores the result as one
// [munin.NodeRecord]. Nodes are polled concurrently up to a limit; a node
// that fails is logged and skipped until the next round.
package indexer

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/muninboard/pkg/directory"
	"github.com/matzehuels/muninboard/pkg/munin"
	"github.com/matzehuels/muninboard/pkg/munin/node"
	"github.com/matzehuels/muninboard/pkg/observability"
)

// Defaults for Indexer fields left zero.
const (
	DefaultConcurrency = 4
	DefaultInterval    = 5 * time.Minute
)

// Target is one munin node to poll.
type Target struct {
	// Address is "host" or "host:port" of the munin-node to connect to.
	Address string
	// Name overrides the host name stored in the directory.
	Name string
	// RemoteNode asks a munin-node proxy for the plugins of another node.
	RemoteNode string
	// Prefix overrides the indexer-wide metric prefix for this node.
	Prefix string
}

// session is the part of a munin-node client used for polling.
type session interface {
	NodeName() string
	Capabilities(ctx context.Context) ([]string, error)
	List(ctx context.Context, node string) ([]string, error)
	Config(ctx context.Context, plugin string) (munin.PluginDocument, error)
	Close() error
}

// dialFunc opens a session with the munin-node at addr.
type dialFunc func(ctx context.Context, addr string, timeout time.Duration) (session, error)

// Indexer polls targets and stores their records in Sink.
type Indexer struct {
	Sink        directory.Indexer
	Prefix      string
	Port        int
	Concurrency int
	Timeout     time.Duration
	Filter      *regexp.Regexp
	Logger      *log.Logger

	dial dialFunc
}

// New creates an indexer publishing to sink. filter, when not empty, is a
// case-insensitive regular expression selecting the plugins to index.
func New(sink directory.Indexer, filter string, logger *log.Logger) (*Indexer, error) {
	if logger == nil {
		logger = log.Default()
	}
	ix := &Indexer{
		Sink:        sink,
		Port:        node.DefaultPort,
		Concurrency: DefaultConcurrency,
		Timeout:     node.DefaultTimeout,
		Logger:      logger,
	}
	if filter != "" {
		re, err := regexp.Compile("(?i)" + filter)
		if err != nil {
			return nil, fmt.Errorf("invalid plugin filter %q: %w", filter, err)
		}
		ix.Filter = re
	}
	return ix, nil
}

// Run polls all targets every interval until ctx is cancelled, which is not
// reported as an error.
func (ix *Indexer) Run(ctx context.Context, targets []Target, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		indexed, err := ix.RunOnce(ctx, targets)
		if err != nil {
			// cancelled
			return nil
		}
		ix.Logger.Info("index round complete", "nodes", indexed, "targets", len(targets))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce polls every target once and returns the number of nodes indexed.
// Failing targets are logged and skipped. The only error returned is the
// cancellation of ctx.
func (ix *Indexer) RunOnce(ctx context.Context, targets []Target) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(ix.Concurrency, 1))

	results := make([]bool, len(targets))
	for i, t := range targets {
		g.Go(func() error {
			rec, err := ix.Collect(gctx, t)
			if err == nil {
				err = ix.Sink.IndexNode(gctx, rec)
			}
			if err != nil {
				ix.Logger.Warn("skipping node", "address", t.Address, "error", err)
				return nil
			}
			ix.Logger.Debug("indexed node", "host", rec.Host, "plugins", len(rec.Plugins))
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n := 0
	for _, ok := range results {
		if ok {
			n++
		}
	}
	return n, nil
}

// Collect polls one target and returns its record without storing it.
func (ix *Indexer) Collect(ctx context.Context, t Target) (rec munin.NodeRecord, err error) {
	start := time.Now()
	defer func() {
		observability.Indexer().OnPollComplete(ctx, t.Address, len(rec.Plugins), time.Since(start), err)
	}()

	dial := ix.dial
	if dial == nil {
		dial = dialNode
	}
	s, err := dial(ctx, ix.address(t.Address), ix.Timeout)
	if err != nil {
		return munin.NodeRecord{}, err
	}
	defer s.Close()

	if _, err := s.Capabilities(ctx); err != nil {
		return munin.NodeRecord{}, err
	}
	plugins, err := s.List(ctx, t.RemoteNode)
	if err != nil {
		return munin.NodeRecord{}, err
	}

	rec = munin.NodeRecord{Host: ix.hostName(t, s), Prefix: ix.Prefix}
	if t.Prefix != "" {
		rec.Prefix = t.Prefix
	}
	rec.Key = munin.ShortName(rec.Host)

	for _, name := range plugins {
		if ix.Filter != nil && !ix.Filter.MatchString(name) {
			continue
		}
		doc, err := s.Config(ctx, name)
		if err != nil {
			return munin.NodeRecord{}, fmt.Errorf("config %s: %w", name, err)
		}
		rec.Plugins = append(rec.Plugins, doc)
	}
	return rec, nil
}

func (ix *Indexer) address(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	port := ix.Port
	if port == 0 {
		port = node.DefaultPort
	}
	return net.JoinHostPort(addr, strconv.Itoa(port))
}

// hostName picks the configured name, then the remote node, then the name
// from the banner, then the address.
func (ix *Indexer) hostName(t Target, s session) string {
	switch {
	case t.Name != "":
		return t.Name
	case t.RemoteNode != "":
		return t.RemoteNode
	case s.NodeName() != "":
		return s.NodeName()
	}
	if host, _, err := net.SplitHostPort(t.Address); err == nil {
		return host
	}
	return t.Address
}

func dialNode(ctx context.Context, addr string, timeout time.Duration) (session, error) {
	c, err := node.Dial(ctx, addr, timeout)
	if err != nil {
		return nil, err
	}
	return c, nil
}
