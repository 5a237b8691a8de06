// Package pipeline builds munin dashboards for the CLI and the HTTP server.
//
// A build is one directory call followed by pure transformation: the
// request is validated, the node is looked up (or all nodes are listed when
// no node is given), and the dashboard is assembled. Keeping this in one
// place makes every entry point behave the same way.
//
// # Usage
//
//	runner := pipeline.NewRunner(dir, cache, nil, settings, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Node: "db1", Timespan: "1d"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	json.NewEncoder(os.Stdout).Encode(result.Dashboard)
package pipeline

import (
	"time"

	"github.com/matzehuels/muninboard/pkg/dashboard"
	"github.com/matzehuels/muninboard/pkg/directory"
	"github.com/matzehuels/muninboard/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTimespan is the dashboard time range when none is requested.
	DefaultTimespan = dashboard.DefaultTimespan

	// DefaultLineWidth is the graph line width when none is requested.
	DefaultLineWidth = dashboard.DefaultLineWidth

	// DefaultPattern lists every node.
	DefaultPattern = directory.AllNodes
)

// =============================================================================
// Options
// =============================================================================

// Options select the dashboard to build.
// This struct supports JSON serialization for API requests.
type Options struct {
	Node      string `json:"node,omitempty"`
	Key       string `json:"key,omitempty"`
	Timespan  string `json:"from,omitempty"`
	LineWidth int    `json:"line,omitempty"`

	// Refresh drops the cached record of the node before the lookup.
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the request and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateNodeName(o.Node); err != nil {
		return err
	}
	if err := errors.ValidateNodeName(o.Key); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid key")
	}
	if o.Timespan == "" {
		o.Timespan = DefaultTimespan
	}
	if err := errors.ValidateTimespan(o.Timespan); err != nil {
		return err
	}
	if o.LineWidth == 0 {
		o.LineWidth = DefaultLineWidth
	}
	if o.LineWidth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "line width must be positive, got %d", o.LineWidth)
	}
	o.validated = true
	return nil
}

// Request converts the options into an assembler request.
func (o Options) Request() dashboard.Request {
	return dashboard.Request{
		Node:      o.Node,
		Key:       o.Key,
		Timespan:  o.Timespan,
		LineWidth: o.LineWidth,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a build.
type Result struct {
	// Dashboard is the assembled Grafana dashboard.
	Dashboard *dashboard.Document

	// Mode is the kind of dashboard that was built.
	Mode dashboard.Mode

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains build statistics.
type Stats struct {
	Rows     int
	Graphs   int
	Duration time.Duration
}

func collectStats(doc *dashboard.Document) Stats {
	var s Stats
	s.Rows = len(doc.Rows)
	for _, row := range doc.Rows {
		for _, p := range row.Panels {
			if p.PanelType() == dashboard.PanelGraph {
				s.Graphs++
			}
		}
	}
	return s
}
