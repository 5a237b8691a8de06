// Package cli implements the muninboard command-line interface.
//
// The commands build Grafana dashboards from the munin plugin metadata held
// in a document index, serve them over HTTP, and keep the index up to date
// by polling munin nodes. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - serve: Run the dashboard HTTP API
//   - render: Print the dashboard of one node (or the node listing) as JSON
//   - nodes: List indexed nodes, optionally picking one interactively
//   - index: Poll munin nodes and store their plugin metadata
//   - cache: Manage the directory lookup cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs directory, cache and HTTP events. Without it, the level and format
// come from the [log] section of the configuration.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/muninboard/pkg/config"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// configureLogger applies the configured level and format. verbose forces
// the debug level.
func configureLogger(l *log.Logger, cfg config.LogConfig, verbose bool) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(log.JSONFormatter)
	} else {
		l.SetFormatter(log.TextFormatter)
	}
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Indexed 12 nodes (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
