package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/muninboard/pkg/observability"
)

// debugHooks logs observability events at debug level.
type debugHooks struct {
	observability.NoopCacheHooks
	logger *log.Logger
}

func registerDebugHooks(l *log.Logger) {
	h := &debugHooks{logger: l}
	observability.SetDirectoryHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	observability.SetIndexerHooks(h)
}

func (h *debugHooks) OnLookup(_ context.Context, backend, op, target string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("directory "+op+" failed", "backend", backend, "target", target, "duration", d, "error", err)
		return
	}
	h.logger.Debug("directory "+op, "backend", backend, "target", target, "duration", d)
}

func (h *debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}

func (h *debugHooks) OnPollComplete(_ context.Context, node string, plugins int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("poll failed", "node", node, "duration", d, "error", err)
		return
	}
	h.logger.Debug("polled node", "node", node, "plugins", plugins, "duration", d)
}
