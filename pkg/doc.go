// Package pkg provides the libraries behind muninboard, which turns the
// plugin metadata of munin nodes into Grafana dashboards.
//
// # Overview
//
// A document index holds one record per munin node with the configuration
// of every plugin. muninboard looks a node up, normalizes the metadata and
// renders one graph per plugin whose Graphite targets follow munin's metric
// naming. The pkg directory is organized as:
//
//  1. [munin] - Plugin metadata model and the munin-node protocol client
//  2. [directory] - Index backends (Elasticsearch, MongoDB, JSON file) and caching
//  3. [dashboard] - Normalization, styling, ordering and dashboard assembly
//  4. [pipeline] - Request validation and orchestration
//  5. [indexer] - Polling munin nodes into the index
//
// # Architecture
//
// The data flow of one dashboard request:
//
//	Request (node, key, time span, line width)
//	         ↓
//	    [directory] lookup (cached)
//	         ↓
//	    [dashboard] normalize → sort → style → order targets
//	         ↓
//	    Grafana dashboard JSON
//
// The index is filled by [indexer], which speaks the munin-node protocol
// through [munin/node] and writes records back through [directory].
//
// # Supporting Packages
//
//   - [cache]: Byte caches (file, Redis, null) for directory lookups
//   - [config]: TOML configuration with environment overrides
//   - [errors]: Coded errors shared by the CLI and the HTTP API
//   - [httputil]: Retry policy and status checks for HTTP backends
//   - [observability]: Hooks for logging and metrics
//
// [munin]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/munin
// [munin/node]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/munin/node
// [directory]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/directory
// [dashboard]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/dashboard
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/pipeline
// [indexer]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/indexer
// [cache]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/muninboard/pkg/observability
package pkg
