// Package directory looks up munin node metadata in a document index.
//
// Backends:
//   - [Elasticsearch] queries an Elasticsearch index over its REST API
//   - [Mongo] queries a MongoDB collection
//   - [Static] holds records in memory, optionally persisted to a JSON file
//
// [Cached] wraps any [Directory] with a byte cache.
package directory

import (
	"context"
	"errors"

	"github.com/matzehuels/muninboard/pkg/munin"
)

// Directory resolves munin nodes to the plugin metadata stored in an index.
type Directory interface {
	// FindPlugins returns the record of the node matching host, or nil and
	// no error when the index has no such node.
	FindPlugins(ctx context.Context, host string) (*munin.NodeRecord, error)

	// ListNodes returns the indexed nodes whose host matches the glob
	// pattern ('*' and '?'), ordered by host.
	ListNodes(ctx context.Context, pattern string) ([]munin.NodeRef, error)
}

// Indexer stores node records in a directory.
type Indexer interface {
	// IndexNode creates or replaces the record stored under rec.NodeKey().
	IndexNode(ctx context.Context, rec munin.NodeRecord) error
}

// Backend is a directory that can also be written to and must be closed.
type Backend interface {
	Directory
	Indexer
	Close(ctx context.Context) error
}

var (
	// ErrNetwork is returned when the index could not be reached or
	// answered with a server error.
	ErrNetwork = errors.New("network error")

	// ErrUnexpectedStatus is returned for client error responses from the index.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrReadOnly is returned by IndexNode on backends that cannot be written.
	ErrReadOnly = errors.New("directory is read-only")
)
