package cache

import (
	"strings"
	"time"
)

// Default TTLs for cached directory results.
const (
	TTLNode = 5 * time.Minute
	TTLList = time.Minute
)

// Keyer derives cache keys for directory lookups.
type Keyer interface {
	// NodeKey is the key of the plugin record of a host.
	NodeKey(host string) string

	// ListKey is the key of a node listing for a glob pattern.
	ListKey(pattern string) string
}

// DefaultKeyer builds plain, human-readable keys. Host names are
// case-insensitive and are lowercased.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// NodeKey returns "node:<host>".
func (DefaultKeyer) NodeKey(host string) string {
	return "node:" + strings.ToLower(host)
}

// ListKey returns "nodes:<pattern>".
func (DefaultKeyer) ListKey(pattern string) string {
	return "nodes:" + pattern
}
