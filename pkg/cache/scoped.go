package cache

// ScopedKeyer wraps a Keyer with a prefix so that several directories can
// share one cache without colliding, e.g. two Elasticsearch indices behind
// the same Redis.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "es:munin-node:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// NodeKey generates a prefixed node record key.
func (k *ScopedKeyer) NodeKey(host string) string {
	return k.prefix + k.inner.NodeKey(host)
}

// ListKey generates a prefixed node listing key.
func (k *ScopedKeyer) ListKey(pattern string) string {
	return k.prefix + k.inner.ListKey(pattern)
}
