package munin

import "strings"

// NodeRecord is one directory hit: the metadata of every plugin of a munin
// node together with the naming used for its metric paths.
type NodeRecord struct {
	Host    string    `json:"host"`
	Key     string    `json:"key,omitempty"`
	Prefix  string    `json:"prefix,omitempty"`
	Plugins PluginSet `json:"plugins"`
}

// NodeKey returns the key the node's metrics are stored under: Key when set,
// otherwise the first DNS label of Host.
func (r NodeRecord) NodeKey() string {
	if r.Key != "" {
		return r.Key
	}
	return ShortName(r.Host)
}

// Ref returns the listing entry for the record.
func (r NodeRecord) Ref() NodeRef {
	return NodeRef{Host: r.Host, Key: r.NodeKey()}
}

// NodeRef is one entry of a node listing.
type NodeRef struct {
	Host string `json:"host"`
	Key  string `json:"key"`
}

// PluginSet is the ordered collection of plugin documents of a node.
type PluginSet []PluginDocument

// Lookup returns the plugin document with the given name.
func (ps PluginSet) Lookup(name string) (PluginDocument, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return PluginDocument{}, false
}

// ShortName returns the first DNS label of host.
func ShortName(host string) string {
	name, _, _ := strings.Cut(host, ".")
	return name
}
