package dashboard

import (
	"strings"

	"github.com/matzehuels/muninboard/pkg/munin"
)

// Directive defaults.
const (
	DefaultCategory = "misc"
	DefaultPeriod   = "second"
)

// NormalizedPlugin is one graph of a node with every optional directive
// resolved. Multigraph children are flattened into their own plugins and
// remember their parent in MultigraphPath.
type NormalizedPlugin struct {
	Name     string
	Category string
	Title    string
	Info     string
	Args     string
	VLabel   string
	Period   string
	// Order holds the graph_order tokens; nil when the directive is absent.
	Order          []string
	Datasources    []Datasource
	MultigraphPath string
}

// Datasource is one series of a plugin.
type Datasource struct {
	Name    string
	Label   string
	Counter CounterType
	Draw    DrawStyle
	// Colour is the hex colour without '#', empty when unset.
	Colour string
	Info   string
}

// Normalize flattens the plugin documents of a node into a list of graphs in
// discovery order.
//
// A multigraph child becomes a plugin only when it carries a non-empty
// graph_title; other children are wrappers and are dropped. The plugin's own
// section of a multigraph plugin is kept under the plugin name when it is
// titled.
func Normalize(plugins []munin.PluginDocument) []NormalizedPlugin {
	var out []NormalizedPlugin
	for _, doc := range plugins {
		switch p := doc.Classify().(type) {
		case munin.Simple:
			out = append(out, normalizeSection(p.Section, p.Name, ""))
		case munin.Multigraph:
			if p.Root != nil && titled(p.Root.Directives) {
				out = append(out, normalizeSection(*p.Root, p.Name, ""))
			}
			for _, child := range p.Children {
				if !titled(child.Directives) {
					continue
				}
				out = append(out, normalizeSection(child, child.Name, p.Name))
			}
		}
	}
	return out
}

func titled(d munin.Directives) bool {
	title, ok := d.Text("graph_title")
	return ok && strings.TrimSpace(title) != ""
}

func normalizeSection(s munin.Section, name, parent string) NormalizedPlugin {
	d := s.Directives
	p := NormalizedPlugin{
		Name:           name,
		Category:       nonEmpty(d.TextOr("graph_category", ""), DefaultCategory),
		Title:          nonEmpty(d.TextOr("graph_title", ""), name),
		Info:           d.TextOr("graph_info", ""),
		Args:           d.TextOr("graph_args", ""),
		VLabel:         d.TextOr("graph_vlabel", ""),
		Period:         nonEmpty(d.TextOr("graph_period", ""), DefaultPeriod),
		MultigraphPath: parent,
	}
	if order, ok := d.Text("graph_order"); ok {
		p.Order = strings.Fields(order)
	}
	p.Datasources = datasources(d)
	return p
}

// datasources collects every non-graph_ directive holding a field set.
func datasources(d munin.Directives) []Datasource {
	var out []Datasource
	for _, dir := range d {
		if strings.HasPrefix(dir.Name, "graph_") {
			continue
		}
		fields, ok := dir.Value.AsFields()
		if !ok {
			continue
		}
		typ, hasType := fields.Text("type")
		draw, _ := fields.Text("draw")
		out = append(out, Datasource{
			Name:    dir.Name,
			Label:   nonEmpty(fields.TextOr("label", ""), dir.Name),
			Counter: ParseCounterType(typ, hasType),
			Draw:    ParseDrawStyle(draw),
			Colour:  strings.TrimPrefix(fields.TextOr("colour", ""), "#"),
			Info:    fields.TextOr("info", ""),
		})
	}
	return out
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
