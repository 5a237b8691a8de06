package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/matzehuels/muninboard/pkg/directory"
	"github.com/matzehuels/muninboard/pkg/errors"
	"github.com/matzehuels/muninboard/pkg/munin"
)

// Mode is the kind of dashboard produced for a request. It is chosen once,
// before any row is built.
type Mode int

const (
	// ModeFound renders one row per plugin of the node.
	ModeFound Mode = iota
	// ModeNotFound renders a single row stating the node was not found.
	ModeNotFound
	// ModeNoNode renders a single row linking to every indexed node.
	ModeNoNode
)

func (m Mode) String() string {
	switch m {
	case ModeFound:
		return "found"
	case ModeNotFound:
		return "not-found"
	case ModeNoNode:
		return "no-node"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Request selects the dashboard to build.
type Request struct {
	// Node is the host to look up. Empty selects the node listing.
	Node string
	// Key overrides the node key used in metric paths.
	Key string
	// Timespan is the relative time range, e.g. "6h".
	Timespan string
	// LineWidth is the default line width of graph panels.
	LineWidth int
}

// Settings are the fixed parts of every dashboard.
type Settings struct {
	// Prefix is the metric path prefix used when the record carries none.
	Prefix string
	// LinkBase is the URL the node listing links point to.
	LinkBase string
	// Refresh is the Grafana auto-refresh interval.
	Refresh string
}

// Dashboard constants.
const (
	GeneratedTag    = "munin-auto-generated"
	DefaultRefresh  = "5m"
	DefaultTimespan = "6h"
	DefaultLinkBase = "/api/v1/dashboard"

	pluginRowHeight   = "250px"
	headerRowHeight   = "50px"
	messageRowHeight  = "300px"
	infoSpan          = 3
	graphSpan         = 9
	threshold1Color   = "rgba(216, 200, 27, 0.27)"
	threshold2Color   = "rgba(234, 112, 112, 0.22)"
	graphPointRadius  = 5
	secondaryYFormat  = "short"
	tooltipValueType  = "individual"
	listingTitle      = "Munin nodes"
	listingRowTitle   = "Available munin nodes"
	emptyListingEntry = "No munin nodes indexed."
)

// Assembler builds dashboards from directory lookups.
type Assembler struct {
	dir      directory.Directory
	settings Settings
}

// NewAssembler returns an assembler reading from dir. Zero settings fall back
// to the package defaults.
func NewAssembler(dir directory.Directory, settings Settings) *Assembler {
	if settings.Refresh == "" {
		settings.Refresh = DefaultRefresh
	}
	if settings.LinkBase == "" {
		settings.LinkBase = DefaultLinkBase
	}
	return &Assembler{dir: dir, settings: settings}
}

// Build performs the one directory call the request needs and assembles the
// dashboard. A directory failure aborts the build; a node without plugins
// is not an error and yields ModeNotFound.
func (a *Assembler) Build(ctx context.Context, req Request) (*Document, Mode, error) {
	if req.Timespan == "" {
		req.Timespan = DefaultTimespan
	}
	if req.LineWidth <= 0 {
		req.LineWidth = DefaultLineWidth
	}

	if req.Node == "" {
		nodes, err := a.dir.ListNodes(ctx, directory.AllNodes)
		if err != nil {
			return nil, ModeNoNode, errors.Wrap(errors.ErrCodeDirectoryUnavailable, err, "list nodes")
		}
		return a.Listing(req, nodes), ModeNoNode, nil
	}

	rec, err := a.dir.FindPlugins(ctx, req.Node)
	if err != nil {
		return nil, ModeFound, errors.Wrap(errors.ErrCodeDirectoryUnavailable, err, "lookup node %s", req.Node)
	}
	if rec == nil || len(rec.Plugins) == 0 {
		return a.NotFound(req), ModeNotFound, nil
	}
	return a.Found(req, *rec), ModeFound, nil
}

func (a *Assembler) document(title, timespan string) *Document {
	return &Document{
		Title:    title,
		Tags:     []string{GeneratedTag},
		Timezone: "browser",
		Editable: true,
		Refresh:  a.settings.Refresh,
		Style:    "light",
		Services: Services{Filter: Filter{Time: TimeRange{From: "now-" + timespan, To: "now"}}},
		Rows:     []Row{},
	}
}

// Listing renders the no-node dashboard: one text panel with a link per node.
func (a *Assembler) Listing(req Request, nodes []munin.NodeRef) *Document {
	doc := a.document(listingTitle, req.Timespan)

	var b strings.Builder
	if len(nodes) == 0 {
		b.WriteString(emptyListingEntry)
	}
	for _, n := range nodes {
		fmt.Fprintf(&b, "- [%s (%s)](%s)\n", n.Host, n.Key, a.nodeLink(n))
	}

	doc.Rows = append(doc.Rows, Row{
		Title:  listingRowTitle,
		Height: messageRowHeight,
		Panels: []Panel{NewTextPanel(listingTitle, FullSpan, b.String())},
	})
	return doc
}

func (a *Assembler) nodeLink(n munin.NodeRef) string {
	sep := "?"
	if strings.Contains(a.settings.LinkBase, "?") {
		sep = "&"
	}
	return a.settings.LinkBase + sep + "node=" + url.QueryEscape(n.Host) + "&key=" + url.QueryEscape(n.Key)
}

// NotFound renders the dashboard for a node the directory does not know.
func (a *Assembler) NotFound(req Request) *Document {
	msg := fmt.Sprintf("Node %s not found.", req.Node)
	doc := a.document(nodeTitle(req.Node), req.Timespan)
	doc.Rows = append(doc.Rows, Row{
		Title:  msg,
		Height: messageRowHeight,
		Panels: []Panel{NewTextPanel(fmt.Sprintf("Dashboard for %s's munin plugins", req.Node), FullSpan, msg)},
	})
	return doc
}

// Found renders one row per plugin of rec, sorted by category and name, with
// a header row before every run of plugins sharing a category.
func (a *Assembler) Found(req Request, rec munin.NodeRecord) *Document {
	doc := a.document(nodeTitle(req.Node), req.Timespan)

	nodeKey := req.Key
	if nodeKey == "" {
		nodeKey = rec.NodeKey()
	}
	prefix := rec.Prefix
	if prefix == "" {
		prefix = a.settings.Prefix
	}

	plugins := Normalize(rec.Plugins)
	SortPlugins(plugins)

	category := ""
	for i, p := range plugins {
		if i == 0 || p.Category != category {
			category = p.Category
			doc.Rows = append(doc.Rows, categoryRow(category))
		}
		doc.Rows = append(doc.Rows, pluginRow(p, prefix, nodeKey, req.LineWidth))
	}
	return doc
}

func nodeTitle(node string) string {
	return "Munin node dashboard - " + node
}

func categoryRow(category string) Row {
	return Row{
		Title:  "Category " + category,
		Height: headerRowHeight,
		Panels: []Panel{NewTextPanel("", FullSpan, "## "+category)},
	}
}

func pluginRow(p NormalizedPlugin, prefix, nodeKey string, lineWidth int) Row {
	return Row{
		Title:  "Chart for " + p.Name,
		Height: pluginRowHeight,
		Panels: []Panel{infoPanel(p), graphPanel(p, prefix, nodeKey, lineWidth)},
	}
}

func infoPanel(p NormalizedPlugin) TextPanel {
	var b strings.Builder
	fmt.Fprintf(&b, "Plugin name: %s\n", p.Name)
	fmt.Fprintf(&b, "Plugin category: %s\n", p.Category)
	fmt.Fprintf(&b, "Datasources: %d", len(p.Datasources))
	if p.Info != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Info)
	}
	return NewTextPanel("Plugin information", infoSpan, b.String())
}

func graphPanel(p NormalizedPlugin, prefix, nodeKey string, lineWidth int) GraphPanel {
	style := ResolveStyle(p.Datasources, lineWidth)
	limits := ParseLimits(p.Args, style.Stacked)

	targets := OrderTargets(p.Order, p.Datasources, func(d Datasource) Target {
		path := MetricPath{
			Prefix:     prefix,
			NodeKey:    nodeKey,
			Category:   p.Category,
			Multigraph: p.MultigraphPath,
			Plugin:     p.Name,
			Datasource: d.Name,
		}
		return NewTarget(path.String(), d.Counter, d.Label)
	})

	return GraphPanel{
		Title:       p.Title,
		Type:        PanelGraph,
		Span:        graphSpan,
		Lines:       true,
		Fill:        style.AreaFill,
		LineWidth:   style.LineWidth,
		PointRadius: graphPointRadius,
		Stack:       style.Stacked,
		YAxisLabel:  TemplateVLabel(p.VLabel, p.Period),
		YFormats:    [2]string{YAxisFormat(p.VLabel, p.Info), secondaryYFormat},
		Legend:      Legend{Show: true},
		Tooltip:     Tooltip{ValueType: tooltipValueType, QueryAsAlias: true},
		Grid: Grid{
			Max:             limits.Upper,
			Min:             limits.Lower,
			Threshold1Color: threshold1Color,
			Threshold2Color: threshold2Color,
		},
		Percentage:  limits.Percentage,
		AliasColors: style.Colors,
		Targets:     targets,
	}
}
