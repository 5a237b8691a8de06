// Package munin models munin plugin metadata as it is stored in the node
// directory.
//
// A munin node answers "config <plugin>" with a list of directives. Plain
// directives carry text (graph_title, graph_category, ...); dotted directives
// such as "load.label" group into a field set per datasource. Multigraph
// plugins emit several sections, each introduced by "multigraph <name>".
//
// The package keeps both levels ordered: [Directives] is a list, not a map,
// and JSON decoding goes through an ordered map so the discovery order of
// plugins, sections and datasources survives a round-trip through the index.
//
// [PluginDocument.Classify] resolves a stored document into the [Plugin]
// variant consumed by the dashboard package:
//
//	switch p := doc.Classify().(type) {
//	case munin.Simple:
//	    // p.Section holds the graph
//	case munin.Multigraph:
//	    // p.Children hold one graph each
//	}
package munin
