// Package dashboard turns the munin plugin metadata of a node into a Grafana
// dashboard whose panels query Graphite.
//
// # Pipeline
//
// A request goes through a fixed sequence of pure stages after one directory
// call:
//
//  1. [Normalize] flattens multigraph plugins into one [NormalizedPlugin] per
//     graph, resolving directive defaults.
//  2. [SortPlugins] orders the graphs by category and name.
//  3. For every graph, [ResolveStyle] folds the datasource draw styles and
//     colours, [ParseLimits] reads the y-axis limits from graph_args and
//     [OrderTargets] produces the Graphite targets in graph_order.
//  4. [Assembler] lays the graphs out as rows, inserting a header row
//     whenever the category changes.
//
// # Metric paths
//
// Each datasource maps to the Graphite series
//
//	<prefix>.<node key>.<category>.[<multigraph parent>.]<plugin>.<datasource>
//
// wrapped in derivative() for DERIVE and perSecond() for COUNTER datasources,
// and aliased to the datasource label:
//
//	alias(perSecond(servers.db1.network.if_eth0.down), 'received')
//
// # Modes
//
// [Assembler.Build] produces one of three dashboards: the plugin rows of a
// known node ([ModeFound]), a single "not found" row ([ModeNotFound]), or a
// listing of every indexed node when no node is requested ([ModeNoNode]).
package dashboard
