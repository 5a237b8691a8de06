package dashboard

import "strings"

// OrderTargets returns one target per datasource, honouring graph_order.
//
// With a non-empty order the listed datasources come first in order-list
// sequence, then the remaining ones in discovery order. At most len(ds)
// tokens are consulted; unknown and repeated names are skipped. A token of
// the form "name=source" orders by name. A nil or empty order yields
// discovery order.
func OrderTargets(order []string, ds []Datasource, target func(Datasource) Target) []Target {
	out := make([]Target, 0, len(ds))
	emitted := make(map[string]bool, len(ds))

	index := make(map[string]int, len(ds))
	for i, d := range ds {
		index[d.Name] = i
	}

	consulted := order
	if len(consulted) > len(ds) {
		consulted = consulted[:len(ds)]
	}
	for _, tok := range consulted {
		name, _, _ := strings.Cut(tok, "=")
		i, ok := index[name]
		if !ok || emitted[name] {
			continue
		}
		emitted[name] = true
		out = append(out, target(ds[i]))
	}

	for _, d := range ds {
		if emitted[d.Name] {
			continue
		}
		emitted[d.Name] = true
		out = append(out, target(d))
	}
	return out
}
