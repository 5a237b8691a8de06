package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Target is a Graphite target expression: alias(<path>, '<label>') where the
// path may be wrapped in derivative() or perSecond().
type Target string

// NewTarget builds the expression for one datasource at the given metric path.
// A label containing a single quote is written in double quotes, since
// Graphite has no escape sequences in string literals; double quotes are
// then dropped from the label.
func NewTarget(path string, c CounterType, label string) Target {
	if strings.Contains(label, "'") {
		label = strings.ReplaceAll(label, `"`, "")
		return Target(fmt.Sprintf(`alias(%s, "%s")`, c.Wrap(path), label))
	}
	return Target(fmt.Sprintf("alias(%s, '%s')", c.Wrap(path), label))
}

// MarshalJSON encodes the target as the {"target": ...} object Grafana's
// graphite panel expects.
func (t Target) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Target string `json:"target"`
	}{string(t)})
}

// UnmarshalJSON reads the {"target": ...} form.
func (t *Target) UnmarshalJSON(data []byte) error {
	var v struct {
		Target string `json:"target"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Target(v.Target)
	return nil
}

// MetricPath names one Graphite series of a munin node.
type MetricPath struct {
	Prefix     string
	NodeKey    string
	Category   string
	Multigraph string
	Plugin     string
	Datasource string
}

// String joins the path as prefix.node.category.[multigraph.]plugin.datasource.
// An empty prefix is left out.
func (p MetricPath) String() string {
	parts := make([]string, 0, 6)
	if p.Prefix != "" {
		parts = append(parts, p.Prefix)
	}
	parts = append(parts, p.NodeKey, p.Category)
	if p.Multigraph != "" {
		parts = append(parts, p.Multigraph)
	}
	parts = append(parts, p.Plugin, p.Datasource)
	return strings.Join(parts, ".")
}
