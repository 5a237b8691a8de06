package dashboard

import (
	"strconv"
	"strings"
)

// Style defaults.
const (
	DefaultLineWidth = 2
	DefaultAreaFill  = 1
	// FallbackAreaFill is used for an AREA draw style without a numeric suffix.
	FallbackAreaFill = 4
	DefaultYFormat   = "short"
)

// CounterType is the munin datasource type, deciding how the raw series is
// transformed before display.
type CounterType int

const (
	Gauge CounterType = iota
	Derive
	Counter
	Other
)

// ParseCounterType maps the "type" field of a datasource. An absent type is
// GAUGE, as in munin; unrecognised types (ABSOLUTE, typos) are Other.
func ParseCounterType(s string, present bool) CounterType {
	if !present {
		return Gauge
	}
	switch s {
	case "GAUGE":
		return Gauge
	case "DERIVE":
		return Derive
	case "COUNTER":
		return Counter
	default:
		return Other
	}
}

// Wrap applies the counter transform to a metric path.
func (c CounterType) Wrap(path string) string {
	switch c {
	case Derive:
		return "derivative(" + path + ")"
	case Counter:
		return "perSecond(" + path + ")"
	default:
		return path
	}
}

func (c CounterType) String() string {
	switch c {
	case Gauge:
		return "GAUGE"
	case Derive:
		return "DERIVE"
	case Counter:
		return "COUNTER"
	default:
		return "OTHER"
	}
}

// DrawKind is the closed set of munin draw styles the dashboard understands.
type DrawKind int

const (
	DrawUnknown DrawKind = iota
	DrawLine
	DrawArea
	DrawAreaStack
	DrawStack
)

// DrawStyle is a parsed "draw" field. Size is the numeric suffix of LINE<N>
// and AREA<N>; HasSize is false when the suffix is missing or not a number.
type DrawStyle struct {
	Kind    DrawKind
	Size    int
	HasSize bool
}

// ParseDrawStyle parses a draw field by its literal prefix. AREASTACK is
// checked before AREA so that it is never read as an area with suffix
// "STACK".
func ParseDrawStyle(s string) DrawStyle {
	switch {
	case strings.HasPrefix(s, "AREASTACK"):
		return DrawStyle{Kind: DrawAreaStack}
	case strings.HasPrefix(s, "STACK"):
		return DrawStyle{Kind: DrawStack}
	case strings.HasPrefix(s, "LINE"):
		return withSize(DrawLine, s[len("LINE"):])
	case strings.HasPrefix(s, "AREA"):
		return withSize(DrawArea, s[len("AREA"):])
	default:
		return DrawStyle{Kind: DrawUnknown}
	}
}

func withSize(kind DrawKind, suffix string) DrawStyle {
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return DrawStyle{Kind: kind}
	}
	return DrawStyle{Kind: kind, Size: n, HasSize: true}
}

// Stacked reports whether the style stacks the series on the previous one.
func (d DrawStyle) Stacked() bool {
	return d.Kind == DrawAreaStack || d.Kind == DrawStack
}

// GraphStyle is the plugin-level style resolved from its datasources.
type GraphStyle struct {
	Stacked   bool
	LineWidth int
	AreaFill  int
	Colors    map[string]string
}

// ResolveStyle folds the draw and colour fields of the datasources, in
// discovery order, into one graph style. An AREA style only sets the fill
// while no stacking datasource has been seen yet.
func ResolveStyle(ds []Datasource, lineWidth int) GraphStyle {
	st := GraphStyle{
		LineWidth: lineWidth,
		AreaFill:  DefaultAreaFill,
		Colors:    map[string]string{},
	}
	for _, d := range ds {
		switch d.Draw.Kind {
		case DrawAreaStack, DrawStack:
			st.Stacked = true
		case DrawLine:
			if d.Draw.HasSize {
				st.LineWidth = d.Draw.Size
			}
		case DrawArea:
			if st.Stacked {
				break
			}
			if d.Draw.HasSize {
				st.AreaFill = d.Draw.Size
			} else {
				st.AreaFill = FallbackAreaFill
			}
		}
		if d.Colour != "" {
			st.Colors[d.Label] = "#" + d.Colour
		}
	}
	return st
}

// YAxisFormat picks the primary y-axis unit from the vertical label and the
// plugin info text. "bytes" wins over "bits".
func YAxisFormat(vlabel, info string) string {
	text := strings.ToLower(vlabel + " " + info)
	switch {
	case strings.Contains(text, "bytes"):
		return "bytes"
	case strings.Contains(text, "bits"):
		return "bits"
	default:
		return DefaultYFormat
	}
}

// TemplateVLabel substitutes ${graph_period} in the vertical label.
func TemplateVLabel(vlabel, period string) string {
	return strings.ReplaceAll(vlabel, "${graph_period}", period)
}
