package dashboard

import "testing"

func TestParseCounterType(t *testing.T) {
	tests := []struct {
		in      string
		present bool
		want    CounterType
	}{
		{"", false, Gauge},
		{"GAUGE", true, Gauge},
		{"DERIVE", true, Derive},
		{"COUNTER", true, Counter},
		{"ABSOLUTE", true, Other},
		{"derive", true, Other},
	}

	for _, tt := range tests {
		if got := ParseCounterType(tt.in, tt.present); got != tt.want {
			t.Errorf("ParseCounterType(%q, %v) = %v, want %v", tt.in, tt.present, got, tt.want)
		}
	}
}

func TestCounterWrap(t *testing.T) {
	tests := []struct {
		c    CounterType
		want string
	}{
		{Gauge, "a.b"},
		{Derive, "derivative(a.b)"},
		{Counter, "perSecond(a.b)"},
		{Other, "a.b"},
	}

	for _, tt := range tests {
		if got := tt.c.Wrap("a.b"); got != tt.want {
			t.Errorf("%v.Wrap(a.b) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestParseDrawStyle(t *testing.T) {
	tests := []struct {
		in   string
		want DrawStyle
	}{
		{"", DrawStyle{Kind: DrawUnknown}},
		{"LINE", DrawStyle{Kind: DrawLine}},
		{"LINE1", DrawStyle{Kind: DrawLine, Size: 1, HasSize: true}},
		{"LINE3", DrawStyle{Kind: DrawLine, Size: 3, HasSize: true}},
		{"LINEx", DrawStyle{Kind: DrawLine}},
		{"LINESTACK1", DrawStyle{Kind: DrawLine}},
		{"AREA", DrawStyle{Kind: DrawArea}},
		{"AREA2", DrawStyle{Kind: DrawArea, Size: 2, HasSize: true}},
		{"AREASTACK", DrawStyle{Kind: DrawAreaStack}},
		{"STACK", DrawStyle{Kind: DrawStack}},
		{"HRULE", DrawStyle{Kind: DrawUnknown}},
		{"line2", DrawStyle{Kind: DrawUnknown}},
	}

	for _, tt := range tests {
		if got := ParseDrawStyle(tt.in); got != tt.want {
			t.Errorf("ParseDrawStyle(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func ds(name, draw, colour string) Datasource {
	return Datasource{Name: name, Label: name, Draw: ParseDrawStyle(draw), Colour: colour}
}

func TestResolveStyle(t *testing.T) {
	tests := []struct {
		name     string
		ds       []Datasource
		stacked  bool
		width    int
		fill     int
		colorKey string
		color    string
	}{
		{"defaults", []Datasource{ds("a", "", "")}, false, DefaultLineWidth, DefaultAreaFill, "", ""},
		{"line width", []Datasource{ds("a", "LINE3", "")}, false, 3, DefaultAreaFill, "", ""},
		{"non numeric line keeps default", []Datasource{ds("a", "LINEx", "")}, false, DefaultLineWidth, DefaultAreaFill, "", ""},
		{"area fill", []Datasource{ds("a", "AREA5", "")}, false, DefaultLineWidth, 5, "", ""},
		{"area without size", []Datasource{ds("a", "AREA", "")}, false, DefaultLineWidth, FallbackAreaFill, "", ""},
		{"stack", []Datasource{ds("a", "AREA", ""), ds("b", "STACK", "")}, true, DefaultLineWidth, FallbackAreaFill, "", ""},
		{"area after stack ignored", []Datasource{ds("a", "AREASTACK", ""), ds("b", "AREA7", "")}, true, DefaultLineWidth, DefaultAreaFill, "", ""},
		{"colour", []Datasource{ds("a", "", "ff0000")}, false, DefaultLineWidth, DefaultAreaFill, "a", "#ff0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStyle(tt.ds, DefaultLineWidth)
			if got.Stacked != tt.stacked {
				t.Errorf("Stacked = %v, want %v", got.Stacked, tt.stacked)
			}
			if got.LineWidth != tt.width {
				t.Errorf("LineWidth = %d, want %d", got.LineWidth, tt.width)
			}
			if got.AreaFill != tt.fill {
				t.Errorf("AreaFill = %d, want %d", got.AreaFill, tt.fill)
			}
			if tt.colorKey == "" {
				if len(got.Colors) != 0 {
					t.Errorf("Colors = %v, want empty", got.Colors)
				}
			} else if got.Colors[tt.colorKey] != tt.color {
				t.Errorf("Colors[%q] = %q, want %q", tt.colorKey, got.Colors[tt.colorKey], tt.color)
			}
		})
	}
}

func TestResolveStyleColourKeyedByLabel(t *testing.T) {
	d := Datasource{Name: "down", Label: "received", Colour: "00ff00"}
	got := ResolveStyle([]Datasource{d}, 1)
	if got.Colors["received"] != "#00ff00" {
		t.Errorf("Colors = %v, want received -> #00ff00", got.Colors)
	}
	if got.LineWidth != 1 {
		t.Errorf("LineWidth = %d, want request default 1", got.LineWidth)
	}
}

func TestYAxisFormat(t *testing.T) {
	tests := []struct {
		vlabel, info, want string
	}{
		{"", "", "short"},
		{"load", "", "short"},
		{"Bytes per ${graph_period}", "", "bytes"},
		{"bits in (-) / out (+)", "", "bits"},
		{"", "Traffic in BITS", "bits"},
		{"bits", "counts bytes", "bytes"},
	}

	for _, tt := range tests {
		if got := YAxisFormat(tt.vlabel, tt.info); got != tt.want {
			t.Errorf("YAxisFormat(%q, %q) = %q, want %q", tt.vlabel, tt.info, got, tt.want)
		}
	}
}

func TestTemplateVLabel(t *testing.T) {
	tests := []struct {
		vlabel, period, want string
	}{
		{"packets per ${graph_period}", "second", "packets per second"},
		{"${graph_period} / ${graph_period}", "minute", "minute / minute"},
		{"load", "second", "load"},
	}

	for _, tt := range tests {
		if got := TemplateVLabel(tt.vlabel, tt.period); got != tt.want {
			t.Errorf("TemplateVLabel(%q, %q) = %q, want %q", tt.vlabel, tt.period, got, tt.want)
		}
	}
}
