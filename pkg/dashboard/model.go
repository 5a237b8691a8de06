package dashboard

// Document is a Grafana dashboard in the row-based JSON schema.
type Document struct {
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Timezone string   `json:"timezone"`
	Editable bool     `json:"editable"`
	Refresh  string   `json:"refresh"`
	Style    string   `json:"style"`
	Services Services `json:"services"`
	Rows     []Row    `json:"rows"`
}

type Services struct {
	Filter Filter `json:"filter"`
}

type Filter struct {
	Time TimeRange `json:"time"`
}

type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Row is one dashboard row.
type Row struct {
	Title  string  `json:"title"`
	Height string  `json:"height"`
	Panels []Panel `json:"panels"`
}

// Panel is a TextPanel or a GraphPanel.
type Panel interface {
	PanelType() string
}

// Panel types.
const (
	PanelText  = "text"
	PanelGraph = "graphite"
)

// FullSpan is the width of a row in grid units.
const FullSpan = 12

// TextPanel shows markdown text.
type TextPanel struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Mode    string `json:"mode"`
	Span    int    `json:"span"`
	Content string `json:"content"`
}

func (TextPanel) PanelType() string { return PanelText }

// NewTextPanel returns a markdown text panel.
func NewTextPanel(title string, span int, content string) TextPanel {
	return TextPanel{Title: title, Type: PanelText, Mode: "markdown", Span: span, Content: content}
}

// GraphPanel draws the targets of one plugin.
type GraphPanel struct {
	Title       string            `json:"title"`
	Type        string            `json:"type"`
	Span        int               `json:"span"`
	Lines       bool              `json:"lines"`
	Fill        int               `json:"fill"`
	LineWidth   int               `json:"linewidth"`
	Points      bool              `json:"points"`
	PointRadius int               `json:"pointradius"`
	Bars        bool              `json:"bars"`
	Stack       bool              `json:"stack"`
	YAxisLabel  string            `json:"yAxisLabel"`
	YFormats    [2]string         `json:"y_formats"`
	Legend      Legend            `json:"legend"`
	Tooltip     Tooltip           `json:"tooltip"`
	Grid        Grid              `json:"grid"`
	Percentage  bool              `json:"percentage"`
	AliasColors map[string]string `json:"aliasColors"`
	Targets     []Target          `json:"targets"`
}

func (GraphPanel) PanelType() string { return PanelGraph }

type Legend struct {
	Show    bool `json:"show"`
	Values  bool `json:"values"`
	Min     bool `json:"min"`
	Max     bool `json:"max"`
	Current bool `json:"current"`
	Total   bool `json:"total"`
	Avg     bool `json:"avg"`
}

type Tooltip struct {
	ValueType    string `json:"value_type"`
	QueryAsAlias bool   `json:"query_as_alias"`
}

// Grid carries the y-axis limits. Nil bounds encode as null.
type Grid struct {
	Max             *int     `json:"max"`
	Min             *int     `json:"min"`
	Threshold1      *float64 `json:"threshold1"`
	Threshold2      *float64 `json:"threshold2"`
	Threshold1Color string   `json:"threshold1Color"`
	Threshold2Color string   `json:"threshold2Color"`
}
