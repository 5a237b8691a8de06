package munin

// Section is one munin config section: the plugin's own directives or one
// multigraph child announced with "multigraph <name>".
type Section struct {
	Name       string
	Directives Directives
}

// PluginDocument is a plugin as stored in the directory: its name and the
// config sections it emitted, in discovery order.
type PluginDocument struct {
	Name     string
	Sections []Section
}

// Section returns the section with the given name.
func (p PluginDocument) Section(name string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// IsMultigraph reports whether the document carries any section named
// differently from the plugin.
func (p PluginDocument) IsMultigraph() bool {
	for _, s := range p.Sections {
		if s.Name != p.Name {
			return true
		}
	}
	return false
}

// Plugin is either a Simple plugin or a Multigraph wrapper.
type Plugin interface {
	PluginName() string
	isPlugin()
}

// Simple is a plugin drawing exactly one graph.
type Simple struct {
	Name    string
	Section Section
}

// Multigraph is a plugin whose graphs are its child sections. Root holds the
// plugin's own section when it emitted one.
type Multigraph struct {
	Name     string
	Root     *Section
	Children []Section
}

func (s Simple) PluginName() string     { return s.Name }
func (m Multigraph) PluginName() string { return m.Name }
func (Simple) isPlugin()                {}
func (Multigraph) isPlugin()            {}

// Classify resolves the document into its Plugin variant.
func (p PluginDocument) Classify() Plugin {
	if !p.IsMultigraph() {
		own, ok := p.Section(p.Name)
		if !ok {
			own = Section{Name: p.Name}
		}
		return Simple{Name: p.Name, Section: own}
	}

	m := Multigraph{Name: p.Name}
	for i := range p.Sections {
		s := p.Sections[i]
		if s.Name == p.Name {
			m.Root = &s
			continue
		}
		m.Children = append(m.Children, s)
	}
	return m
}
