package munin

// Kind distinguishes the two shapes a directive value can take.
type Kind int

const (
	// KindText is a plain textual directive value ("graph_title Load average").
	KindText Kind = iota
	// KindFields is a field set of sub-directives ("load.label load", "load.draw LINE2").
	KindFields
)

// Value is a tagged directive value: either text or a field set.
//
// The zero Value is an empty text value.
type Value struct {
	kind   Kind
	text   string
	fields Directives
}

// Text returns a textual value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Fields returns a field-set value.
func Fields(d Directives) Value {
	return Value{kind: KindFields, fields: d}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// AsText returns the text and true if v is a text value.
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// AsFields returns the field set and true if v is a field-set value.
func (v Value) AsFields() (Directives, bool) {
	if v.kind != KindFields {
		return nil, false
	}
	return v.fields, true
}

// Directive is one named value in a section.
type Directive struct {
	Name  string
	Value Value
}

// Directives is an ordered list of directives. Order is the order in which
// the directives were discovered in the munin config output and is preserved
// through every encoding.
type Directives []Directive

// Lookup returns the value stored under name.
func (d Directives) Lookup(name string) (Value, bool) {
	for _, dir := range d {
		if dir.Name == name {
			return dir.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether a directive with the given name is present.
func (d Directives) Has(name string) bool {
	_, ok := d.Lookup(name)
	return ok
}

// Text returns the text stored under name. The boolean is false when the
// directive is absent or holds a field set.
func (d Directives) Text(name string) (string, bool) {
	v, ok := d.Lookup(name)
	if !ok {
		return "", false
	}
	return v.AsText()
}

// TextOr returns the text stored under name, or def when it is absent or
// not text.
func (d Directives) TextOr(name, def string) string {
	if s, ok := d.Text(name); ok {
		return s
	}
	return def
}

// Fields returns the field set stored under name. The boolean is false when
// the directive is absent or holds text.
func (d Directives) Fields(name string) (Directives, bool) {
	v, ok := d.Lookup(name)
	if !ok {
		return nil, false
	}
	return v.AsFields()
}

// Set stores v under name. An existing directive keeps its position.
func (d *Directives) Set(name string, v Value) {
	for i := range *d {
		if (*d)[i].Name == name {
			(*d)[i].Value = v
			return
		}
	}
	*d = append(*d, Directive{Name: name, Value: v})
}

// SetField stores text under root.leaf, creating the field set for root if
// needed. A text directive named root is replaced by a field set.
func (d *Directives) SetField(root, leaf, text string) {
	for i := range *d {
		if (*d)[i].Name != root {
			continue
		}
		fields, _ := (*d)[i].Value.AsFields()
		fields.Set(leaf, Text(text))
		(*d)[i].Value = Fields(fields)
		return
	}
	fields := Directives{{Name: leaf, Value: Text(text)}}
	*d = append(*d, Directive{Name: root, Value: Fields(fields)})
}
