package munin

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Index documents store plugins, sections and directives as JSON objects
// whose key order is the discovery order. encoding/json maps lose that order,
// so every level is decoded through an ordered map.

var null = []byte("null")

func decodeOrdered(data []byte) (*orderedmap.OrderedMap[string, json.RawMessage], error) {
	om := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, om); err != nil {
		return nil, err
	}
	return om, nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), null)
}

// UnmarshalJSON decodes a directive object preserving key order. Nested
// objects become field sets, strings become text, other scalars are kept as
// their JSON literal, nulls are dropped.
func (d *Directives) UnmarshalJSON(data []byte) error {
	*d = nil
	if isNull(data) {
		return nil
	}
	om, err := decodeOrdered(data)
	if err != nil {
		return fmt.Errorf("decode directives: %w", err)
	}
	out := make(Directives, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		raw := bytes.TrimSpace(pair.Value)
		if len(raw) == 0 || bytes.Equal(raw, null) {
			continue
		}
		switch raw[0] {
		case '{':
			var fields Directives
			if err := fields.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("directive %q: %w", pair.Key, err)
			}
			out = append(out, Directive{Name: pair.Key, Value: Fields(fields)})
		case '"':
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("directive %q: %w", pair.Key, err)
			}
			out = append(out, Directive{Name: pair.Key, Value: Text(s)})
		default:
			out = append(out, Directive{Name: pair.Key, Value: Text(string(raw))})
		}
	}
	*d = out
	return nil
}

// MarshalJSON encodes the directives as an object in their stored order.
func (d Directives) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, any](len(d))
	for _, dir := range d {
		if fields, ok := dir.Value.AsFields(); ok {
			om.Set(dir.Name, fields)
			continue
		}
		text, _ := dir.Value.AsText()
		om.Set(dir.Name, text)
	}
	return json.Marshal(om)
}

// UnmarshalJSON decodes {"plugin": {"section": {...}}} preserving the order
// of plugins and sections.
func (ps *PluginSet) UnmarshalJSON(data []byte) error {
	*ps = nil
	if isNull(data) {
		return nil
	}
	plugins, err := decodeOrdered(data)
	if err != nil {
		return fmt.Errorf("decode plugins: %w", err)
	}
	out := make(PluginSet, 0, plugins.Len())
	for p := plugins.Oldest(); p != nil; p = p.Next() {
		doc := PluginDocument{Name: p.Key}
		if !isNull(p.Value) {
			sections, err := decodeOrdered(p.Value)
			if err != nil {
				return fmt.Errorf("plugin %q: %w", p.Key, err)
			}
			for s := sections.Oldest(); s != nil; s = s.Next() {
				var dirs Directives
				if err := dirs.UnmarshalJSON(s.Value); err != nil {
					return fmt.Errorf("plugin %q section %q: %w", p.Key, s.Key, err)
				}
				doc.Sections = append(doc.Sections, Section{Name: s.Key, Directives: dirs})
			}
		}
		out = append(out, doc)
	}
	*ps = out
	return nil
}

// MarshalJSON encodes the plugin set in the shape UnmarshalJSON reads.
func (ps PluginSet) MarshalJSON() ([]byte, error) {
	plugins := orderedmap.New[string, any](len(ps))
	for _, p := range ps {
		sections := orderedmap.New[string, Directives](len(p.Sections))
		for _, s := range p.Sections {
			sections.Set(s.Name, s.Directives)
		}
		plugins.Set(p.Name, sections)
	}
	return json.Marshal(plugins)
}
