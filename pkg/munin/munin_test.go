package munin

import (
	"encoding/json"
	"strings"
	"testing"
)

const loadDoc = `{
	"host": "db1.example.com",
	"key": "db1",
	"prefix": "servers",
	"plugins": {
		"load": {
			"load": {
				"graph_title": "Load average",
				"graph_category": "system",
				"load": {"label": "load", "draw": "LINE2"},
				"graph_args": "--base 1000 -l 0"
			}
		},
		"diskstats": {
			"diskstats": {},
			"diskstats_latency": {"graph_title": "Disk latency", "sda_avgwait": {"label": "sda"}},
			"diskstats_iops": {"rd": {"label": "read", "max": 100}, "wr": {"label": "write"}}
		},
		"cpu": {
			"cpu": {"graph_title": "CPU", "user": {"label": "user"}, "system": {"label": "system"}, "idle": null}
		}
	}
}`

func TestNodeRecordUnmarshalPreservesOrder(t *testing.T) {
	var rec NodeRecord
	if err := json.Unmarshal([]byte(loadDoc), &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if rec.Host != "db1.example.com" || rec.Key != "db1" || rec.Prefix != "servers" {
		t.Errorf("record header = %+v", rec)
	}

	var names []string
	for _, p := range rec.Plugins {
		names = append(names, p.Name)
	}
	if got, want := strings.Join(names, ","), "load,diskstats,cpu"; got != want {
		t.Errorf("plugin order = %s, want %s", got, want)
	}

	load := rec.Plugins[0].Sections[0].Directives
	var keys []string
	for _, d := range load {
		keys = append(keys, d.Name)
	}
	if got, want := strings.Join(keys, ","), "graph_title,graph_category,load,graph_args"; got != want {
		t.Errorf("directive order = %s, want %s", got, want)
	}

	ds, ok := load.Fields("load")
	if !ok {
		t.Fatal("load.Fields(load) missing")
	}
	if draw, _ := ds.Text("draw"); draw != "LINE2" {
		t.Errorf("draw = %q, want LINE2", draw)
	}

	disk := rec.Plugins[1]
	if len(disk.Sections) != 3 {
		t.Fatalf("diskstats sections = %d, want 3", len(disk.Sections))
	}
	iops, _ := disk.Sections[2].Directives.Fields("rd")
	if max, _ := iops.Text("max"); max != "100" {
		t.Errorf("numeric field = %q, want %q", max, "100")
	}

	cpu := rec.Plugins[2].Sections[0].Directives
	if cpu.Has("idle") {
		t.Error("null directive should be dropped")
	}
}

func TestNodeRecordRoundTripKeepsOrder(t *testing.T) {
	var rec NodeRecord
	if err := json.Unmarshal([]byte(loadDoc), &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var again NodeRecord
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatalf("Unmarshal again: %v", err)
	}
	if len(again.Plugins) != len(rec.Plugins) {
		t.Fatalf("plugins = %d, want %d", len(again.Plugins), len(rec.Plugins))
	}
	for i := range rec.Plugins {
		if again.Plugins[i].Name != rec.Plugins[i].Name {
			t.Errorf("plugin %d = %q, want %q", i, again.Plugins[i].Name, rec.Plugins[i].Name)
		}
		if len(again.Plugins[i].Sections) != len(rec.Plugins[i].Sections) {
			t.Errorf("plugin %q sections = %d, want %d", rec.Plugins[i].Name,
				len(again.Plugins[i].Sections), len(rec.Plugins[i].Sections))
		}
	}
}

func TestClassify(t *testing.T) {
	simple := PluginDocument{
		Name:     "load",
		Sections: []Section{{Name: "load", Directives: Directives{{Name: "graph_title", Value: Text("Load")}}}},
	}
	s, ok := simple.Classify().(Simple)
	if !ok {
		t.Fatalf("Classify(load) = %T, want Simple", simple.Classify())
	}
	if title, _ := s.Section.Directives.Text("graph_title"); title != "Load" {
		t.Errorf("simple title = %q", title)
	}

	empty := PluginDocument{Name: "uptime"}
	if _, ok := empty.Classify().(Simple); !ok {
		t.Errorf("Classify(no sections) = %T, want Simple", empty.Classify())
	}

	multi := PluginDocument{
		Name: "diskstats",
		Sections: []Section{
			{Name: "diskstats"},
			{Name: "diskstats_latency"},
			{Name: "diskstats_iops"},
		},
	}
	m, ok := multi.Classify().(Multigraph)
	if !ok {
		t.Fatalf("Classify(diskstats) = %T, want Multigraph", multi.Classify())
	}
	if m.Root == nil || m.Root.Name != "diskstats" {
		t.Errorf("Root = %v, want diskstats section", m.Root)
	}
	if len(m.Children) != 2 || m.Children[0].Name != "diskstats_latency" || m.Children[1].Name != "diskstats_iops" {
		t.Errorf("Children = %+v", m.Children)
	}
}

func TestDirectivesSet(t *testing.T) {
	var d Directives
	d.Set("graph_title", Text("a"))
	d.SetField("load", "label", "load")
	d.Set("graph_vlabel", Text("x"))
	d.SetField("load", "draw", "LINE1")
	d.Set("graph_title", Text("b"))

	if len(d) != 3 {
		t.Fatalf("len = %d, want 3", len(d))
	}
	if title, _ := d.Text("graph_title"); title != "b" {
		t.Errorf("graph_title = %q, want b", title)
	}
	if d[0].Name != "graph_title" {
		t.Errorf("overwrite moved directive: %q first", d[0].Name)
	}
	fields, ok := d.Fields("load")
	if !ok || len(fields) != 2 {
		t.Fatalf("load fields = %+v", fields)
	}
	if _, ok := d.Text("load"); ok {
		t.Error("Text(load) on field set should be absent")
	}
	if got := d.TextOr("graph_info", "none"); got != "none" {
		t.Errorf("TextOr = %q, want none", got)
	}
}

func TestNodeKey(t *testing.T) {
	tests := []struct {
		rec  NodeRecord
		want string
	}{
		{NodeRecord{Host: "db1.example.com", Key: "database"}, "database"},
		{NodeRecord{Host: "db1.example.com"}, "db1"},
		{NodeRecord{Host: "db1"}, "db1"},
	}
	for _, tt := range tests {
		if got := tt.rec.NodeKey(); got != tt.want {
			t.Errorf("NodeKey(%+v) = %q, want %q", tt.rec, got, tt.want)
		}
	}
}
