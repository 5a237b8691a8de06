package directory

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/muninboard/pkg/munin"
)

func TestRecordBSONKeepsOrder(t *testing.T) {
	rec := munin.NodeRecord{
		Host:   "db1.example.com",
		Key:    "db1",
		Prefix: "servers",
		Plugins: munin.PluginSet{
			{Name: "load", Sections: []munin.Section{{Name: "load", Directives: munin.Directives{
				{Name: "graph_title", Value: munin.Text("Load average")},
				{Name: "load", Value: munin.Fields(munin.Directives{{Name: "label", Value: munin.Text("load")}})},
			}}}},
			{Name: "cpu", Sections: []munin.Section{{Name: "cpu", Directives: munin.Directives{
				{Name: "system", Value: munin.Fields(munin.Directives{{Name: "draw", Value: munin.Text("AREA")}})},
				{Name: "user", Value: munin.Fields(munin.Directives{{Name: "draw", Value: munin.Text("STACK")}})},
			}}}},
		},
	}

	data, err := bson.Marshal(recordToBSON(rec))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := recordFromBSON(doc)

	if got.Host != rec.Host || got.Key != rec.Key || got.Prefix != rec.Prefix {
		t.Errorf("record = %+v", got)
	}
	if len(got.Plugins) != 2 || got.Plugins[0].Name != "load" || got.Plugins[1].Name != "cpu" {
		t.Fatalf("plugins = %+v", got.Plugins)
	}
	cpu := got.Plugins[1].Sections[0].Directives
	if len(cpu) != 2 || cpu[0].Name != "system" || cpu[1].Name != "user" {
		t.Errorf("datasource order = %+v", cpu)
	}
	if draw, _ := cpu[1].Value.AsFields(); draw.TextOr("draw", "") != "STACK" {
		t.Errorf("user draw = %+v", draw)
	}
}

func TestDirectivesFromBSONScalars(t *testing.T) {
	d := directivesFromBSON(bson.D{
		{Key: "graph_title", Value: "Uptime"},
		{Key: "graph_height", Value: int32(200)},
		{Key: "graph_info", Value: nil},
	})
	if len(d) != 2 {
		t.Fatalf("directives = %+v", d)
	}
	if v := d.TextOr("graph_height", ""); v != "200" {
		t.Errorf("graph_height = %q", v)
	}
	if d.Has("graph_info") {
		t.Error("null values should be dropped")
	}
}

func TestRegexQuote(t *testing.T) {
	host := "db1.example.com"
	re := regexp.MustCompile("^" + regexQuote(host) + `(\.|$)`)
	if !re.MatchString(host) {
		t.Errorf("quoted host should match itself")
	}
	if re.MatchString("db1xexample.com") {
		t.Errorf("dots should be literal")
	}
	if got := regexQuote("a+b(c)"); got != `a\+b\(c\)` {
		t.Errorf("regexQuote = %q", got)
	}
}

func TestNewMongoUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewMongo(ctx, MongoOptions{URI: "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200"})
	if err == nil {
		t.Error("NewMongo against a closed port should fail")
	}
}
