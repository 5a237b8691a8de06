package dashboard

import (
	"reflect"
	"testing"
)

func names(ds ...string) []Datasource {
	out := make([]Datasource, len(ds))
	for i, n := range ds {
		out[i] = Datasource{Name: n, Label: n}
	}
	return out
}

func nameTarget(d Datasource) Target { return Target(d.Name) }

func TestOrderTargets(t *testing.T) {
	tests := []struct {
		name  string
		order []string
		ds    []Datasource
		want  []Target
	}{
		{"absent order", nil, names("a", "b", "c"), []Target{"a", "b", "c"}},
		{"empty order", []string{}, names("a", "b", "c"), []Target{"a", "b", "c"}},
		{"partial order", []string{"c", "a"}, names("a", "b", "c"), []Target{"c", "a", "b"}},
		{"full order", []string{"b", "c", "a"}, names("a", "b", "c"), []Target{"b", "c", "a"}},
		{"unknown ignored", []string{"x", "b"}, names("a", "b"), []Target{"b", "a"}},
		{"duplicates once", []string{"b", "b", "a"}, names("a", "b", "c"), []Target{"b", "a", "c"}},
		{"consults at most len(ds) tokens", []string{"x", "y", "a"}, names("a", "b"), []Target{"a", "b"}},
		{"source reference", []string{"total=other.total", "a"}, names("a", "total"), []Target{"total", "a"}},
		{"no datasources", []string{"a"}, nil, []Target{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderTargets(tt.order, tt.ds, nameTarget)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("OrderTargets(%v) = %v, want %v", tt.order, got, tt.want)
			}
		})
	}
}

func TestOrderTargetsCoversEveryDatasourceOnce(t *testing.T) {
	ds := names("rx", "tx", "err", "drop", "coll")
	orders := [][]string{
		nil,
		{"coll"},
		{"drop", "drop", "rx"},
		{"zz", "yy", "xx", "ww", "vv", "rx"},
		{"tx", "rx", "err", "drop", "coll"},
	}

	for _, order := range orders {
		got := OrderTargets(order, ds, nameTarget)
		if len(got) != len(ds) {
			t.Fatalf("OrderTargets(%v) returned %d targets, want %d", order, len(got), len(ds))
		}
		seen := map[Target]bool{}
		for _, tgt := range got {
			if seen[tgt] {
				t.Errorf("OrderTargets(%v) emitted %s twice", order, tgt)
			}
			seen[tgt] = true
		}
	}
}
