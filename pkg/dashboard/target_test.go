package dashboard

import (
	"encoding/json"
	"testing"
)

func TestNewTarget(t *testing.T) {
	tests := []struct {
		name  string
		c     CounterType
		label string
		want  Target
	}{
		{"gauge", Gauge, "load", `alias(servers.db1.system.load.load, 'load')`},
		{"derive", Derive, "user", `alias(derivative(servers.db1.system.load.load), 'user')`},
		{"counter", Counter, "read", `alias(perSecond(servers.db1.system.load.load), 'read')`},
		{"double quote kept in single quotes", Gauge, `6" disk`, `alias(servers.db1.system.load.load, '6" disk')`},
		{"single quote", Gauge, "today's load", `alias(servers.db1.system.load.load, "today's load")`},
		{"both quotes", Gauge, `it's 6"`, `alias(servers.db1.system.load.load, "it's 6")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTarget("servers.db1.system.load.load", tt.c, tt.label)
			if got != tt.want {
				t.Errorf("NewTarget = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTargetJSON(t *testing.T) {
	data, err := json.Marshal([]Target{"alias(a.b, 'x')"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[{"target":"alias(a.b, 'x')"}]` {
		t.Errorf("Marshal = %s", data)
	}

	var back []Target
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 || back[0] != "alias(a.b, 'x')" {
		t.Errorf("Unmarshal = %v", back)
	}
}

func TestMetricPathString(t *testing.T) {
	tests := []struct {
		p    MetricPath
		want string
	}{
		{MetricPath{"servers", "db1", "disk", "", "df", "root"}, "servers.db1.disk.df.root"},
		{MetricPath{"servers", "db1", "disk", "diskstats", "sda", "util"}, "servers.db1.disk.diskstats.sda.util"},
		{MetricPath{"", "web7", "system", "", "cpu", "user"}, "web7.system.cpu.user"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
