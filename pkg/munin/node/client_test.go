package node

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"
)

// fakeNode serves canned answers on one end of a pipe.
func fakeNode(t *testing.T, banner string, answers map[string]string) *Client {
	t.Helper()
	server, client := net.Pipe()

	go func() {
		defer server.Close()
		w := bufio.NewWriter(server)
		w.WriteString(banner + "\n")
		w.Flush()

		sc := bufio.NewScanner(server)
		for sc.Scan() {
			cmd := sc.Text()
			if cmd == "quit" {
				return
			}
			answer, ok := answers[cmd]
			if !ok {
				answer = "# Unknown command. Try cap, list, nodes, config, fetch, version or quit\n"
			}
			w.WriteString(answer)
			w.Flush()
		}
	}()

	c, err := NewClient(client, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientBanner(t *testing.T) {
	c := fakeNode(t, "# munin node at db1.example.com", nil)
	if c.NodeName() != "db1.example.com" {
		t.Errorf("NodeName = %q", c.NodeName())
	}

	other := fakeNode(t, "hello", nil)
	if other.NodeName() != "" || other.Banner() != "hello" {
		t.Errorf("NodeName = %q, Banner = %q", other.NodeName(), other.Banner())
	}
}

func TestClientListAndCapabilities(t *testing.T) {
	c := fakeNode(t, "# munin node at db1", map[string]string{
		"cap multigraph": "cap multigraph dirtyconfig\n",
		"list":           "cpu load  diskstats\n",
		"list web1":      "nginx_request\n",
	})
	ctx := context.Background()

	caps, err := c.Capabilities(ctx)
	if err != nil {
		t.Fatalf("Capabilities: %v", err)
	}
	if strings.Join(caps, ",") != "multigraph,dirtyconfig" {
		t.Errorf("Capabilities = %v", caps)
	}

	plugins, err := c.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Join(plugins, ",") != "cpu,load,diskstats" {
		t.Errorf("List = %v", plugins)
	}

	remote, err := c.List(ctx, "web1")
	if err != nil {
		t.Fatalf("List(web1): %v", err)
	}
	if len(remote) != 1 || remote[0] != "nginx_request" {
		t.Errorf("List(web1) = %v", remote)
	}
}

func TestClientConfig(t *testing.T) {
	c := fakeNode(t, "# munin node at db1", map[string]string{
		"config load": "graph_title Load average\n" +
			"graph_args --base 1000 -l 0\n" +
			"graph_vlabel load\n" +
			"graph_category system\n" +
			"load.label load\n" +
			"load.warning 10\n" +
			".\n",
	})

	doc, err := c.Config(context.Background(), "load")
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if doc.Name != "load" || len(doc.Sections) != 1 || doc.Sections[0].Name != "load" {
		t.Fatalf("doc = %+v", doc)
	}
	d := doc.Sections[0].Directives
	if title, _ := d.Text("graph_title"); title != "Load average" {
		t.Errorf("graph_title = %q", title)
	}
	if args, _ := d.Text("graph_args"); args != "--base 1000 -l 0" {
		t.Errorf("graph_args = %q", args)
	}
	load, ok := d.Fields("load")
	if !ok {
		t.Fatal("load datasource missing")
	}
	if label, _ := load.Text("label"); label != "load" {
		t.Errorf("load.label = %q", label)
	}
	if warn, _ := load.Text("warning"); warn != "10" {
		t.Errorf("load.warning = %q", warn)
	}
}

func TestParseConfigMultigraph(t *testing.T) {
	lines := []string{
		"multigraph diskstats_latency",
		"graph_title Disk latency",
		"sda_avgwait.label sda",
		"multigraph diskstats_iops",
		"graph_title IOs",
		"rd.label read",
		"rd.min 0",
		"wr.label write",
		"broken_line_without_value",
	}

	doc := ParseConfig("diskstats", lines)
	if !doc.IsMultigraph() {
		t.Error("document should be a multigraph")
	}

	var names []string
	for _, s := range doc.Sections {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != "diskstats_latency,diskstats_iops" {
		t.Errorf("sections = %v", names)
	}

	iops := doc.Sections[1].Directives
	var keys []string
	for _, d := range iops {
		keys = append(keys, d.Name)
	}
	if strings.Join(keys, ",") != "graph_title,rd,wr" {
		t.Errorf("iops directives = %v", keys)
	}
	rd, _ := iops.Fields("rd")
	if len(rd) != 2 {
		t.Errorf("rd fields = %+v", rd)
	}
}

func TestParseConfigDirectivesBeforeMultigraph(t *testing.T) {
	doc := ParseConfig("if_eth0", []string{"graph_title eth0 traffic", "down.label received"})
	if doc.IsMultigraph() {
		t.Error("single section document should not be a multigraph")
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Name != "if_eth0" {
		t.Errorf("sections = %+v", doc.Sections)
	}
}

func TestClientClosed(t *testing.T) {
	c := fakeNode(t, "# munin node at db1", nil)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := c.List(context.Background(), ""); err != ErrClosed {
		t.Errorf("List after Close = %v, want ErrClosed", err)
	}
}

func TestClientContextCancelled(t *testing.T) {
	c := fakeNode(t, "# munin node at db1", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.List(ctx, ""); err == nil {
		t.Error("List with cancelled context should fail")
	}
}
