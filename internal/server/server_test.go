package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/muninboard/pkg/dashboard"
	"github.com/matzehuels/muninboard/pkg/directory"
	"github.com/matzehuels/muninboard/pkg/munin"
	"github.com/matzehuels/muninboard/pkg/pipeline"
)

func testRecord() munin.NodeRecord {
	return munin.NodeRecord{
		Host: "db1.example.com",
		Plugins: munin.PluginSet{{Name: "load", Sections: []munin.Section{{Name: "load", Directives: munin.Directives{
			{Name: "graph_title", Value: munin.Text("Load average")},
			{Name: "load", Value: munin.Fields(munin.Directives{{Name: "label", Value: munin.Text("load")}})},
		}}}}},
	}
}

type brokenDirectory struct{}

func (brokenDirectory) FindPlugins(context.Context, string) (*munin.NodeRecord, error) {
	return nil, directory.ErrNetwork
}

func (brokenDirectory) ListNodes(context.Context, string) ([]munin.NodeRef, error) {
	return nil, directory.ErrNetwork
}

func newTestServer(t *testing.T, dir directory.Directory) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(dir, nil, nil, dashboard.Settings{Prefix: "servers"}, logger)
	srv := httptest.NewServer(New(runner, Options{}, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, directory.NewStatic())

	resp, body := get(t, srv.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var health map[string]string
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" || health["version"] == "" {
		t.Errorf("health = %v", health)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("request id = %q", resp.Header.Get(RequestIDHeader))
	}
}

func TestDashboardModes(t *testing.T) {
	srv := newTestServer(t, directory.NewStatic(testRecord()))

	tests := []struct {
		query    string
		mode     string
		contains string
	}{
		{"?node=db1&from=1d", "found", `"targets"`},
		{"?node=mail", "not-found", "Node mail not found."},
		{"", "no-node", "node=db1.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			resp, body := get(t, srv.URL+"/api/v1/dashboard"+tt.query)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, body)
			}
			if got := resp.Header.Get("X-Dashboard-Mode"); got != tt.mode {
				t.Errorf("mode = %q, want %q", got, tt.mode)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body does not contain %q:\n%s", tt.contains, body)
			}
		})
	}
}

func TestDashboardUsesTimespan(t *testing.T) {
	srv := newTestServer(t, directory.NewStatic(testRecord()))

	_, body := get(t, srv.URL+"/api/v1/dashboard?node=db1&from=2w")
	var doc struct {
		Services struct {
			Filter struct {
				Time struct {
					From string `json:"from"`
				} `json:"time"`
			} `json:"filter"`
		} `json:"services"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Services.Filter.Time.From != "now-2w" {
		t.Errorf("from = %q", doc.Services.Filter.Time.From)
	}
}

func TestDashboardBadRequest(t *testing.T) {
	srv := newTestServer(t, directory.NewStatic())

	for _, q := range []string{"?from=tomorrow", "?line=0", "?line=thick", "?node=a%20b"} {
		resp, body := get(t, srv.URL+"/api/v1/dashboard"+q)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, resp.StatusCode)
		}
		var er ErrorResponse
		if err := json.Unmarshal(body, &er); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
		if er.Error.Code == "" || er.Error.RequestID == "" {
			t.Errorf("%s: error = %+v", q, er.Error)
		}
	}
}

func TestDirectoryFailureIsBadGateway(t *testing.T) {
	srv := newTestServer(t, brokenDirectory{})

	for _, path := range []string{"/api/v1/dashboard?node=db1", "/api/v1/dashboard", "/api/v1/nodes"} {
		resp, body := get(t, srv.URL+path)
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("%s: status = %d, want 502", path, resp.StatusCode)
		}
		if !strings.Contains(string(body), "DIRECTORY_UNAVAILABLE") {
			t.Errorf("%s: body = %s", path, body)
		}
	}
}

func TestNodes(t *testing.T) {
	srv := newTestServer(t, directory.NewStatic(testRecord(), munin.NodeRecord{Host: "web1.example.com"}))

	_, body := get(t, srv.URL+"/api/v1/nodes?pattern=web*")
	var nodes []munin.NodeRef
	if err := json.Unmarshal(body, &nodes); err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].Host != "web1.example.com" || nodes[0].Key != "web1" {
		t.Errorf("nodes = %+v", nodes)
	}

	_, empty := get(t, srv.URL+"/api/v1/nodes?pattern=mail*")
	if strings.TrimSpace(string(empty)) != "[]" {
		t.Errorf("empty listing = %s", empty)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RequestID(Recovery(log.New(io.Discard))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequestIDReusesIncoming(t *testing.T) {
	id := uuid.New().String()
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != id {
		t.Errorf("request id = %q, want %q", seen, id)
	}
}
