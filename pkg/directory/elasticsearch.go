package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	errs "github.com/matzehuels/muninboard/pkg/errors"
	"github.com/matzehuels/muninboard/pkg/httputil"
	"github.com/matzehuels/muninboard/pkg/munin"
	"github.com/matzehuels/muninboard/pkg/observability"
)

// Elasticsearch defaults.
const (
	DefaultElasticsearchURL     = "http://localhost:9200"
	DefaultIndex                = "munin-node"
	DefaultHostField            = "host"
	DefaultHostKeywordField     = "host.keyword"
	DefaultMaxNodes             = 1000
	DefaultElasticsearchTimeout = 10 * time.Second
)

// ElasticsearchOptions configure an Elasticsearch directory.
type ElasticsearchOptions struct {
	URL      string
	Index    string
	Username string
	Password string
	APIKey   string
	// HostField is matched against the requested host on lookups.
	HostField string
	// HostKeywordField is the non-analysed host field used for listing
	// patterns and sorting.
	HostKeywordField string
	MaxNodes         int
	Timeout          time.Duration
	Retry            httputil.Policy
	// HTTPClient replaces the default client, e.g. in tests.
	HTTPClient *http.Client
}

func (o *ElasticsearchOptions) setDefaults() {
	if o.URL == "" {
		o.URL = DefaultElasticsearchURL
	}
	if o.Index == "" {
		o.Index = DefaultIndex
	}
	if o.HostField == "" {
		o.HostField = DefaultHostField
	}
	if o.HostKeywordField == "" {
		o.HostKeywordField = DefaultHostKeywordField
	}
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultElasticsearchTimeout
	}
	if o.Retry.Attempts == 0 {
		o.Retry = httputil.DefaultPolicy
	}
}

// Elasticsearch is a directory backed by an Elasticsearch index holding one
// document per munin node:
//
//	{"host": "db1.example.com", "key": "db1", "prefix": "servers",
//	 "plugins": {"load": {"load": {"graph_title": "Load average", ...}}}}
type Elasticsearch struct {
	http    *http.Client
	baseURL string
	opts    ElasticsearchOptions
	headers map[string]string
}

// NewElasticsearch creates an Elasticsearch directory. No request is made
// until the first lookup.
func NewElasticsearch(opts ElasticsearchOptions) (*Elasticsearch, error) {
	opts.setDefaults()
	if err := errs.ValidateURL(opts.URL); err != nil {
		return nil, err
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if opts.APIKey != "" {
		headers["Authorization"] = "ApiKey " + opts.APIKey
	}

	return &Elasticsearch{
		http:    client,
		baseURL: strings.TrimRight(opts.URL, "/"),
		opts:    opts,
		headers: headers,
	}, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// FindPlugins runs a match query on the host field and decodes the first hit
// whose host is host itself or has host as its first label. The match query
// is analyzed, so hits for other nodes of the same domain are skipped.
func (e *Elasticsearch) FindPlugins(ctx context.Context, host string) (rec *munin.NodeRecord, err error) {
	start := time.Now()
	defer func() {
		observability.Directory().OnLookup(ctx, "elasticsearch", "find", host, time.Since(start), err)
	}()

	query := map[string]any{
		"size":  findCandidates,
		"query": map[string]any{"match": map[string]any{e.opts.HostField: host}},
	}

	var resp searchResponse
	if err := e.do(ctx, http.MethodPost, e.indexPath("_search"), query, &resp); err != nil {
		return nil, err
	}

	for _, hit := range resp.Hits.Hits {
		var r munin.NodeRecord
		if err := json.Unmarshal(hit.Source, &r); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", hit.ID, err)
		}
		if r.Host == "" {
			r.Host = host
		}
		if !sameNode(r.Host, host) {
			continue
		}
		if r.Key == "" {
			r.Key = hit.ID
		}
		return &r, nil
	}
	return nil, nil
}

// findCandidates is the number of hits a host lookup inspects.
const findCandidates = 10

func sameNode(recHost, host string) bool {
	return strings.EqualFold(recHost, host) || strings.EqualFold(munin.ShortName(recHost), host)
}

// ListNodes runs a wildcard query on the host keyword field.
func (e *Elasticsearch) ListNodes(ctx context.Context, pattern string) (nodes []munin.NodeRef, err error) {
	start := time.Now()
	defer func() {
		observability.Directory().OnLookup(ctx, "elasticsearch", "list", pattern, time.Since(start), err)
	}()

	var query map[string]any
	if pattern == "" || pattern == AllNodes {
		query = map[string]any{"match_all": map[string]any{}}
	} else {
		query = map[string]any{"wildcard": map[string]any{
			e.opts.HostKeywordField: map[string]any{"value": pattern, "case_insensitive": true},
		}}
	}
	body := map[string]any{
		"size":    e.opts.MaxNodes,
		"_source": []string{"host", "key"},
		"query":   query,
		"sort":    []any{map[string]any{e.opts.HostKeywordField: "asc"}},
	}

	var resp searchResponse
	if err := e.do(ctx, http.MethodPost, e.indexPath("_search"), body, &resp); err != nil {
		return nil, err
	}

	for _, hit := range resp.Hits.Hits {
		var ref munin.NodeRef
		if err := json.Unmarshal(hit.Source, &ref); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", hit.ID, err)
		}
		if ref.Key == "" {
			ref.Key = munin.ShortName(ref.Host)
		}
		nodes = append(nodes, ref)
	}
	slices.SortStableFunc(nodes, func(a, b munin.NodeRef) int { return strings.Compare(a.Host, b.Host) })
	return nodes, nil
}

// IndexNode stores rec under its node key, replacing an existing document.
func (e *Elasticsearch) IndexNode(ctx context.Context, rec munin.NodeRecord) (err error) {
	rec.Key = rec.NodeKey()
	start := time.Now()
	defer func() {
		observability.Directory().OnLookup(ctx, "elasticsearch", "index", rec.Key, time.Since(start), err)
	}()

	return e.do(ctx, http.MethodPut, e.indexPath("_doc", url.PathEscape(rec.Key)), rec, nil)
}

// Close releases idle connections.
func (e *Elasticsearch) Close(context.Context) error {
	e.http.CloseIdleConnections()
	return nil
}

func (e *Elasticsearch) indexPath(parts ...string) string {
	return "/" + url.PathEscape(e.opts.Index) + "/" + strings.Join(parts, "/")
}

// do sends body as JSON and decodes the response into out when out is not
// nil. Transport failures and 5xx responses are retried per the retry policy.
func (e *Elasticsearch) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	err = e.opts.Retry.Do(ctx, func(ctx context.Context) error {
		respBody, err := e.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
		defer respBody.Close()
		if out == nil {
			_, _ = io.Copy(io.Discard, respBody)
			return nil
		}
		if err := json.NewDecoder(respBody).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
	if err == nil {
		return nil
	}

	switch {
	case ctx.Err() != nil:
		return errs.Wrap(errs.ErrCodeTimeout, err, "elasticsearch %s %s", method, path)
	case httputil.IsRetryable(err):
		return errs.Wrap(errs.ErrCodeNetwork, err, "elasticsearch %s %s", method, path)
	default:
		return err
	}
}

func (e *Elasticsearch) send(ctx context.Context, method, path string, payload []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}
	if e.opts.Username != "" {
		req.SetBasicAuth(e.opts.Username, e.opts.Password)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, req.URL.Host, path)
	start := time.Now()

	resp, err := e.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, req.URL.Host, path, err)
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, method, req.URL.Host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp); err != nil {
		resp.Body.Close()
		if httputil.IsRetryable(err) {
			return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
		}
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedStatus, err)
	}
	return resp.Body, nil
}

// Ensure Elasticsearch implements Backend.
var _ Backend = (*Elasticsearch)(nil)
