package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, "db1")
	p.OnBuildComplete(ctx, "db1", "found", 12, time.Second, nil)

	d := NoopDirectoryHooks{}
	d.OnLookup(ctx, "elasticsearch", "find", "db1", time.Millisecond, errors.New("boom"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "node")
	c.OnCacheMiss(ctx, "list")
	c.OnCacheSet(ctx, "node", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "localhost:9200", "/munin-node/_search")
	h.OnResponse(ctx, "POST", "localhost:9200", "/munin-node/_search", 200, time.Second)
	h.OnError(ctx, "POST", "localhost:9200", "/munin-node/_search", nil)

	i := NoopIndexerHooks{}
	i.OnPollComplete(ctx, "db1", 30, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Directory().(NoopDirectoryHooks); !ok {
		t.Error("Directory() should return NoopDirectoryHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}
	if _, ok := Indexer().(NoopIndexerHooks); !ok {
		t.Error("Indexer() should return NoopIndexerHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customDirectory := &testDirectoryHooks{}
	SetDirectoryHooks(customDirectory)
	if Directory() != customDirectory {
		t.Error("SetDirectoryHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	customIndexer := &testIndexerHooks{}
	SetIndexerHooks(customIndexer)
	if Indexer() != customIndexer {
		t.Error("SetIndexerHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Directory().(NoopDirectoryHooks); !ok {
		t.Error("Reset() should restore NoopDirectoryHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testDirectoryHooks struct{ NoopDirectoryHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
type testIndexerHooks struct{ NoopIndexerHooks }
