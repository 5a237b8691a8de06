package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := startSpinner(&out, "Looking up db1")
	time.Sleep(200 * time.Millisecond)
	s.stop()
	s.stop()

	got := out.String()
	if !strings.Contains(got, "Looking up db1") {
		t.Errorf("spinner output = %q, want message", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner should clear its line on stop, got %q", got)
	}
}

func TestWithSpinner(t *testing.T) {
	boom := errors.New("boom")

	var out syncBuffer
	if err := withSpinner(&out, "working", func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("withSpinner error = %v, want boom", err)
	}

	called := false
	if err := withSpinner(nil, "quiet", func() error { called = true; return nil }); err != nil || !called {
		t.Errorf("withSpinner(nil) = %v, called %v", err, called)
	}
}
