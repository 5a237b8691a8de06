package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/muninboard/pkg/munin"
	"github.com/matzehuels/muninboard/pkg/observability"
)

// Static is an in-memory directory. It backs the file directory used for
// offline rendering and is the store of choice in tests.
type Static struct {
	mu      sync.RWMutex
	records []munin.NodeRecord
	path    string
}

// NewStatic returns a directory holding a copy of records.
func NewStatic(records ...munin.NodeRecord) *Static {
	return &Static{records: slices.Clone(records)}
}

// LoadFile reads a JSON array of node records. Records indexed later are
// written back to the same file.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}
	var records []munin.NodeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse directory file %s: %w", path, err)
	}
	s := NewStatic(records...)
	s.path = path
	return s, nil
}

// OpenFile is LoadFile, except that a missing file yields an empty directory.
func OpenFile(path string) (*Static, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s := NewStatic()
		s.path = path
		return s, nil
	}
	return LoadFile(path)
}

// FindPlugins returns the record whose host equals host, or whose first
// DNS label equals host ignoring case.
func (s *Static) FindPlugins(ctx context.Context, host string) (*munin.NodeRecord, error) {
	start := time.Now()
	defer func() {
		observability.Directory().OnLookup(ctx, "static", "find", host, time.Since(start), nil)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if s.records[i].Host == host {
			rec := s.records[i]
			return &rec, nil
		}
	}
	for i := range s.records {
		if strings.EqualFold(munin.ShortName(s.records[i].Host), host) {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// ListNodes returns the records whose host matches pattern, ordered by host.
func (s *Static) ListNodes(ctx context.Context, pattern string) ([]munin.NodeRef, error) {
	start := time.Now()
	defer func() {
		observability.Directory().OnLookup(ctx, "static", "list", pattern, time.Since(start), nil)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var nodes []munin.NodeRef
	for _, rec := range s.records {
		if MatchGlob(pattern, rec.Host) {
			nodes = append(nodes, rec.Ref())
		}
	}
	slices.SortStableFunc(nodes, func(a, b munin.NodeRef) int { return strings.Compare(a.Host, b.Host) })
	return nodes, nil
}

// IndexNode replaces the record with the same node key, or appends rec.
// File-backed directories rewrite their file.
func (s *Static) IndexNode(ctx context.Context, rec munin.NodeRecord) (err error) {
	rec.Key = rec.NodeKey()
	start := time.Now()
	defer func() {
		observability.Directory().OnLookup(ctx, "static", "index", rec.Key, time.Since(start), err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.records, func(r munin.NodeRecord) bool { return r.NodeKey() == rec.Key })
	if i >= 0 {
		s.records[i] = rec
	} else {
		s.records = append(s.records, rec)
	}

	if s.path == "" {
		return nil
	}
	return s.save()
}

// Records returns a copy of the stored records.
func (s *Static) Records() []munin.NodeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Close is a no-op.
func (s *Static) Close(context.Context) error { return nil }

func (s *Static) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode directory file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write directory file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write directory file: %w", err)
	}
	return nil
}

// Ensure Static implements Backend.
var _ Backend = (*Static)(nil)
