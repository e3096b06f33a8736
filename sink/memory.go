package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/planfmt"
)

// MemoryStore is an in-memory BlobStore, used by tests and dry runs.
type MemoryStore struct {
	Content  map[string][]byte
	ModTimes map[string]time.Time
	mu       sync.RWMutex
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Content:  make(map[string][]byte),
		ModTimes: make(map[string]time.Time),
	}
}

// Memory is the MemoryStore of memory:// sinks.
var Memory = NewMemoryStore()

// NewMemory is a Constructor of memory:// sinks, which write to the
// path of the URL host and path within Memory.
func NewMemory(ep *url.URL) (Sink, error) {
	return NewBlobSink(Memory, ep.Host+ep.Path), nil
}

func (m *MemoryStore) Provider() string { return "memory" }

func (m *MemoryStore) Put(_ context.Context, path string, content io.ReaderAt, contentLength int64, _ string) error {
	var buf = make([]byte, contentLength)
	if _, err := content.ReadAt(buf, 0); err != nil && err != io.EOF {
		return fmt.Errorf("failed to read content: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Content[path] = buf
	m.ModTimes[path] = time.Now()
	return nil
}

// Get returns the content at |path|.
func (m *MemoryStore) Get(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b, ok = m.Content[path]
	return b, ok
}

// Plan decodes the Plan at |path|.
func (m *MemoryStore) Plan(path string) (*placement.Plan, error) {
	var b, ok = m.Get(path)
	if !ok {
		return nil, fmt.Errorf("path not found: %s", path)
	}
	return planfmt.DecodePath(bytes.NewReader(b), path)
}
