package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockSource implements driven.TranscriptSource over in-memory documents.
type mockSource struct {
	mu         sync.Mutex
	docs       map[string]string
	readErrs   map[string]error
	records    []domain.SourceRecord
	recordsErr error

	// gate, when set, blocks every ReadDocument until closed.
	gate chan struct{}

	recordsCalls atomic.Int32
}

func newMockSource(docs map[string]string) *mockSource {
	s := &mockSource{readErrs: map[string]error{}}
	s.setDocs(docs)
	return s
}

// setDocs replaces the corpus; records are listed in reverse ID order so
// builds must sort them.
func (s *mockSource) setDocs(docs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = docs
	s.records = s.records[:0]
	for id, doc := range docs {
		s.records = append(s.records, domain.SourceRecord{
			ID:      id,
			Path:    "/data/" + id + ".json",
			ModTime: time.Unix(1700000000, 0),
			Size:    int64(len(doc)),
		})
	}
	sort.Slice(s.records, func(i, j int) bool { return s.records[i].ID > s.records[j].ID })
}

func (s *mockSource) Records(_ context.Context) ([]domain.SourceRecord, error) {
	s.recordsCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordsErr != nil {
		return nil, s.recordsErr
	}
	out := make([]domain.SourceRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *mockSource) ReadDocument(ctx context.Context, rec domain.SourceRecord) ([]byte, error) {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readErrs[rec.ID]; err != nil {
		return nil, err
	}
	doc, ok := s.docs[rec.ID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", rec.ID, domain.ErrNotFound)
	}
	return []byte(doc), nil
}

func (s *mockSource) Close() error {
	return nil
}

// mockSnapshotStore implements driven.SnapshotStore in memory.
type mockSnapshotStore struct {
	mu      sync.Mutex
	saved   map[string]*domain.TranscriptIndex
	loadErr error
}

func newMockSnapshotStore() *mockSnapshotStore {
	return &mockSnapshotStore{saved: map[string]*domain.TranscriptIndex{}}
}

func (m *mockSnapshotStore) Save(_ context.Context, idx *domain.TranscriptIndex, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[path] = idx
	return nil
}

func (m *mockSnapshotStore) Load(_ context.Context, path string) (*domain.TranscriptIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	idx, ok := m.saved[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s does not exist", domain.ErrIndexLoad, path)
	}
	// Hand out a copy so identity checks distinguish loads from builds.
	cp := &domain.TranscriptIndex{IDs: idx.IDs, Text: idx.Text, SegOffsets: idx.SegOffsets, SegTimes: idx.SegTimes}
	return cp.Seal(), nil
}

func (m *mockSnapshotStore) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.saved[path]
	return ok
}

// mockCatalog implements driven.CatalogStore in memory.
type mockCatalog struct {
	mu     sync.Mutex
	builds []domain.IndexBuild
}

func (m *mockCatalog) Record(_ context.Context, build domain.IndexBuild) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds = append(m.builds, build)
	return nil
}

func (m *mockCatalog) LatestBuild(_ context.Context, path string) (*domain.IndexBuild, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.builds) - 1; i >= 0; i-- {
		if m.builds[i].Path == path {
			b := m.builds[i]
			return &b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalog) ListBuilds(_ context.Context, limit int) ([]domain.IndexBuild, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.IndexBuild, 0, limit)
	for i := len(m.builds) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.builds[i])
	}
	return out, nil
}

func (m *mockCatalog) Close() error {
	return nil
}

// mockWatchSource implements driven.WatchableSource with a test-fed channel.
type mockWatchSource struct {
	mockSource
	changes  chan domain.SourceChange
	watchErr error
}

func (m *mockWatchSource) Watch(_ context.Context) (<-chan domain.SourceChange, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	return m.changes, nil
}

// countingRebuilder records Rebuild calls.
type countingRebuilder struct {
	calls atomic.Int32
}

func (r *countingRebuilder) Rebuild(_ context.Context, _ bool) error {
	r.calls.Add(1)
	return nil
}

// staticSnapshot implements SnapshotProvider with a fixed index.
type staticSnapshot struct {
	mu  sync.Mutex
	idx *domain.TranscriptIndex
	err error
}

func (s *staticSnapshot) Get(_ context.Context) (*domain.TranscriptIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.idx, nil
}

func (s *staticSnapshot) set(idx *domain.TranscriptIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = idx
}

var (
	_ driven.TranscriptSource = (*mockSource)(nil)
	_ driven.SnapshotStore    = (*mockSnapshotStore)(nil)
	_ driven.CatalogStore     = (*mockCatalog)(nil)
	_ driven.WatchableSource  = (*mockWatchSource)(nil)
	_ SnapshotProvider        = (*staticSnapshot)(nil)

	errRead = errors.New("read failed")
)

// segmentsDoc renders a transcript document with one segment per text,
// starting at 0 and spaced 5 seconds apart.
func segmentsDoc(texts ...string) string {
	doc := `{"segments": [`
	for i, text := range texts {
		if i > 0 {
			doc += ","
		}
		doc += fmt.Sprintf(`{"start": %d, "text": %q}`, i*5, text)
	}
	return doc + "]}"
}
