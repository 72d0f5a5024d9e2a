package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
	"github.com/ivrit-ai/explore/internal/core/ports/driving"
	"github.com/ivrit-ai/explore/internal/logger"
)

// Ensure IndexManager implements the interface.
var _ driving.IndexService = (*IndexManager)(nil)

// IndexManager builds, persists, loads and swaps transcript index snapshots.
// Readers get the current snapshot lock-free; a rebuild replaces it with a
// single atomic store, so no reader ever sees a partially built index.
type IndexManager struct {
	source     driven.TranscriptSource
	normaliser driven.Normaliser
	snapshots  driven.SnapshotStore
	catalog    driven.CatalogStore
	workers    int

	current atomic.Pointer[domain.TranscriptIndex]

	// initMu makes concurrent first Gets share one build.
	initMu sync.Mutex
	// buildMu serialises builds; non-blocking rebuilds coalesce on it.
	buildMu  sync.Mutex
	building atomic.Bool
	// rerun is set by requests that arrive while a build is running. The
	// running build listed its records before them, so it must go again.
	rerun atomic.Bool
	wg       sync.WaitGroup

	mu       sync.RWMutex
	last     *domain.IndexBuild
	autoSave string
}

// NewIndexManager creates an index manager.
// The snapshots and catalog parameters are optional (can be nil).
func NewIndexManager(
	source driven.TranscriptSource,
	normaliser driven.Normaliser,
	snapshots driven.SnapshotStore,
	catalog driven.CatalogStore,
	workers int,
) *IndexManager {
	return &IndexManager{
		source:     source,
		normaliser: normaliser,
		snapshots:  snapshots,
		catalog:    catalog,
		workers:    workers,
	}
}

// SetAutoSave makes every completed rebuild persist to path.
// An empty path disables auto-save.
func (m *IndexManager) SetAutoSave(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoSave = path
}

// Get returns the current snapshot. The first call builds it and blocks
// until the build completes; later calls never block.
func (m *IndexManager) Get(ctx context.Context) (*domain.TranscriptIndex, error) {
	if idx := m.current.Load(); idx != nil {
		return idx, nil
	}

	m.initMu.Lock()
	defer m.initMu.Unlock()
	if idx := m.current.Load(); idx != nil {
		return idx, nil
	}

	if err := m.Rebuild(ctx, true); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return m.current.Load(), nil
}

// Rebuild builds a new snapshot from the source and swaps it in.
// With block false it returns at once. Requests arriving while a build is
// running are folded into one more build once it finishes.
func (m *IndexManager) Rebuild(ctx context.Context, block bool) error {
	if block {
		m.buildMu.Lock()
		err := m.rebuild(ctx)
		m.buildMu.Unlock()
		if m.rerun.Load() {
			m.startBackground(ctx)
		}
		return err
	}

	m.rerun.Store(true)
	m.startBackground(ctx)
	return nil
}

// startBackground runs builds on a goroutine until no request is left.
// When another build holds buildMu the request stays in rerun for it.
func (m *IndexManager) startBackground(ctx context.Context) {
	if !m.buildMu.TryLock() {
		logger.Debug("Rebuild already running, another pass queued")
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		bctx := context.WithoutCancel(ctx)
		for {
			for m.rerun.Swap(false) {
				if err := m.rebuild(bctx); err != nil {
					logger.Error("Background rebuild failed: %v", err)
				}
			}
			m.buildMu.Unlock()
			// A request that lost TryLock just before the unlock is still queued.
			if !m.rerun.Load() || !m.buildMu.TryLock() {
				return
			}
		}
	}()
}

// Wait blocks until background rebuilds have finished.
func (m *IndexManager) Wait() {
	m.wg.Wait()
}

// rebuild must be called with buildMu held.
func (m *IndexManager) rebuild(ctx context.Context) error {
	m.building.Store(true)
	defer m.building.Store(false)

	result, err := BuildIndex(ctx, m.source, m.normaliser, m.workers)
	if err != nil {
		return err
	}

	m.current.Store(result.Index)
	build := domain.IndexBuild{
		ID:          uuid.NewString(),
		Fingerprint: result.Fingerprint,
		Origin:      domain.OriginBuilt,
		Episodes:    result.Index.Len(),
		Skipped:     result.Skipped,
		Duration:    result.Duration,
		CreatedAt:   time.Now(),
	}
	m.setLast(build)

	m.mu.RLock()
	path := m.autoSave
	m.mu.RUnlock()
	if path != "" {
		if err := m.Save(ctx, path); err != nil {
			logger.Warn("Auto-save to %s failed: %v", path, err)
		}
	}
	return nil
}

// Save persists the current snapshot to path and records it in the catalog.
func (m *IndexManager) Save(ctx context.Context, path string) error {
	if m.snapshots == nil {
		return fmt.Errorf("save index: snapshot store not configured")
	}
	idx := m.current.Load()
	if idx == nil {
		return fmt.Errorf("save index: %w", domain.ErrIndexUnavailable)
	}

	started := time.Now()
	if err := m.snapshots.Save(ctx, idx, path); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	logger.Info("Saved index with %d episodes to %s", idx.Len(), path)

	build := domain.IndexBuild{
		ID:        uuid.NewString(),
		Path:      path,
		Origin:    domain.OriginBuilt,
		Episodes:  idx.Len(),
		Duration:  time.Since(started),
		CreatedAt: time.Now(),
	}
	if last := m.lastBuild(); last != nil {
		build.Fingerprint = last.Fingerprint
		build.Origin = last.Origin
		build.Skipped = last.Skipped
		build.Duration = last.Duration
	}
	m.record(ctx, build)
	m.setLast(build)
	return nil
}

// Load replaces the current snapshot with the container at path.
// A failure leaves the current snapshot in place.
func (m *IndexManager) Load(ctx context.Context, path string) error {
	if m.snapshots == nil {
		return fmt.Errorf("%w: snapshot store not configured", domain.ErrIndexLoad)
	}

	started := time.Now()
	idx, err := m.snapshots.Load(ctx, path)
	if err != nil {
		return err
	}
	m.current.Store(idx)

	build := domain.IndexBuild{
		ID:        uuid.NewString(),
		Path:      path,
		Origin:    domain.OriginLoaded,
		Episodes:  idx.Len(),
		Duration:  time.Since(started),
		CreatedAt: time.Now(),
	}
	if prev := m.latest(ctx, path); prev != nil {
		build.Fingerprint = prev.Fingerprint
	}
	m.record(ctx, build)
	m.setLast(build)
	logger.Info("Loaded index with %d episodes from %s in %s", idx.Len(), path, build.Duration)
	return nil
}

// Stale reports whether the container at path was built from a different
// record set than the live source. Without catalog history it is stale.
func (m *IndexManager) Stale(ctx context.Context, path string) (bool, error) {
	prev := m.latest(ctx, path)
	if prev == nil || prev.Fingerprint == "" {
		return true, nil
	}
	records, err := m.source.Records(ctx)
	if err != nil {
		return true, fmt.Errorf("list records: %w", err)
	}
	records, _ = sortUnique(records)
	return Fingerprint(records) != prev.Fingerprint, nil
}

// Warm makes a snapshot current. Unless force is set, a fresh container at
// path is loaded; otherwise the index is built and saved to path.
func (m *IndexManager) Warm(ctx context.Context, path string, force bool) error {
	if !force && m.snapshots != nil && m.snapshots.Exists(path) {
		stale, err := m.Stale(ctx, path)
		switch {
		case err != nil:
			logger.Warn("Staleness check failed: %v", err)
		case stale:
			logger.Info("Index at %s is stale, rebuilding", path)
		default:
			err := m.Load(ctx, path)
			if err == nil {
				return nil
			}
			logger.Warn("Loading %s failed, rebuilding: %v", path, err)
		}
	}

	if err := m.Rebuild(ctx, true); err != nil {
		return err
	}
	if m.snapshots == nil || path == "" {
		return nil
	}
	m.mu.RLock()
	autoSaved := m.autoSave == path
	m.mu.RUnlock()
	if autoSaved {
		return nil
	}
	return m.Save(ctx, path)
}

// Status reports the manager's state.
func (m *IndexManager) Status(_ context.Context) domain.IndexStatus {
	idx := m.current.Load()
	return domain.IndexStatus{
		Ready:     idx != nil,
		Building:  m.building.Load(),
		Episodes:  idx.Len(),
		LastBuild: m.lastBuild(),
	}
}

func (m *IndexManager) setLast(build domain.IndexBuild) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = &build
}

func (m *IndexManager) lastBuild() *domain.IndexBuild {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return nil
	}
	b := *m.last
	return &b
}

func (m *IndexManager) record(ctx context.Context, build domain.IndexBuild) {
	if m.catalog == nil {
		return
	}
	if err := m.catalog.Record(ctx, build); err != nil {
		logger.Warn("Recording index build failed: %v", err)
	}
}

func (m *IndexManager) latest(ctx context.Context, path string) *domain.IndexBuild {
	if m.catalog == nil {
		return nil
	}
	build, err := m.catalog.LatestBuild(ctx, path)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Reading build catalog failed: %v", err)
		}
		return nil
	}
	return build
}
