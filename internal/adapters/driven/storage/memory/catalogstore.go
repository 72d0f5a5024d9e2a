package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore keeps index build entries in a slice, oldest first.
type CatalogStore struct {
	mu     sync.RWMutex
	builds []domain.IndexBuild
}

// NewCatalogStore creates an empty catalog.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

// Record appends a catalog entry.
func (s *CatalogStore) Record(ctx context.Context, build domain.IndexBuild) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if build.ID == "" || build.Origin == "" {
		return fmt.Errorf("%w: build id and origin are required", domain.ErrInvalidInput)
	}
	if build.CreatedAt.IsZero() {
		build.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds = append(s.builds, build)
	return nil
}

// LatestBuild returns the most recent entry for path.
func (s *CatalogStore) LatestBuild(ctx context.Context, path string) (*domain.IndexBuild, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.IndexBuild
	for i := range s.builds {
		b := &s.builds[i]
		if b.Path != path {
			continue
		}
		// Later appends win ties, matching insertion order.
		if latest == nil || !b.CreatedAt.Before(latest.CreatedAt) {
			latest = b
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("index build for %s: %w", path, domain.ErrNotFound)
	}
	found := *latest
	return &found, nil
}

// ListBuilds returns up to limit entries, newest first.
func (s *CatalogStore) ListBuilds(ctx context.Context, limit int) ([]domain.IndexBuild, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := make([]domain.IndexBuild, len(s.builds))
	copy(ordered, s.builds)
	// Stable on insertion order, so reverse first and then sort by time.
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}
	sortNewestFirst(ordered)

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered, nil
}

// Close is a no-op.
func (s *CatalogStore) Close() error {
	return nil
}

func sortNewestFirst(builds []domain.IndexBuild) {
	sort.SliceStable(builds, func(i, j int) bool {
		return builds[i].CreatedAt.After(builds[j].CreatedAt)
	})
}
