package driven

import (
	"context"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// CatalogStore records index builds, saves and loads.
type CatalogStore interface {
	// Record stores a catalog entry.
	Record(ctx context.Context, build domain.IndexBuild) error

	// LatestBuild returns the most recent entry for path.
	// Returns domain.ErrNotFound if none exists.
	LatestBuild(ctx context.Context, path string) (*domain.IndexBuild, error)

	// ListBuilds returns up to limit entries, newest first.
	ListBuilds(ctx context.Context, limit int) ([]domain.IndexBuild, error)

	// Close releases resources.
	Close() error
}
