package driving

import (
	"context"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// IndexService owns the current transcript index snapshot.
type IndexService interface {
	// Get returns the current snapshot, building it on first use.
	Get(ctx context.Context) (*domain.TranscriptIndex, error)

	// Rebuild builds a new snapshot and swaps it in.
	// When block is false it returns immediately and readers keep the
	// previous snapshot until the swap.
	Rebuild(ctx context.Context, block bool) error

	// Warm makes a snapshot current, loading the persisted container at path
	// when it is fresh and force is false, building and saving otherwise.
	Warm(ctx context.Context, path string, force bool) error

	// Save persists the current snapshot to path.
	Save(ctx context.Context, path string) error

	// Load replaces the current snapshot with the container at path.
	Load(ctx context.Context, path string) error

	// Stale reports whether the container at path predates the live corpus.
	Stale(ctx context.Context, path string) (bool, error)

	// Status reports the manager's state.
	Status(ctx context.Context) domain.IndexStatus
}
