package driven

import (
	"context"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// SnapshotStore persists transcript index snapshots as a single container.
type SnapshotStore interface {
	// Save writes the index to path, replacing any existing container.
	Save(ctx context.Context, idx *domain.TranscriptIndex, path string) error

	// Load reads, validates and seals the container at path.
	// Any failure wraps domain.ErrIndexLoad.
	Load(ctx context.Context, path string) (*domain.TranscriptIndex, error)

	// Exists reports whether a container is present at path.
	Exists(path string) bool
}
