package driven

import (
	"context"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// TranscriptSource supplies raw transcript documents.
// The filesystem connector is the only implementation.
type TranscriptSource interface {
	// Records lists every document the source knows about, sorted by ID.
	Records(ctx context.Context) ([]domain.SourceRecord, error)

	// ReadDocument returns the decompressed bytes of a record's document.
	ReadDocument(ctx context.Context, rec domain.SourceRecord) ([]byte, error)

	// Close releases resources.
	Close() error
}

// WatchableSource is a TranscriptSource that can push change events.
type WatchableSource interface {
	TranscriptSource

	// Watch listens for document changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.SourceChange, error)
}
