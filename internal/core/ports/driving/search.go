package driving

import (
	"context"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// SearchService provides search and segment lookup to external actors.
type SearchService interface {
	// Search runs a query and returns one page of resolved results.
	// A query with no matches yields an empty page, never an error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchPage, error)

	// Segment resolves one segment by rune offset or segment index.
	Segment(ctx context.Context, req domain.SegmentRequest) (domain.Segment, error)

	// Segments resolves a batch, omitting entries whose lookup failed.
	Segments(ctx context.Context, reqs []domain.SegmentRequest) ([]domain.Segment, error)

	// Snippet returns size runes of episode text starting shortly before offset.
	Snippet(ctx context.Context, episodeIdx, offset, size int) (string, error)
}
