package driven

import (
	"context"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// Normaliser transforms one raw transcript document into indexed form.
type Normaliser interface {
	// Normalise converts the document's segments into the full text plus
	// per-segment rune offsets and start times.
	// Unrecognised document shapes fail with domain.ErrIndexBuild.
	Normalise(ctx context.Context, raw []byte) (*domain.NormalisedTranscript, error)
}
