package matchers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// newCorpus builds a corpus with one episode per argument, each a list of
// segment texts joined the way the normaliser joins them.
func newCorpus(t *testing.T, episodes ...[]string) *Corpus {
	t.Helper()
	idx := &domain.TranscriptIndex{}
	for e, texts := range episodes {
		offsets := make([]int, len(texts))
		times := make([]float64, len(texts))
		cursor := 0
		for i, text := range texts {
			offsets[i] = cursor
			times[i] = float64(i)
			cursor += utf8.RuneCountInString(text) + 1
		}
		idx.IDs = append(idx.IDs, string(rune('a'+e)))
		idx.Text = append(idx.Text, strings.Join(texts, " "))
		idx.SegOffsets = append(idx.SegOffsets, offsets)
		idx.SegTimes = append(idx.SegTimes, times)
	}
	require.NoError(t, idx.Validate())
	return NewCorpus(idx.Seal())
}

func hit(ep, off int) domain.SearchHit {
	return domain.SearchHit{EpisodeIdx: ep, CharOffset: off}
}
