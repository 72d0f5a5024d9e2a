package matchers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

func trigramCorpus(t *testing.T) *Corpus {
	return newCorpus(t,
		[]string{"the quick brown fox", "jumps over the lazy dog"},
		[]string{"שלום עולם", "עולם אחר"},
		[]string{"banana bandana", "ana"},
		[]string{"quick"},
		[]string{"no match here"},
	)
}

func TestTrigram_EqualsLiteral(t *testing.T) {
	c := trigramCorpus(t)

	queries := []string{
		"the", "quick", "QUICK", "fox jumps", "x ju", "עולם", "ם ע", "ana", "anana",
		"and", "lazy dog", "zzz", "nothing", "o m",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			assert.Equal(t, NewLiteral(q).Match(c, c.All()), NewTrigram(q).Match(c, c.All()))
		})
	}
}

func TestTrigram_CrossSegmentOccurrence(t *testing.T) {
	c := trigramCorpus(t)

	// "fox jumps" spans the boundary between the first two segments.
	hits := NewTrigram("fox jumps").Match(c, c.All())

	assert.Equal(t, []domain.SearchHit{hit(0, 16)}, hits)
}

func TestTrigram_ShortQueryFallsBack(t *testing.T) {
	c := trigramCorpus(t)

	_, ok := c.Trigrams().Candidates("an")
	assert.False(t, ok)
	assert.Equal(t, NewLiteral("an").Match(c, c.All()), NewTrigram("an").Match(c, c.All()))
}

func TestTrigram_Candidates(t *testing.T) {
	c := trigramCorpus(t)

	eps, ok := c.Trigrams().Candidates("quick")
	assert.True(t, ok)
	assert.Equal(t, []int{0, 3}, eps)

	eps, ok = c.Trigrams().Candidates("qqq")
	assert.True(t, ok)
	assert.Empty(t, eps)

	assert.Positive(t, c.Trigrams().Size())
}

func TestTrigram_Range(t *testing.T) {
	c := trigramCorpus(t)

	hits := NewTrigram("quick").Match(c, EpisodeRange{From: 1, To: 5})

	assert.Equal(t, []domain.SearchHit{hit(3, 0)}, hits)
	assert.Equal(t, domain.MatchTrigram, NewTrigram("quick").Mode())
}
