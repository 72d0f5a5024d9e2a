package matchers

import (
	"strings"
	"sync"
	"unicode"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// Corpus is a TranscriptIndex snapshot plus its derived search structures.
// It is safe for concurrent use.
type Corpus struct {
	idx *domain.TranscriptIndex

	lowerOnce sync.Once
	lower     []string

	wordsOnce sync.Once
	words     *WordIndex

	trigramsOnce sync.Once
	trigrams     *TrigramIndex
}

// NewCorpus wraps a sealed snapshot.
func NewCorpus(idx *domain.TranscriptIndex) *Corpus {
	return &Corpus{idx: idx}
}

// Index returns the wrapped snapshot.
func (c *Corpus) Index() *domain.TranscriptIndex {
	return c.idx
}

// Len returns the number of episodes.
func (c *Corpus) Len() int {
	return c.idx.Len()
}

// All returns the range covering every episode.
func (c *Corpus) All() EpisodeRange {
	return EpisodeRange{From: 0, To: c.Len()}
}

// Lower returns episode ep's text lowercased rune by rune.
func (c *Corpus) Lower(ep int) string {
	c.lowerOnce.Do(func() {
		c.lower = make([]string, c.idx.Len())
		for e, text := range c.idx.Text {
			c.lower[e] = lowerRunes(text)
		}
	})
	return c.lower[ep]
}

// Words returns the word inverted index, building it on first use.
func (c *Corpus) Words() *WordIndex {
	c.wordsOnce.Do(func() {
		c.words = buildWordIndex(c)
	})
	return c.words
}

// Trigrams returns the trigram index, building it on first use.
func (c *Corpus) Trigrams() *TrigramIndex {
	c.trigramsOnce.Do(func() {
		c.trigrams = buildTrigramIndex(c)
	})
	return c.trigrams
}

// EpisodeRange is a half-open range of episode indexes [From, To).
type EpisodeRange struct {
	From int
	To   int
}

// Contains reports whether episode ep is in the range.
func (r EpisodeRange) Contains(ep int) bool {
	return ep >= r.From && ep < r.To
}

// clamp limits the range to the corpus.
func (r EpisodeRange) clamp(n int) EpisodeRange {
	r.From = max(r.From, 0)
	r.To = min(r.To, n)
	if r.To < r.From {
		r.To = r.From
	}
	return r
}

// lowerRunes lowercases s without changing its rune count.
func lowerRunes(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// isWord reports whether r is a word character: a letter, number, mark
// or underscore.
func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
