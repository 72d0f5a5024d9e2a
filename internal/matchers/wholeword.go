package matchers

import (
	"strings"
	"unicode/utf8"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// WholeWord matches a token only where it is bounded by word boundaries on
// both sides, so "cat" matches in "the cat sat" but not in "category".
//
// A boundary sits between a word and a non-word character, where word
// characters are Unicode letters, digits, combining marks and underscore.
type WholeWord struct {
	lower      string
	accelerate bool
	first      rune
	last       rune
}

// NewWholeWord creates a whole-word matcher. With accelerate set, candidate
// episodes come from the word index.
func NewWholeWord(query string, accelerate bool) *WholeWord {
	lower := lowerRunes(query)
	first, _ := utf8.DecodeRuneInString(lower)
	last, _ := utf8.DecodeLastRuneInString(lower)
	return &WholeWord{lower: lower, accelerate: accelerate, first: first, last: last}
}

// Mode implements Matcher.
func (m *WholeWord) Mode() domain.MatchMode {
	return domain.MatchWholeWord
}

// Match implements Matcher.
func (m *WholeWord) Match(c *Corpus, r EpisodeRange) []domain.SearchHit {
	if m.lower == "" {
		return nil
	}
	r = r.clamp(c.Len())

	var hits []domain.SearchHit
	if m.accelerate && !strings.Contains(m.lower, "-") {
		// A bounded all-word-character match is exactly an indexed token.
		for _, ep := range episodesOf(c.Words().Lookup(m.lower)) {
			if r.Contains(ep) {
				hits = m.matchEpisode(c, ep, hits)
			}
		}
		return hits
	}

	for ep := r.From; ep < r.To; ep++ {
		hits = m.matchEpisode(c, ep, hits)
	}
	return hits
}

func (m *WholeWord) matchEpisode(c *Corpus, ep int, hits []domain.SearchHit) []domain.SearchHit {
	text := c.Lower(ep)
	scanLiteral(text, m.lower, func(runeOff, p int) {
		if m.bounded(text, p) {
			hits = append(hits, domain.SearchHit{EpisodeIdx: ep, CharOffset: runeOff})
		}
	})
	return hits
}

// bounded reports whether a match at byte p has a boundary on both sides.
func (m *WholeWord) bounded(text string, p int) bool {
	before := false
	if p > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:p])
		before = isWord(r)
	}
	end := p + len(m.lower)
	after := false
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		after = isWord(r)
	}
	return before != isWord(m.first) && after != isWord(m.last)
}
