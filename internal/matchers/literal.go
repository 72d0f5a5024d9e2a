package matchers

import (
	"strings"
	"unicode/utf8"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// Literal is a case-insensitive substring scan.
// Overlapping occurrences are all reported: after a match at p the scan
// resumes at p+1.
type Literal struct {
	query string
	lower string
}

// NewLiteral creates a literal matcher.
func NewLiteral(query string) *Literal {
	return &Literal{query: query, lower: lowerRunes(query)}
}

// Mode implements Matcher.
func (m *Literal) Mode() domain.MatchMode {
	return domain.MatchLiteral
}

// Match implements Matcher.
func (m *Literal) Match(c *Corpus, r EpisodeRange) []domain.SearchHit {
	if m.lower == "" {
		return nil
	}
	r = r.clamp(c.Len())
	var hits []domain.SearchHit
	for ep := r.From; ep < r.To; ep++ {
		hits = m.matchEpisode(c, ep, hits)
	}
	return hits
}

func (m *Literal) matchEpisode(c *Corpus, ep int, hits []domain.SearchHit) []domain.SearchHit {
	scanLiteral(c.Lower(ep), m.lower, func(runeOff, _ int) {
		hits = append(hits, domain.SearchHit{EpisodeIdx: ep, CharOffset: runeOff})
	})
	return hits
}

// scanLiteral calls fn with the rune and byte position of every occurrence
// of needle in text, including overlapping ones, in ascending order.
func scanLiteral(text, needle string, fn func(runeOff, bytePos int)) {
	if needle == "" {
		return
	}
	_, step := utf8.DecodeRuneInString(needle)

	pos, runeOff := 0, 0
	counted := 0
	for pos <= len(text)-len(needle) {
		i := strings.Index(text[pos:], needle)
		if i < 0 {
			return
		}
		p := pos + i
		runeOff += utf8.RuneCountInString(text[counted:p])
		counted = p
		fn(runeOff, p)
		pos = p + step
	}
}
