package matchers

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// Regex matches a caller-supplied pattern, compiled case-insensitively.
type Regex struct {
	re *regexp.Regexp
}

// NewRegex compiles pattern. If it does not compile, NewRegex returns a
// Literal matcher for the raw pattern and an error wrapping domain.ErrMatch.
func NewRegex(pattern string) (Matcher, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return NewLiteral(pattern), fmt.Errorf("%w: %q: %v", domain.ErrMatch, pattern, err)
	}
	return &Regex{re: re}, nil
}

// Mode implements Matcher.
func (m *Regex) Mode() domain.MatchMode {
	return domain.MatchRegex
}

// Match implements Matcher.
func (m *Regex) Match(c *Corpus, r EpisodeRange) []domain.SearchHit {
	r = r.clamp(c.Len())
	var hits []domain.SearchHit
	for ep := r.From; ep < r.To; ep++ {
		text := c.Index().Text[ep]
		runeOff, counted := 0, 0
		for _, loc := range m.re.FindAllStringIndex(text, -1) {
			// An empty match at the very end has no character to point at.
			if loc[0] == len(text) {
				break
			}
			runeOff += utf8.RuneCountInString(text[counted:loc[0]])
			counted = loc[0]
			hits = append(hits, domain.SearchHit{EpisodeIdx: ep, CharOffset: runeOff})
		}
	}
	return hits
}
