package matchers

import (
	"strings"
	"unicode"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// Matcher finds hits for one query.
type Matcher interface {
	// Mode names the strategy.
	Mode() domain.MatchMode

	// Match returns the hits within episodes r, ordered by episode and
	// ascending rune offset.
	Match(c *Corpus, r EpisodeRange) []domain.SearchHit
}

// isWordQuery reports whether query is a single token of word characters
// and hyphens, using the same word characters as whole-word boundaries.
func isWordQuery(query string) bool {
	if query == "" {
		return false
	}
	for _, r := range query {
		if r != '-' && !isWord(r) {
			return false
		}
	}
	return true
}

// Select picks the matcher for a query. The query must already be trimmed
// and NFC-normalised. With accelerate set, substring and whole-word matching
// use the trigram and word indexes.
//
// An invalid regex returns a Literal matcher for the raw pattern together
// with an error wrapping domain.ErrMatch; the matcher is always usable.
func Select(query string, opts domain.SearchOptions, accelerate bool) (Matcher, error) {
	switch {
	case opts.Regex:
		return NewRegex(query)
	case opts.Substring:
		return substring(query, accelerate), nil
	case isWordQuery(query):
		return NewWholeWord(query, accelerate), nil
	case strings.ContainsFunc(query, unicode.IsSpace):
		return NewWordAND(query), nil
	default:
		return substring(query, accelerate), nil
	}
}

func substring(query string, accelerate bool) Matcher {
	if accelerate {
		return NewTrigram(query)
	}
	return NewLiteral(query)
}
