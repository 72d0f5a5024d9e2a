package matchers

import (
	"strings"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// WordAND finds segments containing every whitespace-separated token of the
// query. Each token matches indexed words by prefix; a token with no index
// matches falls back to a literal scan of its own before the intersection
// concludes there is nothing to find. Each matching segment yields one hit
// at the segment's start offset.
type WordAND struct {
	tokens []string
}

// NewWordAND creates a multi-token AND matcher.
func NewWordAND(query string) *WordAND {
	return &WordAND{tokens: strings.Fields(lowerRunes(query))}
}

// Mode implements Matcher.
func (m *WordAND) Mode() domain.MatchMode {
	return domain.MatchWordAND
}

// Tokens returns the lowered query tokens.
func (m *WordAND) Tokens() []string {
	return m.tokens
}

// Match implements Matcher.
func (m *WordAND) Match(c *Corpus, r EpisodeRange) []domain.SearchHit {
	if len(m.tokens) == 0 {
		return nil
	}
	r = r.clamp(c.Len())

	var segments []SegmentRef
	for i, token := range m.tokens {
		refs := c.Words().Prefix(token)
		if len(refs) == 0 {
			refs = scanSegments(c, token, r)
		}
		if i == 0 {
			segments = refs
		} else {
			segments = intersectRefs(segments, refs)
		}
		if len(segments) == 0 {
			return nil
		}
	}

	var hits []domain.SearchHit
	for _, ref := range segments {
		if r.Contains(ref.Ep) {
			hits = append(hits, domain.SearchHit{
				EpisodeIdx: ref.Ep,
				CharOffset: c.Index().SegOffsets[ref.Ep][ref.Seg],
			})
		}
	}
	return hits
}

// scanSegments finds the segments in which a literal occurrence of token
// starts, restricted to episodes r.
func scanSegments(c *Corpus, token string, r EpisodeRange) []SegmentRef {
	var refs []SegmentRef
	for ep := r.From; ep < r.To; ep++ {
		offsets := c.Index().SegOffsets[ep]
		seg := 0
		scanLiteral(c.Lower(ep), token, func(runeOff, _ int) {
			for seg+1 < len(offsets) && offsets[seg+1] <= runeOff {
				seg++
			}
			refs = appendRef(refs, SegmentRef{Ep: ep, Seg: seg})
		})
	}
	return refs
}
