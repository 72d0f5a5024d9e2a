package matchers

import (
	"github.com/ivrit-ai/explore/internal/core/domain"
)

type trigram [3]rune

// TrigramIndex maps every three-rune shingle of the lowercased episode text
// to the segments in which the shingle starts. Shingles crossing a segment
// boundary are included, so every occurrence of a query in an episode text
// contributes all of its trigrams to that episode.
type TrigramIndex struct {
	postings map[trigram][]SegmentRef
}

func buildTrigramIndex(c *Corpus) *TrigramIndex {
	idx := &TrigramIndex{postings: make(map[trigram][]SegmentRef)}
	for ep := 0; ep < c.Len(); ep++ {
		offsets := c.Index().SegOffsets[ep]
		runes := []rune(c.Lower(ep))
		seg := 0
		for i := 0; i+3 <= len(runes); i++ {
			for seg+1 < len(offsets) && offsets[seg+1] <= i {
				seg++
			}
			key := trigram{runes[i], runes[i+1], runes[i+2]}
			idx.postings[key] = appendRef(idx.postings[key], SegmentRef{Ep: ep, Seg: seg})
		}
	}
	return idx
}

// Size returns the number of distinct trigrams.
func (t *TrigramIndex) Size() int {
	return len(t.postings)
}

// Candidates returns the sorted episodes containing every trigram of the
// lowered query. ok is false when the query is shorter than three runes.
func (t *TrigramIndex) Candidates(lowered string) (episodes []int, ok bool) {
	runes := []rune(lowered)
	if len(runes) < 3 {
		return nil, false
	}

	seen := make(map[trigram]struct{})
	first := true
	for i := 0; i+3 <= len(runes); i++ {
		key := trigram{runes[i], runes[i+1], runes[i+2]}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		eps := episodesOf(t.postings[key])
		if first {
			episodes, first = eps, false
		} else {
			episodes = intersectInts(episodes, eps)
		}
		if len(episodes) == 0 {
			return []int{}, true
		}
	}
	return episodes, true
}

// Trigram is a literal scan restricted to trigram candidate episodes.
// Every candidate is verified by the scan, so results equal Literal's.
type Trigram struct {
	literal *Literal
}

// NewTrigram creates a trigram-accelerated substring matcher.
func NewTrigram(query string) *Trigram {
	return &Trigram{literal: NewLiteral(query)}
}

// Mode implements Matcher.
func (m *Trigram) Mode() domain.MatchMode {
	return domain.MatchTrigram
}

// Match implements Matcher.
func (m *Trigram) Match(c *Corpus, r EpisodeRange) []domain.SearchHit {
	candidates, ok := c.Trigrams().Candidates(m.literal.lower)
	if !ok {
		return m.literal.Match(c, r)
	}
	r = r.clamp(c.Len())
	var hits []domain.SearchHit
	for _, ep := range candidates {
		if r.Contains(ep) {
			hits = m.literal.matchEpisode(c, ep, hits)
		}
	}
	return hits
}
