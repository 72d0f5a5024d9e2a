package matchers

import (
	"sort"
	"strings"
)

// WordIndex maps lowercase tokens to the segments containing them.
// A token is a maximal run of word characters and belongs to the segment in
// which it starts.
type WordIndex struct {
	postings map[string][]SegmentRef
	terms    []string
}

func buildWordIndex(c *Corpus) *WordIndex {
	idx := &WordIndex{postings: make(map[string][]SegmentRef)}
	for ep := 0; ep < c.Len(); ep++ {
		offsets := c.Index().SegOffsets[ep]
		seg := 0
		forEachToken(c.Lower(ep), func(token string, runeOff int) {
			for seg+1 < len(offsets) && offsets[seg+1] <= runeOff {
				seg++
			}
			idx.postings[token] = appendRef(idx.postings[token], SegmentRef{Ep: ep, Seg: seg})
		})
	}

	idx.terms = make([]string, 0, len(idx.postings))
	for term := range idx.postings {
		idx.terms = append(idx.terms, term)
	}
	sort.Strings(idx.terms)
	return idx
}

// Terms returns the number of distinct tokens.
func (w *WordIndex) Terms() int {
	return len(w.terms)
}

// Lookup returns the segments containing token exactly.
func (w *WordIndex) Lookup(token string) []SegmentRef {
	return w.postings[lowerRunes(token)]
}

// Prefix returns the segments containing any token that starts with prefix,
// sorted by episode and segment.
func (w *WordIndex) Prefix(prefix string) []SegmentRef {
	prefix = lowerRunes(prefix)
	if prefix == "" {
		return nil
	}
	var out []SegmentRef
	for i := sort.SearchStrings(w.terms, prefix); i < len(w.terms); i++ {
		if !strings.HasPrefix(w.terms[i], prefix) {
			break
		}
		out = unionRefs(out, w.postings[w.terms[i]])
	}
	return out
}

// forEachToken calls fn with every token of text and its rune offset.
func forEachToken(text string, fn func(token string, runeOff int)) {
	start, startRune := -1, 0
	runeOff := 0
	for i, r := range text {
		if isWord(r) {
			if start < 0 {
				start, startRune = i, runeOff
			}
		} else if start >= 0 {
			fn(text[start:i], startRune)
			start = -1
		}
		runeOff++
	}
	if start >= 0 {
		fn(text[start:], startRune)
	}
}
