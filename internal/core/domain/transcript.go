package domain

import (
	"fmt"
	"unicode/utf8"
)

// TranscriptIndex is an immutable snapshot of every indexed episode.
// The four exported sequences are parallel: position e in each describes
// the same episode. A TranscriptIndex is never mutated after Seal.
type TranscriptIndex struct {
	// IDs holds the unique episode identifiers in build order.
	IDs []string

	// Text holds each episode's full concatenated transcript.
	Text []string

	// SegOffsets holds, per episode, the rune offset at which each segment
	// begins within Text. Strictly increasing and starting at 0.
	SegOffsets [][]int

	// SegTimes holds, per episode, each segment's start time in seconds.
	SegTimes [][]float64

	// Derived lookup tables, populated by Seal.
	textLens []int
	segBytes [][]int
	sealed   bool
}

// NormalisedTranscript is the Transcript Normaliser's output for one episode.
type NormalisedTranscript struct {
	// FullText is the segment texts joined by single spaces.
	FullText string

	// Offsets are the rune offsets at which each segment begins.
	Offsets []int

	// Times are the segment start times in seconds.
	Times []float64
}

// Len returns the number of episodes.
func (idx *TranscriptIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.IDs)
}

// SegmentCount returns the number of segments in episode ep.
// Returns 0 for an unknown episode.
func (idx *TranscriptIndex) SegmentCount(ep int) int {
	if ep < 0 || ep >= idx.Len() || ep >= len(idx.SegOffsets) {
		return 0
	}
	return len(idx.SegOffsets[ep])
}

// TextLen returns the length of episode ep's full text in runes.
func (idx *TranscriptIndex) TextLen(ep int) int {
	if idx.sealed {
		return idx.textLens[ep]
	}
	return utf8.RuneCountInString(idx.Text[ep])
}

// Seal computes the derived lookup tables. It must be called once, before the
// index is shared between goroutines; the builder and loader both do so.
func (idx *TranscriptIndex) Seal() *TranscriptIndex {
	idx.textLens = make([]int, len(idx.Text))
	idx.segBytes = make([][]int, len(idx.Text))
	for e, text := range idx.Text {
		idx.textLens[e] = utf8.RuneCountInString(text)
		if e < len(idx.SegOffsets) {
			idx.segBytes[e] = runeToByteOffsets(text, idx.SegOffsets[e])
		}
	}
	idx.sealed = true
	return idx
}

// byteOffset returns the byte position of segment seg in episode ep.
func (idx *TranscriptIndex) byteOffset(ep, seg int) int {
	if idx.sealed {
		return idx.segBytes[ep][seg]
	}
	return RuneToByte(idx.Text[ep], idx.SegOffsets[ep][seg])
}

// Validate checks the structural invariants of the index.
func (idx *TranscriptIndex) Validate() error {
	n := len(idx.IDs)
	if len(idx.Text) != n || len(idx.SegOffsets) != n || len(idx.SegTimes) != n {
		return fmt.Errorf("%w: sequence lengths differ (ids=%d text=%d seg_offsets=%d seg_times=%d)",
			ErrInvalidInput, n, len(idx.Text), len(idx.SegOffsets), len(idx.SegTimes))
	}

	seen := make(map[string]struct{}, n)
	for e := 0; e < n; e++ {
		if _, dup := seen[idx.IDs[e]]; dup {
			return fmt.Errorf("%w: duplicate episode id %q", ErrInvalidInput, idx.IDs[e])
		}
		seen[idx.IDs[e]] = struct{}{}

		offsets := idx.SegOffsets[e]
		if len(offsets) != len(idx.SegTimes[e]) {
			return fmt.Errorf("%w: episode %q has %d offsets but %d times",
				ErrInvalidInput, idx.IDs[e], len(offsets), len(idx.SegTimes[e]))
		}
		if len(offsets) == 0 {
			return fmt.Errorf("%w: episode %q has no segments", ErrInvalidInput, idx.IDs[e])
		}
		if offsets[0] != 0 {
			return fmt.Errorf("%w: episode %q first offset is %d, want 0", ErrInvalidInput, idx.IDs[e], offsets[0])
		}
		for i := 1; i < len(offsets); i++ {
			if offsets[i] <= offsets[i-1] {
				return fmt.Errorf("%w: episode %q offsets not strictly increasing at segment %d",
					ErrInvalidInput, idx.IDs[e], i)
			}
		}
		if last := offsets[len(offsets)-1]; last > idx.TextLen(e) {
			return fmt.Errorf("%w: episode %q offset %d beyond text length %d",
				ErrInvalidInput, idx.IDs[e], last, idx.TextLen(e))
		}
	}
	return nil
}

// Equal reports whether two indexes hold identical data, field by field.
func (idx *TranscriptIndex) Equal(other *TranscriptIndex) bool {
	if idx.Len() != other.Len() || len(idx.Text) != len(other.Text) {
		return false
	}
	for e := range idx.IDs {
		if idx.IDs[e] != other.IDs[e] || idx.Text[e] != other.Text[e] {
			return false
		}
		if len(idx.SegOffsets[e]) != len(other.SegOffsets[e]) || len(idx.SegTimes[e]) != len(other.SegTimes[e]) {
			return false
		}
		for i := range idx.SegOffsets[e] {
			if idx.SegOffsets[e][i] != other.SegOffsets[e][i] {
				return false
			}
		}
		for i := range idx.SegTimes[e] {
			if idx.SegTimes[e][i] != other.SegTimes[e][i] {
				return false
			}
		}
	}
	return true
}

// RuneToByte converts a rune offset within s to a byte offset.
// Offsets past the end clamp to len(s).
func RuneToByte(s string, runeOff int) int {
	if runeOff <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == runeOff {
			return i
		}
		n++
	}
	return len(s)
}

// runeToByteOffsets converts ascending rune offsets to byte offsets in one pass.
func runeToByteOffsets(s string, offsets []int) []int {
	out := make([]int, len(offsets))
	k, n := 0, 0
	for i := range s {
		for k < len(offsets) && offsets[k] <= n {
			out[k] = i
			k++
		}
		n++
	}
	for ; k < len(offsets); k++ {
		out[k] = len(s)
	}
	return out
}
