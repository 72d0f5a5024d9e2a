package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Segment is a time-bounded span of transcript text within an episode.
// Segments are derived on demand and never stored in the index.
type Segment struct {
	// EpisodeIdx indexes into TranscriptIndex.IDs.
	EpisodeIdx int `json:"episode_idx"`

	// Source is the owning episode's id.
	Source string `json:"source"`

	// SegIdx is the segment's position within the episode.
	SegIdx int `json:"segment_index"`

	// Text is the segment's slice of the full text, whitespace-trimmed.
	Text string `json:"text"`

	// StartSec is the segment's start time in seconds.
	StartSec float64 `json:"start_sec"`

	// Start and End bound the segment's half-open rune range [Start, End).
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the rune offset lies within the segment's range.
func (s Segment) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// SegmentForHit returns the segment of episode ep that owns the rune offset.
// It binary-searches the episode's segment offsets for the rightmost
// offset not greater than charOffset.
func SegmentForHit(idx *TranscriptIndex, ep, charOffset int) (Segment, error) {
	if ep < 0 || ep >= idx.Len() {
		return Segment{}, fmt.Errorf("episode %d: %w", ep, ErrNotFound)
	}
	if charOffset < 0 || charOffset >= idx.TextLen(ep) {
		return Segment{}, fmt.Errorf("%w: offset %d outside episode %d (length %d)",
			ErrInvalidInput, charOffset, ep, idx.TextLen(ep))
	}

	offsets := idx.SegOffsets[ep]
	// First offset strictly greater than charOffset, minus one.
	seg := sort.Search(len(offsets), func(i int) bool {
		return offsets[i] > charOffset
	}) - 1
	if seg < 0 {
		return Segment{}, fmt.Errorf("%w: no segment owns offset %d in episode %d",
			ErrSegmentIndex, charOffset, ep)
	}
	return buildSegment(idx, ep, seg), nil
}

// SegmentByIdx returns segment seg of episode ep.
// Fails with ErrSegmentIndex when seg is outside [0, SegmentCount(ep)).
func SegmentByIdx(idx *TranscriptIndex, ep, seg int) (Segment, error) {
	if ep < 0 || ep >= idx.Len() {
		return Segment{}, fmt.Errorf("episode %d: %w", ep, ErrNotFound)
	}
	if seg < 0 || seg >= idx.SegmentCount(ep) {
		return Segment{}, fmt.Errorf("%w: segment %d of episode %d (count %d)",
			ErrSegmentIndex, seg, ep, idx.SegmentCount(ep))
	}
	return buildSegment(idx, ep, seg), nil
}

func buildSegment(idx *TranscriptIndex, ep, seg int) Segment {
	text := idx.Text[ep]
	offsets := idx.SegOffsets[ep]

	end := idx.TextLen(ep)
	byteEnd := len(text)
	if seg+1 < len(offsets) {
		end = offsets[seg+1]
		byteEnd = idx.byteOffset(ep, seg+1)
	}
	byteStart := idx.byteOffset(ep, seg)

	return Segment{
		EpisodeIdx: ep,
		Source:     idx.IDs[ep],
		SegIdx:     seg,
		Text:       strings.TrimSpace(text[byteStart:byteEnd]),
		StartSec:   idx.SegTimes[ep][seg],
		Start:      offsets[seg],
		End:        end,
	}
}
