// Package domain defines the core entities of the Explore transcript search engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TranscriptIndex: An immutable snapshot of every indexed episode
//   - Segment: A time-bounded span of transcript text within an episode
//   - SearchHit: A single match location (episode, character offset)
//   - SourceRecord: One raw transcript document known to a source
//
// It also hosts the Segment Locator (SegmentForHit, SegmentByIdx), which is
// a pure function of a TranscriptIndex.
//
// # Character Offsets
//
// All offsets are Unicode code point (rune) positions within an episode's
// full concatenated text, never byte positions.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
