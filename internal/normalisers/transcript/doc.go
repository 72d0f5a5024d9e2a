// Package transcript normalises raw transcript documents.
//
// A document is either {"segments": [...]} or a bare list of segments, each
// segment carrying a "text" string and a numeric "start" time in seconds.
// Segment texts are NFC-normalised and joined by single spaces; each
// segment's offset is the rune position at which its text begins.
package transcript
