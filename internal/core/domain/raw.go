package domain

import "time"

// SourceRecord describes one raw transcript document known to a source.
// The document itself is read on demand through the source.
type SourceRecord struct {
	// ID is the stable episode identifier.
	ID string

	// Path is the document's location on disk.
	Path string

	// ModTime and Size feed the corpus fingerprint.
	ModTime time.Time
	Size    int64
}

// ChangeType represents the type of transcript file change.
type ChangeType int

const (
	// ChangeCreated indicates a new transcript file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified transcript file.
	ChangeUpdated

	// ChangeDeleted indicates a removed transcript file.
	ChangeDeleted
)

// String returns the string representation.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// SourceChange represents a change event from a watched source.
type SourceChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Path is the affected file.
	Path string
}
