package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Index Errors.

	// ErrIndexBuild indicates a raw transcript document does not match any
	// recognised shape. A single failure never aborts a whole build.
	ErrIndexBuild = errors.New("index build failed")

	// ErrIndexLoad indicates a persisted index container is missing, corrupt,
	// or lacks one of the required keys.
	ErrIndexLoad = errors.New("index load failed")

	// ErrIndexUnavailable indicates no transcript index could be produced.
	ErrIndexUnavailable = errors.New("transcript index unavailable")

	// Lookup and Match Errors.

	// ErrSegmentIndex indicates a segment index is out of range for an episode.
	ErrSegmentIndex = errors.New("segment index out of range")

	// ErrMatch indicates a caller-supplied pattern failed to compile.
	// Search recovers from it by falling back to literal matching.
	ErrMatch = errors.New("invalid match pattern")
)
