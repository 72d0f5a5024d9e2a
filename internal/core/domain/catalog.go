package domain

import "time"

// IndexOrigin records how a snapshot came to be current.
type IndexOrigin string

// Available origins.
const (
	// OriginBuilt means the snapshot was built from raw sources.
	OriginBuilt IndexOrigin = "built"

	// OriginLoaded means the snapshot was restored from a persisted container.
	OriginLoaded IndexOrigin = "loaded"
)

// IndexBuild is one catalog entry describing a persisted snapshot.
type IndexBuild struct {
	// ID uniquely identifies the entry.
	ID string `json:"id"`

	// Path is the persisted container the entry describes.
	Path string `json:"path"`

	// Fingerprint summarises the source records the snapshot was built from.
	Fingerprint string `json:"fingerprint"`

	// Origin tells whether the snapshot was built or loaded.
	Origin IndexOrigin `json:"origin"`

	// Episodes is the number of indexed episodes.
	Episodes int `json:"episodes"`

	// Skipped is the number of records rejected during the build.
	Skipped int `json:"skipped"`

	// Duration is how long the build or load took.
	Duration time.Duration `json:"duration_ns"`

	// CreatedAt is when the entry was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// IndexStatus is a point-in-time view of the Index Manager.
type IndexStatus struct {
	// Ready is true once a snapshot is being served.
	Ready bool `json:"ready"`

	// Building is true while a rebuild is running.
	Building bool `json:"building"`

	// Episodes is the current snapshot's episode count.
	Episodes int `json:"episodes"`

	// LastBuild describes the most recent build or load, if any.
	LastBuild *IndexBuild `json:"last_build,omitempty"`
}
