package domain

import (
	"runtime"
	"time"
)

// MaxBuildWorkers caps the index build worker pool.
const MaxBuildWorkers = 16

// MaxPerPage caps the page size a caller may request.
const MaxPerPage = 1000

// Settings holds the tunable parameters of the engine.
// Zero values are replaced by DefaultSettings.
type Settings struct {
	// TranscriptsDir is the root directory scanned for transcript documents.
	TranscriptsDir string

	// IndexPath is the persisted index container.
	IndexPath string

	// CatalogDir holds the build catalog database.
	CatalogDir string

	// Workers is the index build pool size; 0 means min(NumCPU, MaxBuildWorkers).
	Workers int

	// PerPage is the default page size.
	PerPage int

	// ProgressiveSources is how many episodes a progressive first page scans
	// synchronously before handing the rest to a background task.
	ProgressiveSources int

	// TrigramMinEpisodes is the corpus size from which substring search uses
	// the trigram index instead of a full scan.
	TrigramMinEpisodes int

	// ServeAddr is the HTTP listen address of the MCP server.
	ServeAddr string

	// RebuildInterval is the minimum spacing between watcher-triggered rebuilds.
	RebuildInterval time.Duration
}

// DefaultSettings returns settings with defaults for every field.
func DefaultSettings() Settings {
	return Settings{
		TranscriptsDir:     "data/json",
		PerPage:            100,
		ProgressiveSources: 50,
		TrigramMinEpisodes: 64,
		ServeAddr:          "127.0.0.1:8765",
		RebuildInterval:    30 * time.Second,
	}
}

// EffectiveWorkers returns the build pool size to use.
func (s Settings) EffectiveWorkers() int {
	if s.Workers > 0 {
		return min(s.Workers, MaxBuildWorkers)
	}
	return min(runtime.NumCPU(), MaxBuildWorkers)
}
