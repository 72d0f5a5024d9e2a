package file

import (
	"fmt"
	"path/filepath"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyTranscriptsDir     = "data.transcripts_dir"
	KeyIndexPath          = "index.path"
	KeyIndexWorkers       = "index.workers"
	KeyCatalogDir         = "index.catalog_dir"
	KeyPerPage            = "search.per_page"
	KeyProgressiveSources = "search.progressive_sources"
	KeyTrigramMinEpisodes = "search.trigram_min_episodes"
	KeyServeAddr          = "serve.addr"
	KeyRebuildInterval    = "serve.rebuild_interval"
)

// IndexFileName is the default persisted index name inside the config dir.
const IndexFileName = "index.json.gz"

// LoadSettings maps the store's keys onto domain.Settings, falling back to
// defaults for anything unset. Relative directories stay relative to the
// working directory.
func LoadSettings(store driven.ConfigStore) (domain.Settings, error) {
	s := domain.DefaultSettings()
	s.IndexPath = filepath.Join(store.Dir(), IndexFileName)
	s.CatalogDir = filepath.Join(store.Dir(), "data")

	if v := store.GetString(KeyTranscriptsDir); v != "" {
		s.TranscriptsDir = v
	}
	if v := store.GetString(KeyIndexPath); v != "" {
		s.IndexPath = v
	}
	if v := store.GetString(KeyCatalogDir); v != "" {
		s.CatalogDir = v
	}
	if v := store.GetString(KeyServeAddr); v != "" {
		s.ServeAddr = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{KeyIndexWorkers, &s.Workers},
		{KeyPerPage, &s.PerPage},
		{KeyProgressiveSources, &s.ProgressiveSources},
		{KeyTrigramMinEpisodes, &s.TrigramMinEpisodes},
	}
	for _, f := range ints {
		if _, ok := store.Get(f.key); !ok {
			continue
		}
		v := store.GetInt(f.key)
		if v < 0 {
			return s, fmt.Errorf("%w: %s must not be negative, got %d", domain.ErrInvalidInput, f.key, v)
		}
		if v > 0 || f.key == KeyIndexWorkers {
			*f.dst = v
		}
	}

	interval, err := store.GetDuration(KeyRebuildInterval)
	if err != nil {
		return s, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if _, ok := store.Get(KeyRebuildInterval); ok {
		s.RebuildInterval = interval
	}
	return s, nil
}
