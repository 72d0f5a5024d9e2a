package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivrit-ai/explore/internal/adapters/driven/config/file"
	"github.com/ivrit-ai/explore/internal/adapters/driven/storage/memory"
	"github.com/ivrit-ai/explore/internal/adapters/driven/storage/snapshot"
	"github.com/ivrit-ai/explore/internal/adapters/driven/storage/sqlite"
	"github.com/ivrit-ai/explore/internal/connectors/filesystem"
	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
	"github.com/ivrit-ai/explore/internal/core/services"
	"github.com/ivrit-ai/explore/internal/logger"
	"github.com/ivrit-ai/explore/internal/normalisers/transcript"
)

// app wires the adapters and services a command needs.
type app struct {
	settings  domain.Settings
	source    *filesystem.Connector
	catalog   driven.CatalogStore
	snapshots *snapshot.Store
	index     *services.IndexManager
	search    *services.SearchService
}

// addIndexFlags registers the flags that relocate transcripts and the index.
func addIndexFlags(cmd *cobra.Command) {
	cmd.Flags().String("data-dir", "", "transcripts directory (overrides data.transcripts_dir)")
	cmd.Flags().String("index", "", "persisted index path (overrides index.path)")
	cmd.Flags().Int("workers", 0, "index build workers (overrides index.workers)")
}

// loadSettings reads the config file and applies any flag overrides
// registered on cmd.
func loadSettings(cmd *cobra.Command) (domain.Settings, error) {
	cfg, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("loading config: %w", err)
	}
	settings, err := file.LoadSettings(cfg)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("loading config %s: %w", cfg.Path(), err)
	}

	if f := cmd.Flags().Lookup("data-dir"); f != nil && f.Changed {
		settings.TranscriptsDir = f.Value.String()
	}
	if f := cmd.Flags().Lookup("index"); f != nil && f.Changed {
		settings.IndexPath = f.Value.String()
	}
	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
		workers, err := cmd.Flags().GetInt("workers")
		if err != nil {
			return domain.Settings{}, err
		}
		settings.Workers = workers
	}
	return settings, nil
}

// openApp builds the service graph for cmd.
func openApp(cmd *cobra.Command) (*app, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	a := &app{
		settings:  settings,
		source:    filesystem.New(settings.TranscriptsDir),
		catalog:   openCatalog(settings.CatalogDir),
		snapshots: snapshot.New(),
	}
	a.index = services.NewIndexManager(
		a.source,
		transcript.New(),
		a.snapshots,
		a.catalog,
		settings.EffectiveWorkers(),
	)
	a.search = services.NewSearchService(a.index, settings)
	return a, nil
}

// Close waits for background work and releases resources.
func (a *app) Close() error {
	a.search.Wait()
	a.index.Wait()
	return errors.Join(a.source.Close(), a.catalog.Close())
}

// openCatalog opens the sqlite build catalog in dir. A catalog that cannot
// be opened is replaced by an in-memory one so searching still works; only
// the build history is lost.
func openCatalog(dir string) driven.CatalogStore {
	store, err := sqlite.NewStore(dir)
	if err != nil {
		logger.Warn("build catalog unavailable, history will not persist: %v", err)
		return memory.NewCatalogStore()
	}
	return store.CatalogStore()
}
