// Package filesystem discovers raw transcript documents under a local
// directory tree and watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/klauspost/compress/gzip"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
	"github.com/ivrit-ai/explore/internal/logger"
)

// transcriptName is the file name used by the nested <source>/<id>/ layout.
const transcriptName = "full_transcript"

// Connector implements driven.WatchableSource for a local directory.
type Connector struct {
	rootPath string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

var _ driven.WatchableSource = (*Connector)(nil)

// New creates a connector rooted at rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// RootPath returns the scanned directory.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Records walks the root for *.json and *.json.gz documents.
// Hidden files and directories are skipped. Duplicate IDs are reported
// with a warning and kept; the result is sorted by ID.
func (c *Connector) Records(ctx context.Context) ([]domain.SourceRecord, error) {
	if err := c.checkRoot(); err != nil {
		return nil, err
	}

	var records []domain.SourceRecord
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Cannot access %s: %v", path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != c.rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isTranscriptFile(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("Cannot stat %s: %v", path, err)
			return nil
		}
		records = append(records, domain.SourceRecord{
			ID:      recordID(path),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", c.rootPath, err)
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	if dups := duplicateIDs(records); len(dups) > 0 {
		logger.Warn("Duplicate transcript ids detected: %s", strings.Join(dups, ", "))
	}
	logger.Debug("Discovered %d transcript documents under %s", len(records), c.rootPath)
	return records, nil
}

// ReadDocument returns the document's bytes, decompressing .gz files.
func (c *Connector) ReadDocument(ctx context.Context, rec domain.SourceRecord) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(rec.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", rec.Path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(rec.Path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexBuild, rec.Path, err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rec.Path, err)
	}
	return data, nil
}

// Watch reports transcript changes under the root until ctx is cancelled.
// Directories created after Watch starts are watched too.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.SourceChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("connector is closed")
	}
	if err := c.checkRoot(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(watcher, c.rootPath); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	if c.watcher != nil {
		_ = c.watcher.Close()
	}
	c.watcher = watcher

	changes := make(chan domain.SourceChange)
	go c.watchLoop(ctx, watcher, changes)
	return changes, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- domain.SourceChange) {
	defer close(changes)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && !isHidden(filepath.Base(event.Name)) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("Cannot watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Transcript watcher error: %v", err)
		}
	}
}

// handleFsEvent maps an fsnotify event to a change, or nil when the event
// does not concern a visible transcript document.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.SourceChange {
	if isHidden(c.relative(event.Name)) || !isTranscriptFile(event.Name) {
		return nil
	}

	var kind domain.ChangeType
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		kind = domain.ChangeDeleted
	case event.Has(fsnotify.Create):
		kind = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		kind = domain.ChangeUpdated
	default:
		return nil
	}

	if kind != domain.ChangeDeleted {
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
	}
	return &domain.SourceChange{Type: kind, Path: event.Name}
}

// Close stops any active watch. It is idempotent.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

func (c *Connector) checkRoot() error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("root path error: %s does not exist", c.rootPath)
		}
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// relative returns path relative to the root, or path itself when it lies
// outside the root.
func (c *Connector) relative(path string) string {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// addTree watches dir and every visible directory below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// recordID derives the episode id from a document path. Nested documents
// named full_transcript.json[.gz] take <grandparent>/<parent>; any other
// document takes its own name without the extension.
func recordID(path string) string {
	stem := trimTranscriptExt(filepath.Base(path))
	if stem != transcriptName {
		return stem
	}
	parent := filepath.Dir(path)
	return filepath.Base(filepath.Dir(parent)) + "/" + filepath.Base(parent)
}

func isTranscriptFile(path string) bool {
	name := filepath.Base(path)
	return trimTranscriptExt(name) != name
}

func trimTranscriptExt(name string) string {
	for _, ext := range []string{".json.gz", ".json"} {
		if stem, ok := strings.CutSuffix(name, ext); ok && stem != "" {
			return stem
		}
	}
	return name
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func duplicateIDs(sorted []domain.SourceRecord) []string {
	var dups []string
	for i := 1; i < len(sorted); i++ {
		if sorted[i].ID == sorted[i-1].ID && (len(dups) == 0 || dups[len(dups)-1] != sorted[i].ID) {
			dups = append(dups, sorted[i].ID)
		}
	}
	return dups
}
