// Package snapshot persists transcript index snapshots as a single
// gzip-compressed JSON container with the keys ids, text, seg_offsets and
// seg_times. Writers hold an exclusive file lock and replace the container
// atomically; readers hold a shared lock.
package snapshot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzip"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// lockRetry is how often a blocked lock attempt is retried.
const lockRetry = 50 * time.Millisecond

// requiredKeys lists every key a container must carry.
var requiredKeys = []string{"ids", "text", "seg_offsets", "seg_times"}

// container is the on-disk layout.
type container struct {
	IDs        []string    `json:"ids"`
	Text       []string    `json:"text"`
	SegOffsets [][]int     `json:"seg_offsets"`
	SegTimes   [][]float64 `json:"seg_times"`
}

// Store implements driven.SnapshotStore on the local filesystem.
type Store struct {
	level int
}

var _ driven.SnapshotStore = (*Store)(nil)

// New creates a snapshot store using the default gzip level.
func New() *Store {
	return &Store{level: gzip.DefaultCompression}
}

// Exists reports whether a container is present at path.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Save writes the index to path, replacing any existing container.
func (s *Store) Save(ctx context.Context, idx *domain.TranscriptIndex, path string) error {
	if idx == nil {
		return fmt.Errorf("%w: nil index", domain.ErrInvalidInput)
	}
	if err := idx.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid index: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}

	unlock, err := lock(ctx, path, false)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := s.encode(tmp, idx); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("cannot replace %s: %w", path, err)
	}
	return nil
}

func (s *Store) encode(w io.Writer, idx *domain.TranscriptIndex) error {
	bw := bufio.NewWriter(w)
	zw, err := gzip.NewWriterLevel(bw, s.level)
	if err != nil {
		return err
	}
	c := container{IDs: idx.IDs, Text: idx.Text, SegOffsets: idx.SegOffsets, SegTimes: idx.SegTimes}
	if err := json.NewEncoder(zw).Encode(&c); err != nil {
		_ = zw.Close()
		return fmt.Errorf("cannot encode index: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("cannot compress index: %w", err)
	}
	return bw.Flush()
}

// Load reads, validates and seals the container at path.
func (s *Store) Load(ctx context.Context, path string) (*domain.TranscriptIndex, error) {
	if !s.Exists(path) {
		return nil, fmt.Errorf("%w: %s does not exist", domain.ErrIndexLoad, path)
	}

	unlock, err := lock(ctx, path, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexLoad, err)
	}
	defer unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexLoad, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a compressed container: %w", domain.ErrIndexLoad, path, err)
	}
	defer zr.Close()

	idx, err := decode(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexLoad, path, err)
	}
	return idx, nil
}

// decode reads the container, insisting on every required key.
func decode(r io.Reader) (*domain.TranscriptIndex, error) {
	var raw map[string]jsoniter.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("cannot decode container: %w", err)
	}
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("missing required key %q", key)
		}
	}

	idx := &domain.TranscriptIndex{}
	fields := []struct {
		key string
		dst any
	}{
		{"ids", &idx.IDs},
		{"text", &idx.Text},
		{"seg_offsets", &idx.SegOffsets},
		{"seg_times", &idx.SegTimes},
	}
	for _, f := range fields {
		if err := json.Unmarshal(raw[f.key], f.dst); err != nil {
			return nil, fmt.Errorf("cannot decode %q: %w", f.key, err)
		}
	}

	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx.Seal(), nil
}

// lock takes the container's side-car file lock, shared when read is set.
func lock(ctx context.Context, path string, read bool) (func(), error) {
	l := flock.New(path + ".lock")
	var (
		locked bool
		err    error
	)
	if read {
		locked, err = l.TryRLockContext(ctx, lockRetry)
	} else {
		locked, err = l.TryLockContext(ctx, lockRetry)
	}
	if err != nil {
		return func() {}, fmt.Errorf("cannot lock %s: %w", path, err)
	}
	if !locked {
		return func() {}, fmt.Errorf("cannot lock %s", path)
	}
	return func() { _ = l.Unlock() }, nil
}
