package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
	"github.com/ivrit-ai/explore/internal/logger"
)

// Rebuilder starts index rebuilds.
type Rebuilder interface {
	Rebuild(ctx context.Context, block bool) error
}

// RebuildTrigger turns source change events into non-blocking rebuilds.
// Bursts of changes collapse into one rebuild, and rebuilds start at most
// once per interval.
type RebuildTrigger struct {
	source   driven.WatchableSource
	index    Rebuilder
	interval time.Duration
	limiter  *rate.Limiter

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewRebuildTrigger creates a trigger. An interval of zero or less
// disables throttling.
func NewRebuildTrigger(source driven.WatchableSource, index Rebuilder, interval time.Duration) *RebuildTrigger {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RebuildTrigger{
		source:   source,
		index:    index,
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Start watches the source until ctx is cancelled or Stop is called.
// This method blocks.
func (t *RebuildTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return nil // Already running
	}
	t.running = true
	t.stopCh = make(chan struct{})
	stopCh := t.stopCh
	t.mu.Unlock()

	changes, err := t.source.Watch(ctx)
	if err != nil {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		return err
	}
	return t.run(ctx, changes, stopCh)
}

// Stop ends a running Start.
func (t *RebuildTrigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.stopCh)
}

func (t *RebuildTrigger) run(ctx context.Context, changes <-chan domain.SourceChange, stopCh <-chan struct{}) error {
	tick := t.interval
	if tick <= 0 {
		tick = time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stopCh:
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("Transcript %s: %s", change.Type, change.Path)
			pending = t.fire(ctx, true)
		case <-ticker.C:
			pending = t.fire(ctx, pending)
		}
	}
}

// fire starts a rebuild when one is pending and the limiter allows it.
// It returns whether a rebuild is still pending.
func (t *RebuildTrigger) fire(ctx context.Context, pending bool) bool {
	if !pending || !t.limiter.Allow() {
		return pending
	}
	logger.Info("Transcripts changed, rebuilding index in the background")
	if err := t.index.Rebuild(ctx, false); err != nil {
		logger.Warn("Starting rebuild failed: %v", err)
	}
	return false
}
