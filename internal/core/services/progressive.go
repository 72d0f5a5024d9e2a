package services

import (
	"sync"
	"sync/atomic"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/matchers"
)

// hitSnapshot is an immutable view of a result set. A published snapshot
// and its hits slice are never modified.
type hitSnapshot struct {
	hits []domain.SearchHit
	done bool
}

// resultEntry is the cached hit list for one query signature against one
// corpus. A single writer publishes snapshots; readers load them atomically.
type resultEntry struct {
	sig    domain.Signature
	corpus *matchers.Corpus
	mode   domain.MatchMode

	snap atomic.Pointer[hitSnapshot]
	done chan struct{}
}

func newResultEntry(sig domain.Signature, c *matchers.Corpus, mode domain.MatchMode) *resultEntry {
	return &resultEntry{sig: sig, corpus: c, mode: mode, done: make(chan struct{})}
}

// completedEntry returns an entry holding a finished hit list.
func completedEntry(sig domain.Signature, c *matchers.Corpus, mode domain.MatchMode, hits []domain.SearchHit) *resultEntry {
	e := newResultEntry(sig, c, mode)
	e.publish(hits, true)
	return e
}

// publish replaces the snapshot. Only the entry's writer calls it, and
// closes done with the final snapshot.
func (e *resultEntry) publish(hits []domain.SearchHit, done bool) {
	e.snap.Store(&hitSnapshot{hits: hits, done: done})
	if done {
		close(e.done)
	}
}

// snapshot returns the latest published result set. It never blocks.
func (e *resultEntry) snapshot() *hitSnapshot {
	return e.snap.Load()
}

// Done is closed once the full result set is published.
func (e *resultEntry) Done() <-chan struct{} {
	return e.done
}

// resultCache holds the entry for the most recent query signature.
// Storing a new signature discards the previous entry; a task still
// filling it runs to completion unobserved.
type resultCache struct {
	mu    sync.Mutex
	entry *resultEntry
}

// get returns the entry for sig against corpus c, or nil.
func (rc *resultCache) get(sig domain.Signature, c *matchers.Corpus) *resultEntry {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.entry != nil && rc.entry.sig == sig && rc.entry.corpus == c {
		return rc.entry
	}
	return nil
}

// put replaces the cached entry.
func (rc *resultCache) put(e *resultEntry) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.entry = e
}

// scanProgressively publishes the hits of the first `first` episodes at
// once, then returns while a background task scans the rest chunk by chunk.
func (s *SearchService) scanProgressively(
	sig domain.Signature, c *matchers.Corpus, m matchers.Matcher, first, chunk int,
) *resultEntry {
	e := newResultEntry(sig, c, m.Mode())
	hits := m.Match(c, matchers.EpisodeRange{From: 0, To: first})
	e.publish(hits, false)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		acc := hits
		for from := first; from < c.Len(); from += chunk {
			more := m.Match(c, matchers.EpisodeRange{From: from, To: min(from+chunk, c.Len())})
			if len(more) == 0 {
				continue
			}
			// Full slice expression forces a copy, leaving published hits untouched.
			acc = append(acc[:len(acc):len(acc)], more...)
			e.publish(acc, false)
		}
		e.publish(acc, true)
	}()
	return e
}
