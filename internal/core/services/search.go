package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driving"
	"github.com/ivrit-ai/explore/internal/logger"
	"github.com/ivrit-ai/explore/internal/matchers"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// snippetLead is how many runes of context Snippet shows before the offset.
const snippetLead = 10

// SnapshotProvider hands out the current transcript index.
type SnapshotProvider interface {
	Get(ctx context.Context) (*domain.TranscriptIndex, error)
}

// SearchService runs queries against the current snapshot and resolves hits
// to segments.
type SearchService struct {
	index    SnapshotProvider
	settings domain.Settings

	corpus atomic.Pointer[matchers.Corpus]
	cache  resultCache
	wg     sync.WaitGroup
}

// NewSearchService creates a new search service.
// Zero-valued search settings fall back to domain.DefaultSettings.
func NewSearchService(index SnapshotProvider, settings domain.Settings) *SearchService {
	defaults := domain.DefaultSettings()
	if settings.PerPage <= 0 {
		settings.PerPage = defaults.PerPage
	}
	if settings.ProgressiveSources <= 0 {
		settings.ProgressiveSources = defaults.ProgressiveSources
	}
	if settings.TrigramMinEpisodes <= 0 {
		settings.TrigramMinEpisodes = defaults.TrigramMinEpisodes
	}
	return &SearchService{index: index, settings: settings}
}

// Wait blocks until background progressive scans have finished.
func (s *SearchService) Wait() {
	s.wg.Wait()
}

// Search runs a query and returns one page of resolved results.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchPage, error) {
	started := time.Now()
	reqID := uuid.NewString()[:8]
	logger.Section("Search Execution")

	opts, err := s.normaliseOptions(opts)
	if err != nil {
		return nil, err
	}

	query = norm.NFC.String(strings.TrimSpace(query))
	logger.Debug("[REQ:%s] Query: %q regex=%t substring=%t page=%d per_page=%d progressive=%t",
		reqID, query, opts.Regex, opts.Substring, opts.Page, opts.PerPage, opts.Progressive)
	if query == "" {
		logger.Debug("[REQ:%s] Empty query, returning no results", reqID)
		return &domain.SearchPage{
			Results:    []domain.SearchResult{},
			Pagination: domain.Paginate(0, opts.PerPage, opts.Page),
			Mode:       domain.MatchLiteral,
			RequestID:  reqID,
		}, nil
	}

	idx, err := s.index.Get(ctx)
	if err != nil {
		return nil, err
	}
	c := s.corpusFor(idx)

	entry := s.entryFor(reqID, c, query, opts)
	snap := entry.snapshot()

	pagination := domain.Paginate(len(snap.hits), opts.PerPage, opts.Page)
	pagination.StillSearching = !snap.done
	start, end := pagination.Bounds()

	results := make([]domain.SearchResult, 0, end-start)
	for _, h := range snap.hits[start:end] {
		seg, err := domain.SegmentForHit(idx, h.EpisodeIdx, h.CharOffset)
		if err != nil {
			logger.Warn("[REQ:%s] Dropping unresolvable hit %+v: %v", reqID, h, err)
			continue
		}
		results = append(results, domain.SearchResult{
			Source:     seg.Source,
			EpisodeIdx: h.EpisodeIdx,
			CharOffset: h.CharOffset,
			SegmentIdx: seg.SegIdx,
			StartSec:   seg.StartSec,
			Text:       seg.Text,
		})
	}

	logger.Info("[REQ:%s] Search %q (%s) found %d hits, page %d/%d, still_searching=%t, in %s",
		reqID, query, entry.mode, pagination.TotalResults, pagination.Page, pagination.TotalPages,
		pagination.StillSearching, time.Since(started))

	return &domain.SearchPage{
		Results:    results,
		Pagination: pagination,
		Mode:       entry.mode,
		RequestID:  reqID,
	}, nil
}

// entryFor returns the cached result entry for the query, starting a new
// search when none matches the signature and snapshot.
func (s *SearchService) entryFor(
	reqID string, c *matchers.Corpus, query string, opts domain.SearchOptions,
) *resultEntry {
	sig := domain.SignatureOf(query, opts)
	if e := s.cache.get(sig, c); e != nil {
		logger.Debug("[REQ:%s] Using cached results", reqID)
		return e
	}

	m, err := matchers.Select(query, opts, c.Len() >= s.settings.TrigramMinEpisodes)
	if err != nil {
		logger.Warn("[REQ:%s] %v; falling back to substring search", reqID, err)
	}
	logger.Debug("[REQ:%s] Matcher: %s over %d episodes", reqID, m.Mode(), c.Len())

	var e *resultEntry
	if opts.Progressive && opts.Page == 1 && c.Len() > s.settings.ProgressiveSources {
		e = s.scanProgressively(sig, c, m, s.settings.ProgressiveSources, s.settings.ProgressiveSources)
	} else {
		e = completedEntry(sig, c, m.Mode(), m.Match(c, c.All()))
	}
	s.cache.put(e)
	return e
}

// corpusFor returns the derived search structures for idx, replacing them
// when the snapshot has been swapped.
func (s *SearchService) corpusFor(idx *domain.TranscriptIndex) *matchers.Corpus {
	if c := s.corpus.Load(); c != nil && c.Index() == idx {
		return c
	}
	c := matchers.NewCorpus(idx)
	s.corpus.Store(c)
	return c
}

// normaliseOptions applies defaults and rejects malformed paging.
func (s *SearchService) normaliseOptions(opts domain.SearchOptions) (domain.SearchOptions, error) {
	switch {
	case opts.Page < 0:
		return opts, fmt.Errorf("%w: page must be positive, got %d", domain.ErrInvalidInput, opts.Page)
	case opts.Page == 0:
		opts.Page = 1
	}
	switch {
	case opts.PerPage < 0:
		return opts, fmt.Errorf("%w: max results must be positive, got %d", domain.ErrInvalidInput, opts.PerPage)
	case opts.PerPage == 0:
		opts.PerPage = s.settings.PerPage
	}
	opts.PerPage = min(opts.PerPage, domain.MaxPerPage)
	return opts, nil
}

// Segment resolves one segment by rune offset or by segment index.
func (s *SearchService) Segment(ctx context.Context, req domain.SegmentRequest) (domain.Segment, error) {
	idx, err := s.index.Get(ctx)
	if err != nil {
		return domain.Segment{}, err
	}
	if req.ByIndex {
		return domain.SegmentByIdx(idx, req.EpisodeIdx, req.Offset)
	}
	return domain.SegmentForHit(idx, req.EpisodeIdx, req.Offset)
}

// Segments resolves a batch. Entries whose lookup fails are omitted.
func (s *SearchService) Segments(ctx context.Context, reqs []domain.SegmentRequest) ([]domain.Segment, error) {
	idx, err := s.index.Get(ctx)
	if err != nil {
		return nil, err
	}
	segments := make([]domain.Segment, 0, len(reqs))
	for _, req := range reqs {
		var seg domain.Segment
		if req.ByIndex {
			seg, err = domain.SegmentByIdx(idx, req.EpisodeIdx, req.Offset)
		} else {
			seg, err = domain.SegmentForHit(idx, req.EpisodeIdx, req.Offset)
		}
		if err != nil {
			logger.Debug("Omitting segment %+v: %v", req, err)
			continue
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// Snippet returns the episode text from snippetLead runes before offset up
// to offset+size.
func (s *SearchService) Snippet(ctx context.Context, episodeIdx, offset, size int) (string, error) {
	if offset < 0 || size < 0 {
		return "", fmt.Errorf("%w: offset and size must not be negative", domain.ErrInvalidInput)
	}
	idx, err := s.index.Get(ctx)
	if err != nil {
		return "", err
	}
	if episodeIdx < 0 || episodeIdx >= idx.Len() {
		return "", fmt.Errorf("episode %d: %w", episodeIdx, domain.ErrNotFound)
	}

	runes := []rune(idx.Text[episodeIdx])
	start := min(max(0, offset-snippetLead), len(runes))
	end := min(offset+size, len(runes))
	if end < start {
		end = start
	}
	return string(runes[start:end]), nil
}

// IsClientError reports whether err is the caller's fault rather than the
// service's.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrSegmentIndex) ||
		errors.Is(err, domain.ErrNotFound)
}
