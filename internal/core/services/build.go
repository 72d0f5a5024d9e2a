package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
	"github.com/ivrit-ai/explore/internal/logger"
)

// BuildResult is the outcome of one index build.
type BuildResult struct {
	// Index is the sealed snapshot.
	Index *domain.TranscriptIndex

	// Fingerprint summarises the records the build started from.
	Fingerprint string

	// Skipped counts records that failed to read or normalise.
	Skipped int

	// Duration is the wall time of the build.
	Duration time.Duration
}

// buildJob is one record at its position in ID order.
type buildJob struct {
	pos int
	rec domain.SourceRecord
}

// buildOutcome is the result of processing one job.
type buildOutcome struct {
	pos        int
	transcript *domain.NormalisedTranscript
	err        error
}

// BuildIndex reads and normalises every record of source on a bounded
// worker pool. Episodes are ordered by record ID regardless of completion
// order. A record that fails is skipped with a warning and never aborts the
// build; cancelling ctx does.
func BuildIndex(
	ctx context.Context,
	source driven.TranscriptSource,
	normaliser driven.Normaliser,
	workers int,
) (*BuildResult, error) {
	started := time.Now()
	logger.Section("Index Build")

	records, err := source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %w", domain.ErrIndexBuild, err)
	}
	records, dupes := sortUnique(records)
	fingerprint := Fingerprint(records)
	workers = max(1, min(workers, len(records)))
	logger.Info("Building index from %d records with %d workers", len(records), workers)

	jobs := make(chan buildJob, len(records))
	for pos, rec := range records {
		jobs <- buildJob{pos: pos, rec: rec}
	}
	close(jobs)

	outcomes := make(chan buildOutcome, len(records))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					outcomes <- buildOutcome{pos: job.pos, err: ctx.Err()}
					continue
				}
				t, err := normaliseRecord(ctx, source, normaliser, job.rec)
				outcomes <- buildOutcome{pos: job.pos, transcript: t, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Single aggregator: results land by position, not completion order.
	transcripts := make([]*domain.NormalisedTranscript, len(records))
	skipped := dupes
	for out := range outcomes {
		if out.err != nil {
			if ctx.Err() != nil {
				continue
			}
			skipped++
			logger.Warn("Skipping %s: %v (%d skipped so far)", records[out.pos].ID, out.err, skipped)
			continue
		}
		transcripts[out.pos] = out.transcript
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexBuild, err)
	}

	idx := &domain.TranscriptIndex{}
	for pos, t := range transcripts {
		if t == nil {
			continue
		}
		idx.IDs = append(idx.IDs, records[pos].ID)
		idx.Text = append(idx.Text, t.FullText)
		idx.SegOffsets = append(idx.SegOffsets, t.Offsets)
		idx.SegTimes = append(idx.SegTimes, t.Times)
	}
	if err := idx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexBuild, err)
	}

	result := &BuildResult{
		Index:       idx.Seal(),
		Fingerprint: fingerprint,
		Skipped:     skipped,
		Duration:    time.Since(started),
	}
	logger.Info("Built index: %d episodes, %d skipped, in %s", idx.Len(), skipped, result.Duration)
	return result, nil
}

func normaliseRecord(
	ctx context.Context,
	source driven.TranscriptSource,
	normaliser driven.Normaliser,
	rec domain.SourceRecord,
) (*domain.NormalisedTranscript, error) {
	raw, err := source.ReadDocument(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return normaliser.Normalise(ctx, raw)
}

// sortUnique orders records by ID and drops later records sharing an ID.
// It returns the number dropped.
func sortUnique(records []domain.SourceRecord) ([]domain.SourceRecord, int) {
	sorted := make([]domain.SourceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	out := sorted[:0]
	dropped := 0
	for _, rec := range sorted {
		if n := len(out); n > 0 && rec.ID == out[n-1].ID {
			dropped++
			logger.Warn("Skipping %s: duplicate id (%d skipped so far)", rec.Path, dropped)
			continue
		}
		out = append(out, rec)
	}
	return out, dropped
}
