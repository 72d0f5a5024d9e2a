package mcp

import (
	"context"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	page     *domain.SearchPage
	segment  domain.Segment
	segments []domain.Segment
	snippet  string
	err      error

	gotQuery string
	gotOpts  domain.SearchOptions
	gotReqs  []domain.SegmentRequest
	gotSize  int
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.SearchPage, error) {
	m.gotQuery, m.gotOpts = query, opts
	if m.err != nil {
		return nil, m.err
	}
	if m.page == nil {
		return &domain.SearchPage{Results: []domain.SearchResult{}, Mode: domain.MatchLiteral}, nil
	}
	return m.page, nil
}

func (m *mockSearchService) Segment(_ context.Context, req domain.SegmentRequest) (domain.Segment, error) {
	m.gotReqs = []domain.SegmentRequest{req}
	return m.segment, m.err
}

func (m *mockSearchService) Segments(_ context.Context, reqs []domain.SegmentRequest) ([]domain.Segment, error) {
	m.gotReqs = reqs
	return m.segments, m.err
}

func (m *mockSearchService) Snippet(_ context.Context, _, _, size int) (string, error) {
	m.gotSize = size
	return m.snippet, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	idx    *domain.TranscriptIndex
	status domain.IndexStatus
	err    error
}

func (m *mockIndexService) Get(_ context.Context) (*domain.TranscriptIndex, error) {
	return m.idx, m.err
}

func (m *mockIndexService) Rebuild(_ context.Context, _ bool) error { return m.err }

func (m *mockIndexService) Warm(_ context.Context, _ string, _ bool) error { return m.err }

func (m *mockIndexService) Save(_ context.Context, _ string) error { return m.err }

func (m *mockIndexService) Load(_ context.Context, _ string) error { return m.err }

func (m *mockIndexService) Stale(_ context.Context, _ string) (bool, error) { return false, m.err }

func (m *mockIndexService) Status(_ context.Context) domain.IndexStatus { return m.status }

// Ensure mocks implement interfaces.
var (
	_ driving.SearchService = (*mockSearchService)(nil)
	_ driving.IndexService  = (*mockIndexService)(nil)
)

func testIndex() *domain.TranscriptIndex {
	idx := &domain.TranscriptIndex{
		IDs:        []string{"kan/ep1", "solo"},
		Text:       []string{"שלום עולם מה שלומך", "hello world"},
		SegOffsets: [][]int{{0, 10}, {0}},
		SegTimes:   [][]float64{{0, 5}, {0}},
	}
	return idx.Seal()
}
