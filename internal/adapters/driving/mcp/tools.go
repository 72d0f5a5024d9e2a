package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query       string `json:"query" jsonschema:"the text to find; multi-word queries match segments containing every word"`
	Regex       bool   `json:"regex,omitempty" jsonschema:"treat the query as a case-insensitive regular expression"`
	Substring   bool   `json:"substring,omitempty" jsonschema:"match the query anywhere, ignoring word boundaries"`
	MaxResults  int    `json:"max_results,omitempty" jsonschema:"results per page (default 100)"`
	Page        int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	Progressive bool   `json:"progressive,omitempty" jsonschema:"return a partial first page while the rest is scanned"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results    []domain.SearchResult `json:"results"`
	Pagination domain.Pagination     `json:"pagination"`
	Mode       string                `json:"mode"`
}

// SegmentInput addresses one segment.
type SegmentInput struct {
	EpisodeIdx int  `json:"episode_idx" jsonschema:"episode index as returned by search"`
	Offset     int  `json:"offset" jsonschema:"character offset, or segment index when by_index is set"`
	ByIndex    bool `json:"by_index,omitempty" jsonschema:"interpret offset as a segment index"`
}

// SegmentOutput is one resolved segment.
type SegmentOutput struct {
	Segment domain.Segment `json:"segment"`
}

// SegmentsInput is a batch of segment lookups.
type SegmentsInput struct {
	Lookups []SegmentInput `json:"lookups" jsonschema:"segments to resolve"`
}

// SegmentsOutput holds every lookup that succeeded.
type SegmentsOutput struct {
	Segments []domain.Segment `json:"segments"`
}

// SnippetInput selects a span of episode text.
type SnippetInput struct {
	EpisodeIdx int `json:"episode_idx" jsonschema:"episode index as returned by search"`
	Offset     int `json:"offset" jsonschema:"character offset of the span"`
	Size       int `json:"size,omitempty" jsonschema:"number of characters after the offset (default 100)"`
}

// SnippetOutput is a span of episode text.
type SnippetOutput struct {
	Text string `json:"text"`
}

// IndexStatusInput takes no arguments.
type IndexStatusInput struct{}

// IndexStatusOutput describes the index being served.
type IndexStatusOutput struct {
	Ready       bool   `json:"ready"`
	Building    bool   `json:"building"`
	Episodes    int    `json:"episodes"`
	Origin      string `json:"origin,omitempty"`
	Path        string `json:"path,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Skipped     int    `json:"skipped"`
	BuiltAt     string `json:"built_at,omitempty"`
}

const defaultSnippetSize = 100

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search transcripts and return matching segments with timestamps, paginated",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "segment",
		Description: "Resolve the transcript segment owning a character offset, or a segment by index",
	}, s.handleSegment)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "segments",
		Description: "Resolve many segments at once; failed lookups are omitted",
	}, s.handleSegments)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "snippet",
		Description: "Return a span of episode text around a character offset",
	}, s.handleSnippet)
	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_status",
			Description: "Report whether the transcript index is ready and how it was produced",
		}, s.handleIndexStatus)
	}
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Regex:       input.Regex,
		Substring:   input.Substring,
		PerPage:     input.MaxResults,
		Page:        input.Page,
		Progressive: input.Progressive,
	}
	page, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, toolError("search", err)
	}
	return nil, SearchOutput{
		Results:    page.Results,
		Pagination: page.Pagination,
		Mode:       page.Mode.String(),
	}, nil
}

func (s *Server) handleSegment(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SegmentInput,
) (*mcp.CallToolResult, SegmentOutput, error) {
	seg, err := s.ports.Search.Segment(ctx, input.request())
	if err != nil {
		return nil, SegmentOutput{}, toolError("segment", err)
	}
	return nil, SegmentOutput{Segment: seg}, nil
}

func (s *Server) handleSegments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SegmentsInput,
) (*mcp.CallToolResult, SegmentsOutput, error) {
	reqs := make([]domain.SegmentRequest, len(input.Lookups))
	for i, l := range input.Lookups {
		reqs[i] = l.request()
	}
	segs, err := s.ports.Search.Segments(ctx, reqs)
	if err != nil {
		return nil, SegmentsOutput{}, toolError("segments", err)
	}
	if segs == nil {
		segs = []domain.Segment{}
	}
	return nil, SegmentsOutput{Segments: segs}, nil
}

func (s *Server) handleSnippet(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SnippetInput,
) (*mcp.CallToolResult, SnippetOutput, error) {
	size := input.Size
	if size <= 0 {
		size = defaultSnippetSize
	}
	text, err := s.ports.Search.Snippet(ctx, input.EpisodeIdx, input.Offset, size)
	if err != nil {
		return nil, SnippetOutput{}, toolError("snippet", err)
	}
	return nil, SnippetOutput{Text: text}, nil
}

func (s *Server) handleIndexStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	return nil, statusOutput(s.ports.Index.Status(ctx)), nil
}

func (in SegmentInput) request() domain.SegmentRequest {
	return domain.SegmentRequest{EpisodeIdx: in.EpisodeIdx, Offset: in.Offset, ByIndex: in.ByIndex}
}

func statusOutput(st domain.IndexStatus) IndexStatusOutput {
	out := IndexStatusOutput{
		Ready:    st.Ready,
		Building: st.Building,
		Episodes: st.Episodes,
	}
	if b := st.LastBuild; b != nil {
		out.Origin = string(b.Origin)
		out.Path = b.Path
		out.Fingerprint = b.Fingerprint
		out.Skipped = b.Skipped
		out.BuiltAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}
