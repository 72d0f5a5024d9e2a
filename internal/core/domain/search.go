package domain

// SearchHit is a single match location.
type SearchHit struct {
	// EpisodeIdx indexes into TranscriptIndex.IDs and Text.
	EpisodeIdx int `json:"episode_idx"`

	// CharOffset is the rune offset of the match within the episode text.
	CharOffset int `json:"char_offset"`
}

// MatchMode names the matching strategy used for a query.
type MatchMode string

// Available match modes.
const (
	// MatchLiteral is a case-insensitive substring scan reporting overlapping matches.
	MatchLiteral MatchMode = "literal"

	// MatchWholeWord matches a single token only on word boundaries.
	MatchWholeWord MatchMode = "whole_word"

	// MatchRegex compiles a caller-supplied pattern case-insensitively.
	MatchRegex MatchMode = "regex"

	// MatchTrigram is a literal scan restricted to trigram candidates.
	MatchTrigram MatchMode = "trigram"

	// MatchWordAND intersects per-token segment sets from the word index.
	MatchWordAND MatchMode = "word_and"
)

// String returns the string representation.
func (m MatchMode) String() string {
	return string(m)
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Regex treats the query as a regular expression.
	Regex bool

	// Substring forces a literal substring match even for single words.
	Substring bool

	// PerPage is the maximum number of results per page (max_results).
	PerPage int

	// Page is the 1-based page number.
	Page int

	// Progressive allows a fast partial first page while the rest of the
	// corpus is scanned in the background.
	Progressive bool
}

// Signature identifies the hit list a query produces, independent of paging.
type Signature struct {
	Query     string
	Regex     bool
	Substring bool
}

// SignatureOf returns the result-cache signature for a query and options.
func SignatureOf(query string, opts SearchOptions) Signature {
	return Signature{Query: query, Regex: opts.Regex, Substring: opts.Substring}
}

// SearchResult is one hit resolved to its owning segment.
type SearchResult struct {
	// Source is the episode id.
	Source string `json:"source"`

	// EpisodeIdx and CharOffset locate the hit.
	EpisodeIdx int `json:"episode_idx"`
	CharOffset int `json:"char_offset"`

	// SegmentIdx is the owning segment's position within the episode.
	SegmentIdx int `json:"segment_idx"`

	// StartSec is the owning segment's start time.
	StartSec float64 `json:"start_sec"`

	// Text is the owning segment's trimmed text.
	Text string `json:"text"`
}

// Pagination describes where a page sits within the full hit list.
type Pagination struct {
	Page           int  `json:"page"`
	TotalPages     int  `json:"total_pages"`
	TotalResults   int  `json:"total_results"`
	PerPage        int  `json:"per_page"`
	HasNext        bool `json:"has_next"`
	HasPrev        bool `json:"has_prev"`
	StillSearching bool `json:"still_searching"`
}

// Paginate computes page metadata for total results split perPage at a time.
// The caller guarantees page >= 1 and perPage >= 1.
func Paginate(total, perPage, page int) Pagination {
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return Pagination{
		Page:         page,
		TotalPages:   pages,
		TotalResults: total,
		PerPage:      perPage,
		HasNext:      page < pages,
		HasPrev:      page > 1,
	}
}

// Bounds returns the half-open slice bounds of the page within the hit list.
// Pages past the end yield an empty range at TotalResults.
func (p Pagination) Bounds() (start, end int) {
	if p.PerPage < 1 || p.Page < 1 || p.Page-1 > p.TotalResults/p.PerPage {
		return p.TotalResults, p.TotalResults
	}
	// (Page-1)*PerPage <= TotalResults here, so the product cannot overflow.
	start = min((p.Page-1)*p.PerPage, p.TotalResults)
	end = start + min(p.PerPage, p.TotalResults-start)
	return start, end
}

// SearchPage is one page of resolved results.
type SearchPage struct {
	Results    []SearchResult `json:"results"`
	Pagination Pagination     `json:"pagination"`

	// Mode is the matching strategy that produced the hits.
	Mode MatchMode `json:"mode"`

	// RequestID tags the search in timing logs.
	RequestID string `json:"request_id,omitempty"`
}

// SegmentRequest addresses one segment, either by rune offset or by index.
type SegmentRequest struct {
	EpisodeIdx int `json:"episode_idx"`

	// Offset is a rune offset, or a segment index when ByIndex is set.
	Offset int `json:"offset"`

	ByIndex bool `json:"by_index,omitempty"`
}
