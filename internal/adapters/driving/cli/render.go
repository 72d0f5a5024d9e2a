package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// renderer prints results, highlighting matches when writing to a terminal.
type renderer struct {
	out    io.Writer
	styled bool
	match  lipgloss.Style
	source lipgloss.Style
	faint  lipgloss.Style
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{
		out:    w,
		styled: isTerminal(w),
		match:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		source: lipgloss.NewStyle().Bold(true),
		faint:  lipgloss.NewStyle().Faint(true),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

func (r *renderer) searchPage(query string, opts domain.SearchOptions, page *domain.SearchPage) {
	p := page.Pagination
	if len(page.Results) == 0 {
		if p.TotalResults > 0 {
			fmt.Fprintf(r.out, "No results on page %d (%d results in %d pages).\n", p.Page, p.TotalResults, p.TotalPages)
		} else {
			fmt.Fprintln(r.out, "No results found.")
		}
		return
	}

	pattern := highlightPattern(query, opts, page.Mode)
	first := (p.Page - 1) * p.PerPage
	for i, res := range page.Results {
		fmt.Fprintf(r.out, "[%d] %s %s\n", first+i+1,
			r.style(r.source, res.Source),
			r.style(r.faint, fmt.Sprintf("%s  episode %d, offset %d, segment %d",
				formatTimestamp(res.StartSec), res.EpisodeIdx, res.CharOffset, res.SegmentIdx)))
		fmt.Fprintf(r.out, "    %s\n\n", r.highlight(res.Text, pattern))
	}

	footer := fmt.Sprintf("Page %d of %d, %d results", p.Page, p.TotalPages, p.TotalResults)
	if p.StillSearching {
		footer += " so far, still searching"
	}
	fmt.Fprintln(r.out, r.style(r.faint, footer))
}

func (r *renderer) segment(seg domain.Segment) {
	fmt.Fprintf(r.out, "%s %s\n", r.style(r.source, seg.Source),
		r.style(r.faint, fmt.Sprintf("%s  episode %d, segment %d, chars %d-%d",
			formatTimestamp(seg.StartSec), seg.EpisodeIdx, seg.SegIdx, seg.Start, seg.End)))
	fmt.Fprintf(r.out, "    %s\n", seg.Text)
}

// highlight wraps every match of pattern in text with the match style.
func (r *renderer) highlight(text string, pattern *regexp.Regexp) string {
	if !r.styled || pattern == nil {
		return text
	}
	return pattern.ReplaceAllStringFunc(text, func(m string) string {
		if m == "" {
			return m
		}
		return r.match.Render(m)
	})
}

// highlightPattern builds a case-insensitive pattern for the terms a query
// matched with. It returns nil when the query cannot be highlighted.
func highlightPattern(query string, opts domain.SearchOptions, mode domain.MatchMode) *regexp.Regexp {
	var expr string
	switch {
	case opts.Regex && mode == domain.MatchRegex:
		expr = query
	case mode == domain.MatchWordAND:
		words := strings.Fields(query)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		expr = strings.Join(words, "|")
	default:
		expr = regexp.QuoteMeta(strings.TrimSpace(query))
	}
	if expr == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil
	}
	return re
}

// formatTimestamp renders seconds as M:SS or H:MM:SS.
func formatTimestamp(sec float64) string {
	total := int(sec)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
