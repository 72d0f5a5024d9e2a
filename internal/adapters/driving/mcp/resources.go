package mcp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// uriScheme is the custom URI scheme for explore resources.
	uriScheme = "explore://"

	episodesPrefix = uriScheme + "episodes/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "episodes",
		Name:        "episodes",
		Description: "Indexed episode ids in index order",
		MIMEType:    "application/json",
	}, s.handleEpisodesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: episodesPrefix + "{episode}",
		Name:        "episode-text",
		Description: "Full transcript text of an episode, addressed by index or id",
		MIMEType:    "text/plain",
	}, s.handleEpisodeTextResource)
}

// handleEpisodesResource lists every episode id with its index.
func (s *Server) handleEpisodesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	idx, err := s.ports.Index.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	type episodeInfo struct {
		Index    int    `json:"episode_idx"`
		ID       string `json:"source"`
		Segments int    `json:"segments"`
	}
	infos := make([]episodeInfo, idx.Len())
	for e, id := range idx.IDs {
		infos[e] = episodeInfo{Index: e, ID: id, Segments: idx.SegmentCount(e)}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling episodes: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleEpisodeTextResource returns one episode's full text.
func (s *Server) handleEpisodeTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ref := extractEpisodeRef(req.Params.URI)
	if ref == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	idx, err := s.ports.Index.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	ep, ok := resolveEpisode(idx, ref)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     idx.Text[ep],
		}},
	}, nil
}

// extractEpisodeRef extracts the episode reference from
// explore://episodes/{episode}. Ids containing "/" arrive percent-encoded.
func extractEpisodeRef(uri string) string {
	ref, ok := strings.CutPrefix(uri, episodesPrefix)
	if !ok {
		return ""
	}
	unescaped, err := url.PathUnescape(ref)
	if err != nil {
		return ""
	}
	return unescaped
}

// resolveEpisode accepts an episode index or an episode id.
func resolveEpisode(idx *domain.TranscriptIndex, ref string) (int, bool) {
	if n, err := strconv.Atoi(ref); err == nil {
		return n, n >= 0 && n < idx.Len()
	}
	for e, id := range idx.IDs {
		if id == ref {
			return e, true
		}
	}
	return 0, false
}
