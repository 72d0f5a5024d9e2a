// Package mcp exposes transcript search and segment lookup as Model Context
// Protocol tools and resources, over stdio or streamable HTTP.
package mcp

import (
	"errors"
	"fmt"

	"github.com/ivrit-ai/explore/internal/core/services"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// toolError labels a failed tool call as the caller's fault or the server's.
func toolError(tool string, err error) error {
	if services.IsClientError(err) {
		return fmt.Errorf("%s: bad request: %w", tool, err)
	}
	return fmt.Errorf("%s: %w", tool, err)
}
