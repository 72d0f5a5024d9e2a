package mcp

import (
	"github.com/ivrit-ai/explore/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Search provides search and segment lookup.
	Search driving.SearchService

	// Index reports index state and backs the episode resources.
	// Optional: without it index_status and resources are not registered.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
