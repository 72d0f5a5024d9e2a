// Package services implements the driving port interfaces.
//
// IndexManager owns the current TranscriptIndex snapshot. It builds one from
// raw transcript documents, loads and saves the persisted container, and
// swaps in rebuilt snapshots atomically so readers never block.
// SearchService runs queries against whatever snapshot is current and pages
// the results, optionally in progressive mode. RebuildTrigger turns source
// change events into throttled background rebuilds.
//
// Services are pure Go with no CGO dependencies.
package services
