// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TranscriptSource: Lists and reads raw transcript documents
//   - Normaliser: Transforms a raw document into full text and segment arrays
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SnapshotStore: Persisted index container. Without it every start rebuilds.
//   - CatalogStore: Build history. Without it staleness checks report stale.
//   - WatchableSource: Change events that trigger background rebuilds.
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
