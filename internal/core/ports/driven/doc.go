// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Document and chunk persistence
//   - VectorIndex: Nearest-neighbour search over stored chunk embeddings
//   - QueryLogStore: Append-only audit records
//   - EmbeddingService: Turns text into vectors
//   - CompletionService: Produces grounded answers from a prompt
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - PromptStore: Customisable prompt templates. Defaults are embedded.
//   - PageExtractor: Turns uploaded bytes into pages for ingestion.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
