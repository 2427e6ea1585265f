// Package domain defines the core business entities for sercha-rag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested source file and its lifecycle status
//   - Chunk: A retrievable passage with its embedding and page metadata
//   - SearchResult: A chunk paired with its similarity score for one query
//   - Answer / Citation: The grounded output of the answer pipeline
//   - QueryLog: The immutable audit record written once per query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
