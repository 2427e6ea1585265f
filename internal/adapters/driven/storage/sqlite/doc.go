// Package sqlite provides a SQLite-based implementation of the document,
// vector and query log ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Vector search runs inside the database through the
// vec_cosine scalar function, which scores little-endian float32 BLOBs with
// the same cosine routine as the in-memory store.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-rag/data/rag.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite WAL mode with a
// busy timeout so searches read a consistent snapshot while ingestion writes.
package sqlite
