// Package postgres provides a PostgreSQL implementation of the document,
// vector and query log ports, using gorm for persistence and the pgvector
// extension for similarity search.
//
// Embeddings are stored in an unsized vector column so collections built
// with different models fail loudly at search time instead of at insert.
// Scores are 1 - cosine distance, which matches the in-process stores.
package postgres
