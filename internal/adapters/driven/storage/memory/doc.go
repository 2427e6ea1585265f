// Package memory provides in-process stores. Nothing survives a restart;
// they back the "memory" storage backend and tests.
package memory
