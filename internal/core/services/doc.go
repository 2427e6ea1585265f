// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The answer pipeline runs embed -> search -> gate -> assemble for each
// question. Services hold no per-query state and are safe for concurrent use.
package services
