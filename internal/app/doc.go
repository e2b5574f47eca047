// Package app contains the core application logic. It loads a requirement
// catalog and a state snapshot, builds the requirement graph, applies
// overrides and assignments, and reports the resulting levels, decoupled
// from any specific entrypoint like a CLI.
package app
