// Package dag is a small directed graph over string ids. The catalog uses it
// to reject dependency cycles before any requirement node is built and to
// order keys so that every requirement is built after its dependencies.
package dag
