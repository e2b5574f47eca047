// Package catalog defines the format-agnostic description of a requirement
// graph: which keys exist, what kind of requirement each one is and what it
// depends on. Loaders for concrete file formats translate into this model;
// the registry builds live nodes from it.
package catalog
