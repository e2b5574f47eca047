// Package integrationtests runs end-to-end scenarios: catalogs are written
// to disk, loaded through the real loaders, built by the registry and then
// driven by changing signals in the in-memory store.
package integrationtests
