// Package signal defines the contracts of the external collaborators that feed
// primitive values into the requirement graph, and the Broadcaster used by
// both those collaborators and requirement nodes to fan out change
// notifications.
//
// # Contracts
//
// Each source hands out one handle per named signal (an item, a setting, a
// sequence-break toggle, a location, a boss slot). A handle exposes its
// current value and a Notifier. Lookups for unknown names return nil; callers
// that require the signal treat nil as a fatal construction error.
//
// # Thread-Safety
//
// Nothing in this package is safe for concurrent use. The requirement graph is
// single-threaded: a value change notifies subscribers synchronously, in
// subscription order, before the mutating call returns.
package signal
