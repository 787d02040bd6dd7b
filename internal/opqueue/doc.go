// Package opqueue runs units of work (Tasks) on a bounded or unbounded set
// of worker goroutines, honouring explicit dependency edges between Tasks.
//
// A WorkQueue owns every Task it creates. Tasks live in a flat table keyed
// by id and dependency edges are stored as id lists, so the graph never
// holds owning references between siblings. Cycle checks run when an edge
// is added.
//
// All state transitions happen under a single queue mutex. Task bodies,
// completion callbacks and observers always run outside of it.
//
// Cancellation is cooperative. Cancelling a Task that has not started moves
// it straight to CANCELLED and fires its completion callback without running
// the body. A Task that is already running only sees its context cancelled
// and its IsCancelled flag raised; it still finishes as COMPLETED.
package opqueue
