// Package pipeline turns the unordered set of registered middleware entries
// into a concrete, ordered execution chain.
//
// # Architecture
//
// Three pieces cooperate:
//   - Resolver: groups entries by phase tag and sorts the phases against a
//     configured order list.
//   - Builder: walks the resolved phases and mounts each entry onto a router
//     according to its path and method tags.
//   - Dispatcher: lazily builds the chain on first use, caches it, and drops
//     the cache when the registry or the phase order changes.
//
// # Phase ordering
//
// Phases named in the configured order sort by their position in it. A phase
// absent from the order sorts before every named phase; two absent phases
// fall back to lexicographic order. The reserved phases ERROR and FINAL are
// appended to every configured order, so they always sort after every
// caller-supplied phase, in that relative order.
package pipeline
