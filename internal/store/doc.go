// Package store provides the in-memory todo collection and its change feed.
//
// This package is internal to todoapi. The main components are:
//
//   - [Store]: Interface defining the collection and subscription operations
//   - [MemoryStore]: Mutex-guarded in-memory implementation of Store
//   - [Todo]: Storage representation of a todo item
//   - [Change]: Event published after every successful mutation
//
// Ids are allocated from a counter owned by the store; they are strictly
// increasing and never reused, even after deletes. Subscribers receive
// changes via buffered channels with non-blocking sends, so a slow
// subscriber misses changes rather than stalling writers.
package store
