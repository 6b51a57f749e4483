// Package store persists saved rosters ("dexes") to a single local JSON
// file, together with a pointer to the dex that was open last. It is a
// thread-safe in-memory map that is written through to disk on every
// mutation.
package store
