// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the nodestore.Store interface.
//
// # Characteristics
//
//   - **Ephemeral:** Created fresh for each session, never persisted
//   - **Thread-Safe:** Uses sync.Map so status reads never block the executor
//   - **Fast Lookups:** O(1) average case for status and error retrieval
//
// sync.Map suits this pattern: the key space is stable (all nodes are known
// before the run starts) while values change on every transition.
package inmemorystore
