// Package humpack implements reference-safe serialization and logical
// transactions for composite, possibly-cyclic object graphs.
//
// Serialization is driven by a type Registry: every packable type binds a
// stable id to an allocate/serialize/deserialize triple. Pack walks a
// graph depth-first, assigns each distinct instance a reference id and
// produces a flat Document of reference nodes; shared subgraphs are
// emitted once and cycles terminate at the first repeat visit. Unpack
// rebuilds the graph in two phases, allocating every instance before
// populating any of them, so back-references and self-references resolve.
// EncodeText/DecodeText translate a Document to and from canonical JSON.
//
// Transactions are a single-actor undo scope: a Transactionable value
// snapshots its own state on Begin, restores it on Abort and forwards all
// three operations to nested transactionable members, which manage their
// own shadows. Atomically wraps the contract into a scoped form.
//
// Store persists encoded documents in pebble with checksummed records and
// bounded per-key revision history.
package humpack
