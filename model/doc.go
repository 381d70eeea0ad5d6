// Package model defines hash-record models over a Redis-like store and
// keeps per-field lexical indexes exactly consistent with record contents.
//
// Lattice is designed for applications that store records as hashes in a
// remote key/value store and need prefix search over selected fields without
// ever observing an index that disagrees with the primary data.
//
// # Key Features
//
//   - Declarative field descriptors: seed generators, mutability, lexical
//     indexing, create- and update-time validators
//   - Automatic id (uuid) and created (monotonic timestamp) fields
//   - Hash writes and index deltas compiled into one atomic command batch
//   - Case-folded, separator-safe prefix search via sorted-set range queries
//   - Pre-create, pre-update and post-get hooks per record
//
// # Defining a model
//
//	m, err := model.New(store, model.Options{Name: "user"}, map[string]model.Field{
//	    "name":  {Mutable: true, Lexical: true},
//	    "email": {Mutable: true},
//	})
//
// Records are plain field maps:
//
//	ids, err := m.Create(ctx, model.Record{"name": "Oscar"})
//	hits, err := m.Search(ctx, model.Query{Field: "name", Term: "osc"})
//
// # Consistency
//
// Every operation that changes a record emits the hash command and the
// matching index insertions/retractions in a single batch the store applies
// atomically. Update and Remove read the stored state first to know which
// index entries to retract; that read and the following write are two
// round trips, so concurrent writers to the same id can race (see Model).
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrModelShape] - unusable model options or field map
//   - [ErrValidation] - input record failed a field validator
//   - [ErrNotFound] - update/remove referenced an id with no record
//
// Store failures propagate verbatim. A search over an unknown or unindexed
// field is not an error; it returns an empty result.
package model
