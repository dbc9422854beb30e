// Package state defines the persistence backend used by settings stores:
// loading and saving one snapshot per Ref.
//
// Responsibilities:
//   - Ref.Identifier() derives the deterministic file path for a store name,
//     base directory, library location and caller location.
//   - Store[T] only loads/saves a single snapshot for a single Ref.
//   - FileStore[T] keeps snapshots as JSON files on a billy.Filesystem. Before
//     overwriting it copies the previous file to "<path>.bak" (best effort) and
//     writes the new content through a temporary file renamed into place.
//   - MemoryStore[T] is an in-memory implementation for tests and examples.
//
// Data flow:
//
//	settings.Store.Save -> Ref.Identifier -> Store[T].Save -> <name>-<hash>-<hash>.cfg
//
// Errors from Load are wrapped so callers can tell a read failure from a
// decode failure with errors.Is(err, ErrDecode).
package state
