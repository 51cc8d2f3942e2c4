// Package scancache persists per-file classification results between scans.
//
// A snapshot records, for every scanned photo, its path, whole-second
// modification time and the latin name it matched (if any), stamped with a
// fingerprint of the reference source it was computed against. Loading a
// snapshot whose fingerprint differs from the current reference yields an
// empty Index, so a changed reference source re-matches every photo. A record
// is reused only when the photo's mtime is exactly the stored one; that
// decision lives in the scanner.
//
// Two backends implement Store: JSONStore writes the snapshot as a single
// JSON document replaced atomically by rename, and SQLiteStore keeps it in a
// SQLite database replaced inside one transaction. Lock serializes scans that
// share a cache file across processes.
package scancache
