// Package scanner walks photo roots and classifies every supported image.
//
// Roots are walked in parallel with fastwalk, never following symbolic
// links. Each file is classified independently: a cache record with the same
// path and exactly the same mtime is reused (as long as its species still
// exists in the catalog), otherwise the filename stem goes through the name
// matcher. Workers send results to a single collector goroutine, so matches
// and records come back in no particular order; callers that need a stable
// order sort downstream.
package scanner
