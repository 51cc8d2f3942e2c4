// Package matcher finds reference species names inside free-text photo
// filenames.
//
// A Matcher holds two multi-pattern automatons built from a taxonomy
// catalog, one over latin names and one over localized names. Both are
// searched with leftmost-first semantics: the match starting earliest in the
// filename wins, and among matches starting at the same offset the pattern
// registered first (catalog row order) wins. The localized automaton is only
// consulted when the latin one finds nothing.
package matcher
