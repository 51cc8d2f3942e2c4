// Package logs reads the birdsort log file for `birdsort logs`.
//
// Reads are bounded in memory: the last-N mode keeps a ring of lines and the
// follow mode resumes from a byte offset, polling until new lines arrive or
// the wait elapses.
package logs
