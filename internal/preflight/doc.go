// Package preflight provides readiness checks for the files and directories
// birdsort depends on.
//
// The CLI "birdsort check" command runs RunAll and prints one line per
// result. Individual checks (CheckReference, CheckDirectoryAccess) are also
// used by the scan command to fail early with a readable message before a
// long scan starts.
package preflight
