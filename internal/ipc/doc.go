// Package ipc exposes scans and desktop hand-off over JSON-RPC on a Unix
// socket and ships the matching client used by the CLI.
//
// The Handler translates each command into a call on the classify service or
// the locator and reports failures as user-facing strings inside the
// response rather than as transport errors. Dispatch offers the same
// commands keyed by name ("scan", "reveal", "open_file") for UI shells that
// exchange raw JSON payloads instead of speaking JSON-RPC.
package ipc
