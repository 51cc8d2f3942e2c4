// Package main hosts the birdsort CLI entrypoint and command graph.
//
// The Cobra command tree runs scans in-process or against a running
// `birdsort serve` instance, renders the taxonomy tree, inspects the scan
// cache, and scaffolds configuration. Configuration resolution, socket
// discovery, and logger setup live in commandContext so subcommands only deal
// with presentation.
package main
