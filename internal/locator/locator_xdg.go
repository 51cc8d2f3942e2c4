//go:build linux || freebsd || openbsd || netbsd || dragonfly

package locator

import "path/filepath"

// xdg-open cannot select a file, so reveal opens the containing directory.
func revealCommand(path string) (command, error) {
	return command{argv: []string{"xdg-open", filepath.Dir(path)}}, nil
}

func openCommand(path string) (command, error) {
	return command{argv: []string{"xdg-open", path}}, nil
}
