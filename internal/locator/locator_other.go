//go:build !darwin && !windows && !linux && !freebsd && !openbsd && !netbsd && !dragonfly

package locator

func revealCommand(string) (command, error) {
	return command{}, ErrUnsupportedPlatform
}

func openCommand(string) (command, error) {
	return command{}, ErrUnsupportedPlatform
}
