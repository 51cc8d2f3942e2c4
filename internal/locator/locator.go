// Package locator hands photos to the desktop: revealing them in the native
// file manager or opening them with the default application.
package locator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrUnsupportedPlatform is returned on systems without a known file manager.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

type command struct {
	argv []string
	// Some launchers exit non-zero even when they succeed.
	ignoreExitStatus bool
}

// Reveal shows path in the system file manager.
func Reveal(ctx context.Context, path string) error {
	return run(ctx, "reveal", path, revealCommand)
}

// Open opens path with its default application.
func Open(ctx context.Context, path string) error {
	return run(ctx, "open", path, openCommand)
}

func run(ctx context.Context, action, path string, build func(string) (command, error)) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%s: path is required", action)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%s %s: %w", action, path, err)
	}
	cmd, err := build(path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", action, path, err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	err = exec.CommandContext(ctx, cmd.argv[0], cmd.argv[1:]...).Run()
	var exitErr *exec.ExitError
	if err != nil && !(cmd.ignoreExitStatus && errors.As(err, &exitErr)) {
		return fmt.Errorf("%s %s: invoke %s: %w", action, path, cmd.argv[0], err)
	}
	return nil
}
