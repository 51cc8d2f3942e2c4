package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"birdsort/internal/config"
	"birdsort/internal/taxonomy"
)

// CheckReference verifies that the reference source exists and parses with
// the configured schema.
func CheckReference(_ context.Context, name string, cfg *config.Config) Result {
	path := cfg.Paths.Reference
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}

	catalog, err := taxonomy.Load(path, cfg.Reference.Schema())
	if err != nil {
		var missing *taxonomy.MissingColumnError
		if errors.As(err, &missing) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: header has no %q column)", path, missing.Column)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if catalog.Len() == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no species rows)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d species)", path, catalog.Len())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable,
// and writable when write is set.
func CheckDirectoryAccess(name, path string, write bool) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := access(path, write); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	if write {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckCacheDirectory verifies that the cache file's directory is writable,
// or can be created under its nearest existing ancestor.
func CheckCacheDirectory(name, cachePath string) Result {
	dir := filepath.Dir(cachePath)
	for {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	result := CheckDirectoryAccess(name, dir, true)
	if result.Passed && dir != filepath.Dir(cachePath) {
		result.Detail = fmt.Sprintf("%s (will be created under %s)", filepath.Dir(cachePath), dir)
	}
	return result
}

// CheckLauncher reports whether the platform file-manager launcher is on PATH.
func CheckLauncher() Result {
	const name = "File manager launcher"

	var binary string
	switch runtime.GOOS {
	case "darwin":
		binary = "open"
	case "windows":
		binary = "explorer"
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		binary = "xdg-open"
	default:
		return Result{Name: name, Optional: true, Detail: "unsupported platform (reveal and open disabled)"}
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s not found (reveal and open disabled)", binary)}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: path}
}
