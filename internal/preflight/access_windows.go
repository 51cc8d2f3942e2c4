package preflight

import (
	"errors"
	"io"
	"os"
)

func access(path string, write bool) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	_, err = dir.Readdirnames(1)
	dir.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if !write {
		return nil
	}
	probe, err := os.CreateTemp(path, ".birdsort-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}
