package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"birdsort/internal/classify"
	"birdsort/internal/config"
	"birdsort/internal/ipc"
	"birdsort/internal/logging"
	"birdsort/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	socketPath string
	baseDir    string
	photosDir  string
}

var robin = testsupport.Species{Order: "Passeriformes", Family: "Muscicapidae", Latin: "Erithacus rubecula", Localized: "欧亚鸲"}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	t.Setenv("BIRDSORT_REFERENCE", "")
	t.Setenv("BIRDSORT_CACHE", "")

	opts = append([]testsupport.ConfigOption{testsupport.WithReference(testsupport.Blackbird, robin)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)

	socketDir, err := os.MkdirTemp("", "bscli")
	if err != nil {
		t.Fatalf("mkdir socket dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(socketDir) })
	cfg.Paths.Socket = filepath.Join(socketDir, "birdsort.sock")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		socketPath: cfg.Paths.Socket,
		baseDir:    base,
		photosDir:  filepath.Join(base, "photos"),
	}
}

func (e *cliTestEnv) writePhotos(t *testing.T, names ...string) {
	t.Helper()
	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	for _, name := range names {
		testsupport.WritePhoto(t, filepath.Join(e.photosDir, name), mtime)
	}
}

// startServer runs an IPC server for the env's config until the test ends.
func (e *cliTestEnv) startServer(t *testing.T) {
	t.Helper()
	svc, err := classify.NewServiceFromConfig(e.cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServiceFromConfig: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	srv, err := ipc.NewServer(ctx, e.socketPath, ipc.NewHandler(ctx, svc, logging.NewNop()), logging.NewNop())
	if err != nil {
		cancel()
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		cancel()
		srv.Close()
		svc.Close()
	})
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.socketPath, e.configPath)
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
