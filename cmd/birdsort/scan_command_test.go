package main

import (
	"encoding/json"
	"os"
	"testing"

	"birdsort/internal/classify"
	"birdsort/internal/testsupport"
)

func TestScanRendersTree(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t, "turdus_merula_01.jpg", "IMG_Turdus_merula_2020.png", "robin Erithacus rubecula.heic", "sunset.jpg", "notes.txt")

	out, _, err := env.run(t, "scan", env.photosDir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Passeriformes (3)")
	requireContains(t, out, "Turdidae (2)")
	requireContains(t, out, "Turdus merula 乌鸫 (2)")
	requireContains(t, out, "Erithacus rubecula 欧亚鸲 (1)")
	requireContains(t, out, "turdus_merula_01.jpg")
	requireContains(t, out, "Photos scanned")
	requireContains(t, out, "2 / 2")
	requireNotContains(t, out, "sunset.jpg")
	requireNotContains(t, out, "notes.txt")
}

func TestScanHidesPhotos(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t, "turdus_merula_01.jpg")

	out, _, err := env.run(t, "scan", "--photos=false", env.photosDir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Turdus merula 乌鸫 (1)")
	requireNotContains(t, out, "turdus_merula_01.jpg")
}

func TestScanJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t, "turdus_merula_01.jpg", "sunset.jpg")

	out, _, err := env.run(t, "scan", "--json", env.photosDir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var resp classify.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if resp.Stats.Total != 2 || resp.Stats.Matched != 1 || resp.Stats.Unmatched != 1 {
		t.Fatalf("stats = %+v", resp.Stats)
	}
	if resp.TotalSpeciesCount != 2 {
		t.Fatalf("totalSpeciesCount = %d, want 2", resp.TotalSpeciesCount)
	}
	if got := resp.Tree.Count(); got != 1 {
		t.Fatalf("tree count = %d, want 1", got)
	}
}

func TestScanUsesConfiguredRoots(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t, "turdus_merula_01.jpg")
	env.cfg.Scan.Roots = []string{env.photosDir}
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := env.run(t, "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Turdus merula")
}

func TestScanWithoutRoots(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "scan")
	if err == nil {
		t.Fatal("expected error without roots")
	}
	requireContains(t, err.Error(), "no folders to scan")
}

func TestScanMissingReference(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t, "turdus_merula_01.jpg")
	if err := os.Remove(env.cfg.Paths.Reference); err != nil {
		t.Fatalf("remove reference: %v", err)
	}
	if _, _, err := env.run(t, "scan", env.photosDir); err == nil {
		t.Fatal("expected error for missing reference")
	}
}

func TestScanSessionCacheRemoved(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSessionCache())
	env.writePhotos(t, "turdus_merula_01.jpg")

	if _, _, err := env.run(t, "scan", env.photosDir); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := os.Stat(env.cfg.Paths.Cache); !os.IsNotExist(err) {
		t.Fatalf("expected session cache to be removed, stat err = %v", err)
	}
}

func TestScanRemote(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t, "turdus_merula_01.jpg")
	env.startServer(t)

	out, _, err := env.run(t, "scan", "--remote", "--json", env.photosDir)
	if err != nil {
		t.Fatalf("scan --remote: %v", err)
	}
	var resp classify.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if resp.Stats.Matched != 1 {
		t.Fatalf("matched = %d, want 1", resp.Stats.Matched)
	}
}

func TestRemoteWithoutServer(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t, "turdus_merula_01.jpg")

	_, _, err := env.run(t, "scan", "--remote", env.photosDir)
	if err == nil {
		t.Fatal("expected dial error")
	}
	requireContains(t, err.Error(), "birdsort serve")
}
