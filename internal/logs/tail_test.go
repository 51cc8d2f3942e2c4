package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"birdsort/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "birdsort.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func TestTailLastLines(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		contains string
		want     []string
	}{
		{"last two", 2, "", []string{"b scan_id=2", "c scan_id=1"}},
		{"more than available", 10, "", []string{"a scan_id=1", "b scan_id=2", "c scan_id=1"}},
		{"filtered", 5, "scan_id=1", []string{"a scan_id=1", "c scan_id=1"}},
		{"zero limit", 0, "", nil},
	}
	path := writeLog(t, "a scan_id=1\nb scan_id=2\nc scan_id=1\n")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: tt.limit, Contains: tt.contains})
			if err != nil {
				t.Fatalf("Tail: %v", err)
			}
			if !slices.Equal(result.Lines, tt.want) {
				t.Fatalf("lines = %#v, want %#v", result.Lines, tt.want)
			}
			if result.Offset != 36 {
				t.Fatalf("offset = %d, want end of file", result.Offset)
			}
		})
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "none.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestTailDirectory(t *testing.T) {
	if _, err := logs.Tail(context.Background(), t.TempDir(), logs.TailOptions{Offset: -1}); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestTailResumesFromOffset(t *testing.T) {
	path := writeLog(t, "one\n")
	first, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	appendLog(t, path, "two\nthr")
	second, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: first.Offset})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if !slices.Equal(second.Lines, []string{"two"}) {
		t.Fatalf("lines = %#v, want [two]", second.Lines)
	}

	appendLog(t, path, "ee\n")
	third, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: second.Offset})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if !slices.Equal(third.Lines, []string{"three"}) {
		t.Fatalf("partial line not completed: %#v", third.Lines)
	}
}

func TestTailRestartsAfterTruncation(t *testing.T) {
	path := writeLog(t, "short\n")
	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 1000})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if !slices.Equal(result.Lines, []string{"short"}) {
		t.Fatalf("lines = %#v", result.Lines)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := writeLog(t, "start\n")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}

	done := make(chan logs.TailResult, 1)
	go func(offset int64) {
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		done <- res
	}(result.Offset)

	time.Sleep(200 * time.Millisecond)
	appendLog(t, path, "later\n")

	select {
	case res := <-done:
		if !slices.Equal(res.Lines, []string{"later"}) {
			t.Fatalf("unexpected follow lines: %#v", res.Lines)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}

func TestTailFollowCancelled(t *testing.T) {
	path := writeLog(t, "start\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := logs.Tail(ctx, path, logs.TailOptions{Offset: 6, Follow: true, Wait: time.Minute})
	if err == nil {
		t.Fatal("expected context error")
	}
}
