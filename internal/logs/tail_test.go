package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"stereomax/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stereomax.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	result, err := logs.Tail(path, 2, nil)
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if !slices.Equal(result.Lines, []string{"b", "c"}) {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", result.Offset)
	}
}

func TestTailSkipsPartialLine(t *testing.T) {
	path := writeLog(t, "a\nb\npartial")
	result, err := logs.Tail(path, 10, nil)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if !slices.Equal(result.Lines, []string{"a", "b"}) || result.Offset != 4 {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(filepath.Join(t.TempDir(), "missing.log"), 5, nil)
	if err != nil || len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result for missing file, got %#v (%v)", result, err)
	}
}

func TestRunMatcher(t *testing.T) {
	path := writeLog(t, `{"msg":"start","run_id":"r1"}`+"\n"+
		`{"msg":"start","run_id":"r2"}`+"\n"+
		"2026-01-01 INFO [pipeline] – run finished run_id=r1\n")

	result, err := logs.Tail(path, 10, logs.RunMatcher("r1"))
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected both r1 lines, got %#v", result.Lines)
	}
	if logs.RunMatcher("  ") != nil {
		t.Fatal("blank run id should match everything")
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	initial, err := logs.Tail(path, 1, nil)
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan string, 4)
	errCh := make(chan error, 1)
	go func() {
		errCh <- logs.Follow(ctx, path, initial.Offset, nil, func(line string) { got <- line })
	}()

	time.Sleep(100 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case line := <-got:
		if line != "later" {
			t.Fatalf("unexpected line %q", line)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("follow did not emit appended line")
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("follow returned error: %v", err)
	}
}
