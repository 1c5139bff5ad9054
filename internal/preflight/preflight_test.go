package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stereomax/internal/config"
	"stereomax/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if r := CheckFreeSpace("space", dir, 1); !r.Passed {
		t.Fatalf("expected pass with a 1 byte minimum, got %s", r.Detail)
	}
	if r := CheckFreeSpace("space", dir, ^uint64(0)); r.Passed {
		t.Fatal("expected failure with an impossible minimum")
	}
	if r := CheckFreeSpace("space", filepath.Join(dir, "missing"), 1); r.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[uint64]string{
		512:     "512 B",
		2048:    "2.0 KiB",
		1 << 30: "1.0 GiB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckSystemDepsStrategy(t *testing.T) {
	bin := t.TempDir()
	cfg := config.Default()
	cfg.Tools.FFprobe = writeStub(t, bin, "ffprobe")
	cfg.Tools.FFmpeg = writeStub(t, bin, "ffmpeg")
	cfg.Tools.Mkvmerge = filepath.Join(bin, "missing-mkvmerge")

	cfg.Merge.Strategy = config.MergeAuto
	statuses := CheckSystemDeps(context.Background(), &cfg)
	if len(statuses) != 3 || !statuses[2].Optional {
		t.Fatalf("auto strategy should list optional mkvmerge: %#v", statuses)
	}

	cfg.Merge.Strategy = config.MergeMkvmerge
	statuses = CheckSystemDeps(context.Background(), &cfg)
	if statuses[2].Optional || statuses[2].Available {
		t.Fatalf("mkvmerge strategy should require mkvmerge: %#v", statuses[2])
	}

	cfg.Merge.Strategy = config.MergeFFmpeg
	if statuses = CheckSystemDeps(context.Background(), &cfg); len(statuses) != 2 {
		t.Fatalf("ffmpeg strategy should not check mkvmerge: %#v", statuses)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_OptionalMissingPasses(t *testing.T) {
	bin := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TempDir = t.TempDir()
	cfg.Tools.FFprobe = writeStub(t, bin, "ffprobe")
	cfg.Tools.FFmpeg = writeStub(t, bin, "ffmpeg")
	cfg.Tools.Mkvmerge = filepath.Join(bin, "missing-mkvmerge")
	cfg.Merge.Strategy = config.MergeAuto

	results := RunAll(context.Background(), &cfg)
	var names []string
	for _, r := range results {
		names = append(names, r.Name)
		if r.Name == "Temp free space" {
			continue // host dependent
		}
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if len(results) != 5 {
		t.Fatalf("unexpected checks: %v", names)
	}
}

func TestFailed(t *testing.T) {
	results := []Result{{Name: "a", Passed: true}, {Name: "b"}}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "b" {
		t.Fatalf("unexpected failed set: %#v", failed)
	}
}

func TestReady(t *testing.T) {
	bin := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TempDir = t.TempDir()
	cfg.Tools.FFprobe = writeStub(t, bin, "ffprobe")
	cfg.Tools.FFmpeg = filepath.Join(bin, "missing-ffmpeg")
	cfg.Tools.Mkvmerge = filepath.Join(bin, "missing-mkvmerge")
	cfg.Merge.Strategy = config.MergeAuto

	err := Ready(context.Background(), &cfg)
	if err == nil {
		t.Fatal("expected missing ffmpeg to fail readiness")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "FFmpeg") || strings.Contains(err.Error(), "mkvmerge") {
		t.Fatalf("unexpected readiness error: %v", err)
	}

	cfg.Tools.FFmpeg = writeStub(t, bin, "ffmpeg")
	if err := Ready(context.Background(), &cfg); err != nil {
		t.Fatalf("expected ready, got %v", err)
	}
}
