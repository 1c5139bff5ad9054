package tempfiles

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"stereomax/internal/logging"
	"stereomax/internal/media/audio"
)

func TestAllocateCreatesUniqueTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, "run1", logging.NewNop())

	var wg sync.WaitGroup
	paths := make([]string, 16)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := m.Allocate(".mka")
			if err != nil {
				t.Errorf("Allocate: %v", err)
				return
			}
			paths[i] = p
		}(i)
	}
	wg.Wait()

	seen := map[string]struct{}{}
	for _, p := range paths {
		if filepath.Dir(p) != dir {
			t.Fatalf("allocated outside temp dir: %s", p)
		}
		name := filepath.Base(p)
		if !strings.HasPrefix(name, "stereomax-run1-") || filepath.Ext(name) != ".mka" {
			t.Fatalf("unexpected name %q", name)
		}
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("allocated file missing: %v", err)
		}
		if _, dup := seen[p]; dup {
			t.Fatalf("duplicate path %s", p)
		}
		seen[p] = struct{}{}
	}
	if len(m.Tracked()) != len(paths) {
		t.Fatalf("expected %d tracked, got %d", len(paths), len(m.Tracked()))
	}
}

func TestAllocateNormalizesExtension(t *testing.T) {
	m := NewManager(t.TempDir(), "r", nil)
	p, err := m.Allocate("mka")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if !strings.HasSuffix(p, ".mka") || strings.HasSuffix(p, "..mka") {
		t.Fatalf("unexpected path %s", p)
	}
}

func TestAllocateFailsForMissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing"), "r", nil)
	if _, err := m.Allocate(".mka"); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if len(m.Tracked()) != 0 {
		t.Fatal("failed allocation must not be tracked")
	}
}

func TestCleanupRemovesAndWarns(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, "r", logging.NewNop())
	a, _ := m.Allocate(".mka")
	b, _ := m.Allocate(".mka")
	c, _ := m.Allocate(".mka")
	if err := os.Remove(b); err != nil {
		t.Fatal(err)
	}

	warnings := m.Cleanup(context.Background(), []string{a, b})
	if len(warnings) != 1 || warnings[0].Path != b || warnings[0].Reason != "already removed" {
		t.Fatalf("unexpected warnings %+v", warnings)
	}
	if _, err := os.Stat(a); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed", a)
	}
	if got := m.Tracked(); !slices.Equal(got, []string{c}) {
		t.Fatalf("expected only %s tracked, got %v", c, got)
	}

	if warnings := m.CleanupAll(context.Background()); len(warnings) != 0 {
		t.Fatalf("unexpected warnings %+v", warnings)
	}
	if len(m.Tracked()) != 0 {
		t.Fatal("expected nothing tracked after CleanupAll")
	}
}

func TestCleanupKeepsUnremovableTracked(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, "r", logging.NewNop())
	p, _ := m.Allocate("")
	// Replace the file with a non-empty directory so os.Remove fails.
	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(p, "child"), 0o755); err != nil {
		t.Fatal(err)
	}
	warnings := m.Cleanup(context.Background(), []string{p})
	if len(warnings) != 1 || warnings[0].Err == nil {
		t.Fatalf("expected removal warning, got %+v", warnings)
	}
	if !slices.Contains(m.Tracked(), p) {
		t.Fatal("unremovable path should remain tracked")
	}
	if !strings.Contains(warnings[0].String(), "remove failed") {
		t.Fatalf("unexpected warning text %q", warnings[0])
	}
}

func TestPreserveCopiesArtifacts(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(t.TempDir(), "keep")
	m := NewManager(dir, "r", logging.NewNop(), WithKeepDir(keep))
	p, _ := m.Allocate(".mka")
	if err := os.WriteFile(p, []byte("opus"), 0o600); err != nil {
		t.Fatal(err)
	}
	artifact := audio.Artifact{Path: p, Language: "eng", Layout: "5.1"}

	if warnings := m.Preserve(context.Background(), []audio.Artifact{artifact}); len(warnings) != 0 {
		t.Fatalf("unexpected warnings %+v", warnings)
	}
	kept := filepath.Join(keep, KeptName(artifact))
	data, err := os.ReadFile(kept)
	if err != nil || string(data) != "opus" {
		t.Fatalf("kept copy missing or wrong: %v %q", err, data)
	}
	base := strings.TrimSuffix(filepath.Base(p), ".mka")
	if filepath.Base(kept) != "normalized_"+base+"_lang_eng.mka" {
		t.Fatalf("unexpected kept name %s", filepath.Base(kept))
	}
}

func TestPreserveWithoutKeepDirIsNoop(t *testing.T) {
	m := NewManager(t.TempDir(), "r", nil)
	if w := m.Preserve(context.Background(), []audio.Artifact{{Path: "/missing"}}); w != nil {
		t.Fatalf("expected no warnings, got %+v", w)
	}
}

func TestPreserveWarnsOnMissingArtifact(t *testing.T) {
	m := NewManager(t.TempDir(), "r", nil, WithKeepDir(t.TempDir()))
	w := m.Preserve(context.Background(), []audio.Artifact{{Path: "/definitely/missing.mka", Language: "fr"}})
	if len(w) != 1 || w[0].Err == nil {
		t.Fatalf("expected copy warning, got %+v", w)
	}
}
