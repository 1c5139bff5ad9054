package merge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"stereomax/internal/config"
	"stereomax/internal/filtergraph"
	"stereomax/internal/logging"
	"stereomax/internal/media/audio"
	"stereomax/internal/procexec"
	"stereomax/internal/services"
	"stereomax/internal/testsupport"
)

type mergeFixture struct {
	input     string
	output    string
	artifacts []audio.Artifact
	runner    *testsupport.FakeRunner
	merger    *Merger
}

func newMergeFixture(t *testing.T, handler func(context.Context, procexec.Command) (procexec.Result, error)) *mergeFixture {
	t.Helper()
	dir := t.TempDir()
	f := &mergeFixture{
		input:  filepath.Join(dir, "movie.mkv"),
		output: filepath.Join(dir, "out", "movie.mkv"),
		artifacts: []audio.Artifact{
			{Path: filepath.Join(dir, "a.mka"), Language: "en", Layout: "5.1", Position: 0},
			{Path: filepath.Join(dir, "b.mka"), Language: "fr", Layout: "7.1", Position: 1},
		},
		runner: &testsupport.FakeRunner{Handler: handler},
	}
	if err := os.MkdirAll(filepath.Dir(f.output), 0o755); err != nil {
		t.Fatal(err)
	}
	logger := logging.NewNop()
	f.merger = NewMerger(logger,
		NewMkvmerge(f.runner, "mkvmerge", 0, logger),
		NewFFmpeg(f.runner, "ffmpeg", 0, filtergraph.StereoMaxV1.Encode),
	)
	return f
}

// outputOf returns the path a fake tool invocation should write.
func outputOf(cmd procexec.Command) string {
	if cmd.Name == "mkvmerge" {
		return testsupport.ArgAfter(cmd, "-o")
	}
	return testsupport.LastArg(cmd)
}

func writeOutput(cmd procexec.Command, content string) {
	_ = os.WriteFile(outputOf(cmd), []byte(content), 0o644)
}

func TestMergePrefersMkvmerge(t *testing.T) {
	f := newMergeFixture(t, func(_ context.Context, cmd procexec.Command) (procexec.Result, error) {
		writeOutput(cmd, cmd.Name)
		return procexec.Result{Name: cmd.Name}, nil
	})

	res, err := f.merger.Merge(context.Background(), f.input, f.output, f.artifacts)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if res.Strategy != "mkvmerge" || res.OutputPath != f.output {
		t.Fatalf("unexpected result %+v", res)
	}
	data, err := os.ReadFile(f.output)
	if err != nil || string(data) != "mkvmerge" {
		t.Fatalf("output not written by mkvmerge: %v %q", err, data)
	}
	if len(f.runner.CallsTo("ffmpeg")) != 0 {
		t.Fatal("ffmpeg must not run when mkvmerge succeeds")
	}

	call := f.runner.CallsTo("mkvmerge")[0]
	staging := filepath.Join(filepath.Dir(f.output), ".movie.stereomax-tmp.mkv")
	if call.Args[1] != staging || call.Args[2] != f.input {
		t.Fatalf("unexpected mkvmerge args %v", call.Args)
	}
	joined := strings.Join(call.Args, "|")
	for _, fragment := range []string{
		"--language|0:en|--track-name|0:EN stereo-max|--default-track|0:no|" + f.artifacts[0].Path,
		"--language|0:fr|--track-name|0:FR stereo-max|--default-track|0:no|" + f.artifacts[1].Path,
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("mkvmerge args missing %q: %v", fragment, call.Args)
		}
	}
	if _, err := os.Stat(staging); !os.IsNotExist(err) {
		t.Fatal("staging file should be renamed away")
	}
}

func TestMergeFallsBackToFFmpeg(t *testing.T) {
	f := newMergeFixture(t, func(_ context.Context, cmd procexec.Command) (procexec.Result, error) {
		if cmd.Name == "mkvmerge" {
			writeOutput(cmd, "partial")
			return testsupport.Exit(cmd, 2, "Error: unsupported container")
		}
		writeOutput(cmd, "ffmpeg")
		return procexec.Result{Name: cmd.Name}, nil
	})

	res, err := f.merger.Merge(context.Background(), f.input, f.output, f.artifacts)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if res.Strategy != "ffmpeg" {
		t.Fatalf("expected ffmpeg strategy, got %q", res.Strategy)
	}
	data, _ := os.ReadFile(f.output)
	if string(data) != "ffmpeg" {
		t.Fatalf("unexpected output content %q", data)
	}
	order := f.runner.Calls()
	if len(order) != 2 || order[0].Name != "mkvmerge" || order[1].Name != "ffmpeg" {
		t.Fatalf("unexpected call order %+v", order)
	}
	args := strings.Join(order[1].Args, " ")
	for _, fragment := range []string{
		"-metadata:s:a:2 title=EN stereo-max -metadata:s:a:2 language=en -disposition:a:2 0",
		"-metadata:s:a:3 title=FR stereo-max -metadata:s:a:3 language=fr -disposition:a:3 0",
		"-f matroska",
	} {
		if !strings.Contains(args, fragment) {
			t.Fatalf("ffmpeg args missing %q: %s", fragment, args)
		}
	}
}

func TestMergeTreatsMkvmergeWarningsAsSuccess(t *testing.T) {
	f := newMergeFixture(t, func(_ context.Context, cmd procexec.Command) (procexec.Result, error) {
		writeOutput(cmd, cmd.Name)
		if cmd.Name == "mkvmerge" {
			return testsupport.Exit(cmd, 1, "")
		}
		return procexec.Result{Name: cmd.Name}, nil
	})
	res, err := f.merger.Merge(context.Background(), f.input, f.output, f.artifacts)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if res.Strategy != "mkvmerge" {
		t.Fatalf("expected mkvmerge result, got %q", res.Strategy)
	}
}

func TestMergeAllStrategiesFail(t *testing.T) {
	f := newMergeFixture(t, func(_ context.Context, cmd procexec.Command) (procexec.Result, error) {
		writeOutput(cmd, "partial")
		return testsupport.Exit(cmd, 2, cmd.Name+" exploded")
	})

	_, err := f.merger.Merge(context.Background(), f.input, f.output, f.artifacts)
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) {
		t.Fatalf("expected MergeError, got %v", err)
	}
	if len(mergeErr.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %+v", mergeErr.Attempts)
	}
	if mergeErr.Attempts[0].Strategy != "mkvmerge" || mergeErr.Attempts[0].Stderr != "mkvmerge exploded" {
		t.Fatalf("unexpected first attempt %+v", mergeErr.Attempts[0])
	}
	if mergeErr.Attempts[1].Strategy != "ffmpeg" || mergeErr.Attempts[1].Stderr != "ffmpeg exploded" {
		t.Fatalf("unexpected second attempt %+v", mergeErr.Attempts[1])
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("expected external tool marker")
	}
	entries, _ := os.ReadDir(filepath.Dir(f.output))
	if len(entries) != 0 {
		t.Fatalf("expected no output or staging files, found %v", entries)
	}
}

func TestMergeKeepsMkvmergeStdoutDiagnostic(t *testing.T) {
	f := newMergeFixture(t, func(_ context.Context, cmd procexec.Command) (procexec.Result, error) {
		if cmd.Name == "mkvmerge" {
			out := "Error: The file 'movie.mkv' has an unsupported container"
			res := procexec.Result{Name: cmd.Name, Args: cmd.Args, ExitCode: 2, Stdout: []byte(out + "\n")}
			return res, &procexec.ExitError{Name: cmd.Name, ExitCode: 2, Stdout: res.StdoutText()}
		}
		return testsupport.Exit(cmd, 1, "ffmpeg broke")
	})

	_, err := f.merger.Merge(context.Background(), f.input, f.output, f.artifacts)
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) || len(mergeErr.Attempts) != 2 {
		t.Fatalf("expected both attempts to fail, got %v", err)
	}
	if got := mergeErr.Attempts[0].Stderr; got != "Error: The file 'movie.mkv' has an unsupported container" {
		t.Fatalf("mkvmerge diagnostic lost: %q", got)
	}
	if mergeErr.Attempts[1].Stderr != "ffmpeg broke" {
		t.Fatalf("unexpected ffmpeg diagnostic %q", mergeErr.Attempts[1].Stderr)
	}
	if !strings.Contains(err.Error(), "unsupported container") {
		t.Fatalf("expected mkvmerge output in message, got %q", err.Error())
	}
}

func TestMergeMissingOutputCountsAsFailure(t *testing.T) {
	f := newMergeFixture(t, func(_ context.Context, cmd procexec.Command) (procexec.Result, error) {
		return procexec.Result{Name: cmd.Name}, nil
	})
	_, err := f.merger.Merge(context.Background(), f.input, f.output, f.artifacts)
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) || len(mergeErr.Attempts) != 2 {
		t.Fatalf("expected both attempts to fail, got %v", err)
	}
	if !strings.Contains(mergeErr.Error(), "did not produce output") {
		t.Fatalf("unexpected error %q", mergeErr)
	}
}

func TestMergeRequiresArtifacts(t *testing.T) {
	f := newMergeFixture(t, nil)
	_, err := f.merger.Merge(context.Background(), f.input, f.output, nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.runner.Calls()) != 0 {
		t.Fatal("no tool should run without artifacts")
	}
}

func TestNewFromConfigSelectsStrategies(t *testing.T) {
	tests := map[string][]string{
		config.MergeAuto:     {"mkvmerge", "ffmpeg"},
		config.MergeMkvmerge: {"mkvmerge"},
		config.MergeFFmpeg:   {"ffmpeg"},
	}
	for strategy, want := range tests {
		cfg := config.Default()
		cfg.Merge.Strategy = strategy
		m, err := NewFromConfig(&cfg, &testsupport.FakeRunner{}, filtergraph.StereoMaxV1.Encode, logging.NewNop())
		if err != nil {
			t.Fatalf("%s: NewFromConfig returned error: %v", strategy, err)
		}
		if got := m.StrategyNames(); !slices.Equal(got, want) {
			t.Fatalf("%s: strategies = %v, want %v", strategy, got, want)
		}
	}

	cfg := config.Default()
	cfg.Merge.Strategy = "copy"
	if _, err := NewFromConfig(&cfg, &testsupport.FakeRunner{}, filtergraph.StereoMaxV1.Encode, logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
