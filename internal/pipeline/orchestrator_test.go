package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"stereomax/internal/history"
	"stereomax/internal/logging"
	"stereomax/internal/media/audio"
	"stereomax/internal/merge"
	"stereomax/internal/normalize"
	"stereomax/internal/runlock"
	"stereomax/internal/tempfiles"
)

type fakeProber struct {
	descriptors []audio.Descriptor
	err         error
}

func (f *fakeProber) Probe(context.Context, string) ([]audio.Descriptor, error) {
	return f.descriptors, f.err
}

type fakeNormalizer struct {
	calls int
	temp  *fakeTemp
	err   error
}

func (f *fakeNormalizer) Normalize(_ context.Context, _ string, ds []audio.Descriptor) ([]audio.Artifact, error) {
	f.calls++
	var out []audio.Artifact
	for _, d := range ds {
		path := filepath.Join("/tmp", "artifact-"+d.Language+".mka")
		f.temp.tracked = append(f.temp.tracked, path)
		out = append(out, audio.ArtifactFor(d, path))
		if f.err != nil {
			return nil, f.err
		}
	}
	return out, nil
}

type fakeMerger struct {
	calls int
	err   error
}

func (f *fakeMerger) Merge(_ context.Context, _, output string, _ []audio.Artifact) (merge.Result, error) {
	f.calls++
	if f.err != nil {
		return merge.Result{}, f.err
	}
	return merge.Result{OutputPath: output, Strategy: "mkvmerge"}, nil
}

type fakeTemp struct {
	tracked      []string
	cleanupCalls [][]string
	preserved    int
}

func (f *fakeTemp) Tracked() []string { return slices.Clone(f.tracked) }

func (f *fakeTemp) Cleanup(_ context.Context, paths []string) []tempfiles.CleanupWarning {
	f.cleanupCalls = append(f.cleanupCalls, slices.Clone(paths))
	f.tracked = slices.DeleteFunc(f.tracked, func(p string) bool { return slices.Contains(paths, p) })
	return nil
}

func (f *fakeTemp) Preserve(context.Context, []audio.Artifact) []tempfiles.CleanupWarning {
	f.preserved++
	return nil
}

type fakeVerifier struct{ err error }

func (f fakeVerifier) Verify(context.Context, string, []audio.Descriptor, []audio.Artifact) error {
	return f.err
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []history.Run
	err  error
}

func (f *fakeRecorder) Record(_ context.Context, run history.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return f.err
}

type fixture struct {
	prober     *fakeProber
	normalizer *fakeNormalizer
	merger     *fakeMerger
	temp       *fakeTemp
	recorder   *fakeRecorder
	orch       *Orchestrator
}

func newFixture(descriptors ...audio.Descriptor) *fixture {
	temp := &fakeTemp{}
	f := &fixture{
		prober:     &fakeProber{descriptors: descriptors},
		normalizer: &fakeNormalizer{temp: temp},
		merger:     &fakeMerger{},
		temp:       temp,
		recorder:   &fakeRecorder{},
	}
	f.orch = &Orchestrator{
		RunID:      "run-1",
		Profile:    "stereo-max/v1",
		Prober:     f.prober,
		Normalizer: f.normalizer,
		Merger:     f.merger,
		Temp:       f.temp,
		Recorder:   f.recorder,
	}
	f.orch.SetLogger(logging.NewNop())
	return f
}

var twoStreams = []audio.Descriptor{
	{Position: 0, Language: "en", Layout: "5.1"},
	{Position: 1, Language: "fr", Layout: "7.1"},
}

func TestRunSuccess(t *testing.T) {
	f := newFixture(twoStreams...)
	res, err := f.orch.Run(context.Background(), "in.mkv", "out.mkv")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.State != StateDone || res.Strategy != "mkvmerge" || res.OutputPath != "out.mkv" || res.RunID != "run-1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(res.Artifacts))
	}
	if len(f.temp.cleanupCalls) != 1 || len(f.temp.cleanupCalls[0]) != 2 {
		t.Fatalf("expected one cleanup of both artifacts, got %v", f.temp.cleanupCalls)
	}
	if len(f.recorder.runs) != 1 || f.recorder.runs[0].Status != history.StatusDone || f.recorder.runs[0].StreamCount != 2 {
		t.Fatalf("unexpected history %+v", f.recorder.runs)
	}
}

func TestRunWithoutAudioIsNoop(t *testing.T) {
	f := newFixture()
	res, err := f.orch.Run(context.Background(), "silent.mkv", "out.mkv")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.State != StateDone {
		t.Fatalf("expected done, got %s", res.State)
	}
	if f.normalizer.calls != 0 || f.merger.calls != 0 || len(f.temp.cleanupCalls) != 0 || f.temp.preserved != 0 {
		t.Fatalf("expected no downstream work: normalize=%d merge=%d cleanup=%d", f.normalizer.calls, f.merger.calls, len(f.temp.cleanupCalls))
	}
	if f.recorder.runs[0].Status != history.StatusNoop {
		t.Fatalf("expected noop history, got %s", f.recorder.runs[0].Status)
	}
}

func TestRunProbeFailure(t *testing.T) {
	f := newFixture()
	f.prober.err = &normalize.ProbeError{Input: "in.mkv", Err: errors.New("exit status 1")}
	res, err := f.orch.Run(context.Background(), "in.mkv", "out.mkv")
	var probeErr *normalize.ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected ProbeError, got %v", err)
	}
	if res.State != StateFailed || res.FailedStage != StageProbe {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(f.temp.cleanupCalls) != 0 || f.normalizer.calls != 0 {
		t.Fatal("nothing should run after a probe failure")
	}
}

func TestRunNormalizeFailureCleansTrackedFiles(t *testing.T) {
	f := newFixture(twoStreams...)
	f.normalizer.err = &normalize.TranscodeError{Position: 0, Language: "en", Layout: "5.1", Err: errors.New("boom")}
	res, err := f.orch.Run(context.Background(), "in.mkv", "out.mkv")
	var transcodeErr *normalize.TranscodeError
	if !errors.As(err, &transcodeErr) {
		t.Fatalf("expected TranscodeError, got %v", err)
	}
	if res.State != StateFailed || res.FailedStage != StageNormalize {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.merger.calls != 0 {
		t.Fatal("merge must not run after normalize failure")
	}
	if len(f.temp.cleanupCalls) != 1 || len(f.temp.cleanupCalls[0]) != 1 {
		t.Fatalf("expected cleanup of the tracked temp file, got %v", f.temp.cleanupCalls)
	}
	if len(f.temp.tracked) != 0 {
		t.Fatalf("expected nothing left tracked, got %v", f.temp.tracked)
	}
	if f.recorder.runs[0].Status != history.StatusFailed || f.recorder.runs[0].FailedStage != StageNormalize {
		t.Fatalf("unexpected history %+v", f.recorder.runs[0])
	}
}

func TestRunMergeFailureCleansOnce(t *testing.T) {
	f := newFixture(twoStreams...)
	f.merger.err = &merge.MergeError{Attempts: []merge.Attempt{
		{Strategy: "mkvmerge", Err: errors.New("exit status 2")},
		{Strategy: "ffmpeg", Err: errors.New("exit status 1")},
	}}
	res, err := f.orch.Run(context.Background(), "in.mkv", "out.mkv")
	var mergeErr *merge.MergeError
	if !errors.As(err, &mergeErr) {
		t.Fatalf("expected MergeError, got %v", err)
	}
	if res.State != StateFailed || res.FailedStage != StageMerge {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(f.temp.cleanupCalls) != 1 {
		t.Fatalf("expected exactly one cleanup, got %d", len(f.temp.cleanupCalls))
	}
	want := audio.Paths(res.Artifacts)
	if !slices.Equal(f.temp.cleanupCalls[0], want) {
		t.Fatalf("cleanup paths %v, want %v", f.temp.cleanupCalls[0], want)
	}
}

func TestRunVerifyFailure(t *testing.T) {
	f := newFixture(twoStreams...)
	f.orch.Verifier = fakeVerifier{err: &VerifyError{Output: "out.mkv", Reason: "found 2 audio streams, expected at least 4"}}
	res, err := f.orch.Run(context.Background(), "in.mkv", "out.mkv")
	var verifyErr *VerifyError
	if !errors.As(err, &verifyErr) {
		t.Fatalf("expected VerifyError, got %v", err)
	}
	if res.FailedStage != StageVerify || len(f.temp.cleanupCalls) != 1 {
		t.Fatalf("unexpected result %+v cleanup=%v", res, f.temp.cleanupCalls)
	}
}

func TestRunRecorderFailureDoesNotFailRun(t *testing.T) {
	f := newFixture(twoStreams...)
	f.recorder.err = errors.New("database is locked")
	res, err := f.orch.Run(context.Background(), "in.mkv", "out.mkv")
	if err != nil || res.State != StateDone {
		t.Fatalf("expected success despite recorder error, got %v %+v", err, res)
	}
}

func TestRunWithoutAudioLeavesOutputLocationUntouched(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "missing")
	f := newFixture()
	f.orch.LockOutput = true
	if _, err := f.orch.Run(context.Background(), "silent.mkv", filepath.Join(outDir, "out.mkv")); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Fatalf("expected output directory to stay absent, stat err=%v", err)
	}
}

func TestRunOutputLockConflict(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.mkv")
	held, err := runlock.AcquireOutput(output)
	if err != nil {
		t.Fatalf("AcquireOutput: %v", err)
	}
	defer held.Release()

	f := newFixture(twoStreams...)
	f.orch.LockOutput = true
	res, err := f.orch.Run(context.Background(), "in.mkv", output)
	if !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if res.FailedStage != StageLock {
		t.Fatalf("unexpected failed stage %q", res.FailedStage)
	}
}
