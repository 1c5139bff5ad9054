package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stereomax/internal/history"
	"stereomax/internal/logging"
	"stereomax/internal/media/audio"
	"stereomax/internal/merge"
	"stereomax/internal/runlock"
	"stereomax/internal/services"
	"stereomax/internal/tempfiles"
)

// Prober discovers audio streams.
type Prober interface {
	Probe(ctx context.Context, inputPath string) ([]audio.Descriptor, error)
}

// Normalizer renders descriptors into artifacts.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath string, descriptors []audio.Descriptor) ([]audio.Artifact, error)
}

// Merger writes the output container.
type Merger interface {
	Merge(ctx context.Context, inputPath, outputPath string, artifacts []audio.Artifact) (merge.Result, error)
}

// TempFiles tracks and removes temporary artifacts.
type TempFiles interface {
	Tracked() []string
	Cleanup(ctx context.Context, paths []string) []tempfiles.CleanupWarning
	Preserve(ctx context.Context, artifacts []audio.Artifact) []tempfiles.CleanupWarning
}

// Verifier checks a merged output.
type Verifier interface {
	Verify(ctx context.Context, outputPath string, descriptors []audio.Descriptor, artifacts []audio.Artifact) error
}

// Recorder persists run outcomes.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Result summarizes a run.
type Result struct {
	RunID       string
	State       State
	FailedStage string
	Descriptors []audio.Descriptor
	Artifacts   []audio.Artifact
	OutputPath  string
	Strategy    string
	Warnings    []tempfiles.CleanupWarning
	Duration    time.Duration
}

// Orchestrator runs the pipeline for one input.
type Orchestrator struct {
	RunID      string
	Profile    string
	Prober     Prober
	Normalizer Normalizer
	Merger     Merger
	Temp       TempFiles
	// Verifier and Recorder are optional.
	Verifier Verifier
	Recorder Recorder
	// LockOutput takes an advisory lock on the output path once the probe has
	// found audio to process. A no-op run never touches the output location.
	LockOutput bool

	logger *slog.Logger
	now    func() time.Time
}

// SetLogger updates the orchestrator's logging destination.
func (o *Orchestrator) SetLogger(logger *slog.Logger) {
	o.logger = logging.NewComponentLogger(logger, "pipeline")
}

func (o *Orchestrator) clock() time.Time {
	if o.now != nil {
		return o.now()
	}
	return time.Now()
}

// Run executes probe, normalize, merge, cleanup and optional verification.
// A run whose input has no audio streams succeeds in state done without
// invoking later stages.
func (o *Orchestrator) Run(ctx context.Context, inputPath, outputPath string) (Result, error) {
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	if o.logger == nil {
		o.SetLogger(nil)
	}
	started := o.clock()
	res := Result{RunID: o.RunID, State: StateStart}
	ctx = services.WithInput(services.WithRunID(ctx, o.RunID), inputPath)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("output", outputPath),
		logging.String("profile", o.Profile),
	)

	finish := func(runErr error) (Result, error) {
		res.Duration = o.clock().Sub(started)
		o.record(ctx, logger, inputPath, outputPath, res, runErr, started)
		if runErr != nil {
			res.State = StateFailed
			logging.ErrorWithContext(logger, "run failed", "run_failed",
				logging.String("failed_stage", res.FailedStage),
				logging.Error(runErr),
				logging.Duration("elapsed", res.Duration),
			)
			return res, runErr
		}
		logger.Info("run finished",
			logging.String(logging.FieldEventType, "run_complete"),
			logging.String("state", string(res.State)),
			logging.Int("stream_count", len(res.Descriptors)),
			logging.String("strategy", res.Strategy),
			logging.Duration("elapsed", res.Duration),
		)
		return res, nil
	}
	fail := func(stage string, err error) (Result, error) {
		res.State = StateFailed
		res.FailedStage = stage
		return finish(fmt.Errorf("%s: %w", stage, err))
	}

	descriptors, err := o.Prober.Probe(services.WithStage(ctx, StageProbe), inputPath)
	if err != nil {
		return fail(StageProbe, err)
	}
	res.Descriptors = descriptors
	res.State = StateProbed

	if len(descriptors) == 0 {
		logger.Info("no audio streams found; nothing to do",
			logging.String(logging.FieldEventType, "run_noop"),
		)
		res.State = StateDone
		return finish(nil)
	}

	if o.LockOutput {
		lock, err := runlock.AcquireOutput(outputPath)
		if err != nil {
			return fail(StageLock, err)
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logging.WarnWithContext(logger, "failed to release output lock", "lock_release_failed",
					logging.String("lock", lock.Path()),
					logging.Error(err),
				)
			}
		}()
	}

	artifacts, err := o.Normalizer.Normalize(services.WithStage(ctx, StageNormalize), inputPath, descriptors)
	if err != nil {
		res.Warnings = o.Temp.Cleanup(services.WithStage(ctx, StageCleanup), o.Temp.Tracked())
		return fail(StageNormalize, err)
	}
	res.Artifacts = artifacts
	res.State = StateNormalized

	mergeRes, mergeErr := o.Merger.Merge(services.WithStage(ctx, StageMerge), inputPath, outputPath, artifacts)
	if mergeErr == nil {
		res.OutputPath = mergeRes.OutputPath
		res.Strategy = mergeRes.Strategy
		res.State = StateMerged
	}

	cleanupCtx := services.WithStage(ctx, StageCleanup)
	res.Warnings = append(res.Warnings, o.Temp.Preserve(cleanupCtx, artifacts)...)
	res.Warnings = append(res.Warnings, o.Temp.Cleanup(cleanupCtx, audio.Paths(artifacts))...)
	if mergeErr != nil {
		return fail(StageMerge, mergeErr)
	}
	res.State = StateCleaned

	if o.Verifier != nil {
		if err := o.Verifier.Verify(services.WithStage(ctx, StageVerify), res.OutputPath, descriptors, artifacts); err != nil {
			return fail(StageVerify, err)
		}
	}
	res.State = StateDone
	return finish(nil)
}

func (o *Orchestrator) record(ctx context.Context, logger *slog.Logger, inputPath, outputPath string, res Result, runErr error, started time.Time) {
	if o.Recorder == nil {
		return
	}
	run := history.Run{
		ID:          res.RunID,
		Input:       inputPath,
		Output:      outputPath,
		Profile:     o.Profile,
		Status:      history.StatusDone,
		FailedStage: res.FailedStage,
		StreamCount: len(res.Descriptors),
		Strategy:    res.Strategy,
		StartedAt:   started,
		FinishedAt:  started.Add(res.Duration),
	}
	switch {
	case runErr != nil:
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	case len(res.Descriptors) == 0:
		run.Status = history.StatusNoop
	}
	if err := o.Recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run outcome unaffected; history incomplete"),
		)
	}
}
