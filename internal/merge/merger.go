package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"stereomax/internal/config"
	"stereomax/internal/fileutil"
	"stereomax/internal/filtergraph"
	"stereomax/internal/logging"
	"stereomax/internal/media/audio"
	"stereomax/internal/procexec"
	"stereomax/internal/services"
)

const stagingTag = "stereomax-tmp"

// Result describes a successful merge.
type Result struct {
	OutputPath string
	Strategy   string
}

// Attempt records one failed strategy. Stderr holds the tool's diagnostic
// output, taken from stdout when the tool wrote nothing to stderr.
type Attempt struct {
	Strategy string
	Err      error
	Stderr   string
}

// MergeError reports that every strategy failed.
type MergeError struct {
	Attempts []Attempt
}

func (e *MergeError) Error() string {
	if len(e.Attempts) == 0 {
		return "merge failed: no strategies configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Strategy + ": " + a.Err.Error()
	}
	return "merge failed: " + strings.Join(parts, "; ")
}

func (e *MergeError) Unwrap() []error {
	errs := []error{services.ErrExternalTool}
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Merger tries strategies in order.
type Merger struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewMerger constructs a merger over the given ordered strategies.
func NewMerger(logger *slog.Logger, strategies ...Strategy) *Merger {
	return &Merger{strategies: strategies, logger: logging.NewComponentLogger(logger, "merger")}
}

// NewFromConfig builds the strategy list selected by merge.strategy.
func NewFromConfig(cfg *config.Config, runner procexec.Runner, encode filtergraph.EncodeParams, logger *slog.Logger) (*Merger, error) {
	timeout := cfg.ProcessTimeout()
	mkv := NewMkvmerge(runner, cfg.Tools.Mkvmerge, timeout, logger)
	ff := NewFFmpeg(runner, cfg.Tools.FFmpeg, timeout, encode)
	switch cfg.Merge.Strategy {
	case config.MergeAuto, "":
		return NewMerger(logger, mkv, ff), nil
	case config.MergeMkvmerge:
		return NewMerger(logger, mkv), nil
	case config.MergeFFmpeg:
		return NewMerger(logger, ff), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "merge", "select strategy", fmt.Sprintf("unknown strategy %q", cfg.Merge.Strategy), nil)
	}
}

// StrategyNames reports the configured order.
func (m *Merger) StrategyNames() []string {
	names := make([]string, len(m.strategies))
	for i, s := range m.strategies {
		names[i] = s.Name()
	}
	return names
}

// Merge writes outputPath from inputPath plus artifacts using the first
// strategy that succeeds. Each attempt writes to a staging file that is
// renamed over outputPath on success and removed on failure.
func (m *Merger) Merge(ctx context.Context, inputPath, outputPath string, artifacts []audio.Artifact) (Result, error) {
	if len(artifacts) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "merge", "validate", "no artifacts to merge", nil)
	}
	if strings.TrimSpace(outputPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "merge", "validate", "output path is required", nil)
	}
	logger := logging.WithContext(ctx, m.logger)
	staging := fileutil.StagingPath(outputPath, stagingTag)

	var attempts []Attempt
	for _, strategy := range m.strategies {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Strategy: strategy.Name(), Err: err})
			break
		}
		logger.Info("merging normalized tracks",
			logging.String(logging.FieldEventType, "merge_attempt"),
			logging.String("strategy", strategy.Name()),
			logging.String("output", outputPath),
			logging.Int("track_count", len(artifacts)),
		)
		err := m.attempt(ctx, strategy, inputPath, staging, outputPath, artifacts)
		if err == nil {
			logger.Info("merge complete",
				logging.String(logging.FieldEventType, "merge_complete"),
				logging.String("strategy", strategy.Name()),
				logging.String("output", outputPath),
			)
			return Result{OutputPath: outputPath, Strategy: strategy.Name()}, nil
		}

		attempt := Attempt{Strategy: strategy.Name(), Err: err}
		var exitErr *procexec.ExitError
		if errors.As(err, &exitErr) {
			attempt.Stderr = exitErr.Diagnostic()
		}
		attempts = append(attempts, attempt)
		logging.WarnWithContext(logger, "merge strategy failed", "merge_attempt_failed",
			logging.String("strategy", strategy.Name()),
			logging.Error(err),
			logging.String("stderr", attempt.Stderr),
			logging.String(logging.FieldErrorHint, "check the tool is installed and the input container is readable"),
			logging.String(logging.FieldImpact, "trying next strategy if available"),
		)
	}
	return Result{}, &MergeError{Attempts: attempts}
}

func (m *Merger) attempt(ctx context.Context, strategy Strategy, inputPath, staging, outputPath string, artifacts []audio.Artifact) error {
	if _, err := fileutil.RemoveIfExists(staging); err != nil {
		return fmt.Errorf("clear stale staging file: %w", err)
	}
	if err := strategy.Merge(ctx, inputPath, staging, artifacts); err != nil {
		m.discard(ctx, staging)
		return err
	}
	if _, err := os.Stat(staging); err != nil {
		return fmt.Errorf("%s did not produce output: %w", strategy.Name(), err)
	}
	if err := os.Rename(staging, outputPath); err != nil {
		m.discard(ctx, staging)
		return fmt.Errorf("move staged output into place: %w", err)
	}
	return nil
}

func (m *Merger) discard(ctx context.Context, staging string) {
	if _, err := fileutil.RemoveIfExists(staging); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "failed to remove staging file", "staging_cleanup_failed",
			logging.String("path", staging),
			logging.Error(err),
		)
	}
}
