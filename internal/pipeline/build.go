package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"stereomax/internal/config"
	"stereomax/internal/filtergraph"
	"stereomax/internal/media/ffprobe"
	"stereomax/internal/merge"
	"stereomax/internal/normalize"
	"stereomax/internal/procexec"
	"stereomax/internal/services"
	"stereomax/internal/tempfiles"
)

// BuildOptions carries collaborators that outlive a single run.
type BuildOptions struct {
	Runner   procexec.Runner
	Recorder Recorder
	Logger   *slog.Logger
}

// Build wires an Orchestrator for one run from configuration. Each call gets
// a fresh run id and temp-file manager.
func Build(cfg *config.Config, opts BuildOptions) (*Orchestrator, error) {
	profile, ok := filtergraph.Lookup(cfg.Normalize.Profile)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "resolve profile",
			fmt.Sprintf("unknown profile %q", cfg.Normalize.Profile), nil)
	}
	runner := opts.Runner
	if runner == nil {
		runner = procexec.NewExecRunner(opts.Logger, cfg.ProcessTimeout())
	}
	timeout := cfg.ProcessTimeout()
	runID := uuid.NewString()

	var tempOpts []tempfiles.Option
	if cfg.Normalize.KeepArtifactsDir != "" {
		tempOpts = append(tempOpts, tempfiles.WithKeepDir(cfg.Normalize.KeepArtifactsDir))
	}
	temp := tempfiles.NewManager(cfg.Paths.TempDir, runID, opts.Logger, tempOpts...)

	probeClient := ffprobe.New(runner, cfg.Tools.FFprobe, timeout)
	merger, err := merge.NewFromConfig(cfg, runner, profile.Encode, opts.Logger)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		RunID:   runID,
		Profile: profile.Name,
		Prober:  normalize.NewProber(probeClient, opts.Logger),
		Normalizer: normalize.NewNormalizer(runner, temp, normalize.Options{
			Binary:  cfg.Tools.FFmpeg,
			Timeout: timeout,
			Profile: profile,
			Workers: cfg.NormalizeWorkers(),
		}, opts.Logger),
		Merger:     merger,
		Temp:       temp,
		Recorder:   opts.Recorder,
		LockOutput: true,
	}
	if cfg.Normalize.VerifyOutput {
		o.Verifier = NewOutputVerifier(probeClient, opts.Logger)
	}
	o.SetLogger(opts.Logger)
	return o, nil
}
