package preflight

import (
	"context"
	"fmt"
	"strings"

	"stereomax/internal/config"
	"stereomax/internal/deps"
	"stereomax/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// RunAll executes the filesystem and dependency checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckFreeSpace("Temp free space", cfg.Paths.TempDir, MinTempFreeBytes),
	}
	if cfg.Normalize.KeepArtifactsDir != "" {
		results = append(results, CheckDirectoryAccess("Artifact directory", cfg.Normalize.KeepArtifactsDir))
	}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		r := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Command}
		if !status.Available {
			r.Detail = status.Detail
			if status.Optional {
				r.Detail += " (optional)"
			}
		}
		results = append(results, r)
	}
	return results
}

// Ready returns an error naming every failed check a run cannot proceed
// without: required binaries and temp directory access. Free space is only
// reported by RunAll.
func Ready(ctx context.Context, cfg *config.Config) error {
	checks := []Result{CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir)}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		if !status.Available && !status.Optional {
			checks = append(checks, Result{Name: status.Name, Detail: status.Detail})
		}
	}
	failed := Failed(checks)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, len(failed))
	for i, r := range failed {
		parts[i] = fmt.Sprintf("%s: %s", r.Name, r.Detail)
	}
	return services.Wrap(services.ErrNotFound, "preflight", "", strings.Join(parts, "; "), nil)
}
