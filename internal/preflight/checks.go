package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"stereomax/internal/config"
	"stereomax/internal/deps"
)

// MinTempFreeBytes is the free space a temp directory needs before a run starts.
// Downmixed stereo artifacts are small, but a long multi-language film can
// produce several hundred megabytes.
const MinTempFreeBytes = 1 << 30

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minBytes available to unprivileged users.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	free, err := FreeBytes(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s free", FormatBytes(free))
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (need %s)", detail, FormatBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// FreeBytes reports the space available to unprivileged users under path.
func FreeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// CheckSystemDeps evaluates the media tools required by cfg. mkvmerge is
// optional under the auto merge strategy since ffmpeg can stand in for it.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Required for stream inspection",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for downmix and dynamics processing",
		},
	}
	switch cfg.Merge.Strategy {
	case config.MergeMkvmerge:
		requirements = append(requirements, deps.Requirement{
			Name:        "mkvmerge",
			Command:     cfg.Tools.Mkvmerge,
			Description: "Required for appending stereo tracks",
		})
	case config.MergeAuto:
		requirements = append(requirements, deps.Requirement{
			Name:        "mkvmerge",
			Command:     cfg.Tools.Mkvmerge,
			Description: "Preferred merge tool; ffmpeg is used when missing",
			Optional:    true,
		})
	}
	return deps.CheckBinaries(requirements)
}
