package tempfiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"stereomax/internal/fileutil"
	"stereomax/internal/logging"
	"stereomax/internal/media/audio"
)

const (
	filePrefix = "stereomax"
	// allocateAttempts bounds retries when a generated name already exists.
	allocateAttempts = 5
)

// CleanupWarning records a path that could not be cleaned or preserved.
type CleanupWarning struct {
	Path   string
	Reason string
	Err    error
}

func (w CleanupWarning) String() string {
	if w.Err != nil {
		return fmt.Sprintf("%s: %s: %v", w.Path, w.Reason, w.Err)
	}
	return fmt.Sprintf("%s: %s", w.Path, w.Reason)
}

// Manager allocates and tracks temporary files for one run.
type Manager struct {
	dir     string
	runID   string
	keepDir string
	logger  *slog.Logger

	mu      sync.Mutex
	tracked []string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithKeepDir copies artifacts into dir before they are removed.
func WithKeepDir(dir string) Option {
	return func(m *Manager) {
		m.keepDir = strings.TrimSpace(dir)
	}
}

// NewManager constructs a manager that creates files in dir. An empty dir
// uses the system temp directory.
func NewManager(dir, runID string, logger *slog.Logger, opts ...Option) *Manager {
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}
	if strings.TrimSpace(runID) == "" {
		runID = "run"
	}
	m := &Manager{
		dir:    dir,
		runID:  runID,
		logger: logging.NewComponentLogger(logger, "tempfiles"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir reports where files are allocated.
func (m *Manager) Dir() string { return m.dir }

// KeepDir reports the artifact retention directory, or "".
func (m *Manager) KeepDir() string { return m.keepDir }

// Allocate creates a new empty file named stereomax-<run>-<uuid><ext> and
// tracks it. The file is created exclusively so concurrent runs sharing a
// directory never collide.
func (m *Manager) Allocate(ext string) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	var lastErr error
	for range allocateAttempts {
		name := fmt.Sprintf("%s-%s-%s%s", filePrefix, m.runID, uuid.NewString(), ext)
		path := filepath.Join(m.dir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				lastErr = err
				continue
			}
			return "", fmt.Errorf("allocate temp file: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", fmt.Errorf("allocate temp file: %w", err)
		}
		m.mu.Lock()
		m.tracked = append(m.tracked, path)
		m.mu.Unlock()
		return path, nil
	}
	return "", fmt.Errorf("allocate temp file: %w", lastErr)
}

// Tracked returns allocated paths that have not been cleaned, in allocation order.
func (m *Manager) Tracked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.tracked)
}

// Cleanup removes each path. Missing files and removal failures become
// warnings. Paths that are gone afterwards stop being tracked.
func (m *Manager) Cleanup(ctx context.Context, paths []string) []CleanupWarning {
	logger := logging.WithContext(ctx, m.logger)
	var warnings []CleanupWarning
	handled := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		removed, err := fileutil.RemoveIfExists(path)
		switch {
		case err != nil:
			warnings = append(warnings, CleanupWarning{Path: path, Reason: "remove failed", Err: err})
			logging.WarnWithContext(logger, "failed to remove temporary file", "temp_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the file manually"),
				logging.String(logging.FieldImpact, "temporary file left on disk"),
			)
			continue
		case !removed:
			warnings = append(warnings, CleanupWarning{Path: path, Reason: "already removed"})
			logging.WarnWithContext(logger, "temporary file already missing", "temp_cleanup_missing",
				logging.String("path", path),
				logging.String(logging.FieldErrorHint, "another process may be using the temp directory"),
				logging.String(logging.FieldImpact, "none"),
			)
		default:
			logger.Debug("temporary file removed", logging.String("path", path))
		}
		handled[path] = struct{}{}
	}

	m.mu.Lock()
	m.tracked = slices.DeleteFunc(m.tracked, func(p string) bool {
		_, ok := handled[p]
		return ok
	})
	m.mu.Unlock()
	return warnings
}

// CleanupAll removes every tracked path.
func (m *Manager) CleanupAll(ctx context.Context) []CleanupWarning {
	return m.Cleanup(ctx, m.Tracked())
}

// Preserve copies artifacts into the keep directory as
// normalized_<base>_lang_<language>.mka. It does nothing without a keep
// directory. Copy failures are warnings.
func (m *Manager) Preserve(ctx context.Context, artifacts []audio.Artifact) []CleanupWarning {
	if m.keepDir == "" || len(artifacts) == 0 {
		return nil
	}
	logger := logging.WithContext(ctx, m.logger)
	if err := os.MkdirAll(m.keepDir, 0o755); err != nil {
		logging.WarnWithContext(logger, "failed to create artifact keep directory", "artifact_keep_failed",
			logging.String("keep_dir", m.keepDir),
			logging.Error(err),
		)
		return []CleanupWarning{{Path: m.keepDir, Reason: "create keep dir failed", Err: err}}
	}
	var warnings []CleanupWarning
	for _, artifact := range artifacts {
		dest := filepath.Join(m.keepDir, KeptName(artifact))
		if err := fileutil.CopyFile(artifact.Path, dest); err != nil {
			warnings = append(warnings, CleanupWarning{Path: artifact.Path, Reason: "copy to keep dir failed", Err: err})
			logging.WarnWithContext(logger, "failed to keep normalized artifact", "artifact_keep_failed",
				logging.String("path", artifact.Path),
				logging.String("destination", dest),
				logging.Error(err),
			)
			continue
		}
		logger.Info("kept normalized artifact",
			logging.String(logging.FieldEventType, "artifact_kept"),
			logging.String("destination", dest),
			logging.String("language", artifact.Language),
		)
	}
	return warnings
}

// KeptName returns the retention file name for an artifact.
func KeptName(artifact audio.Artifact) string {
	base := strings.TrimSuffix(filepath.Base(artifact.Path), filepath.Ext(artifact.Path))
	lang := strings.TrimSpace(artifact.Language)
	if lang == "" {
		lang = audio.UndeterminedLanguage
	}
	return fmt.Sprintf("normalized_%s_lang_%s.mka", base, lang)
}
