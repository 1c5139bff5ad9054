package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	if err := c.normalizeNormalize(); err != nil {
		return err
	}
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	c.Merge.Strategy = strings.ToLower(strings.TrimSpace(c.Merge.Strategy))
	if c.Merge.Strategy == "" {
		c.Merge.Strategy = defaultMergeStrategy
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = os.TempDir()
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

// normalizeTools applies STEREOMAX_* environment overrides, then defaults.
func (c *Config) normalizeTools() {
	overrides := []struct {
		env    string
		target *string
		def    string
	}{
		{"STEREOMAX_FFPROBE", &c.Tools.FFprobe, defaultFFprobe},
		{"STEREOMAX_FFMPEG", &c.Tools.FFmpeg, defaultFFmpeg},
		{"STEREOMAX_MKVMERGE", &c.Tools.Mkvmerge, defaultMkvmerge},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.env); ok && strings.TrimSpace(value) != "" {
			*o.target = value
		}
		*o.target = strings.TrimSpace(*o.target)
		if *o.target == "" {
			*o.target = o.def
		}
	}
}

func (c *Config) normalizeNormalize() error {
	c.Normalize.Profile = strings.TrimSpace(c.Normalize.Profile)
	if c.Normalize.Profile == "" {
		c.Normalize.Profile = defaultProfile
	}
	if strings.TrimSpace(c.Normalize.KeepArtifactsDir) != "" {
		expanded, err := expandPath(c.Normalize.KeepArtifactsDir)
		if err != nil {
			return fmt.Errorf("normalize.keep_artifacts_dir: %w", err)
		}
		c.Normalize.KeepArtifactsDir = expanded
	}
	return nil
}

func (c *Config) normalizeWatch() error {
	exts := make([]string, 0, len(c.Watch.Extensions))
	seen := make(map[string]struct{}, len(c.Watch.Extensions))
	for _, ext := range c.Watch.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	c.Watch.Extensions = exts
	if strings.TrimSpace(c.Watch.OutputDir) != "" {
		expanded, err := expandPath(c.Watch.OutputDir)
		if err != nil {
			return fmt.Errorf("watch.output_dir: %w", err)
		}
		c.Watch.OutputDir = expanded
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
