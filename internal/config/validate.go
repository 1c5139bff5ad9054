package config

import (
	"errors"
	"fmt"

	"stereomax/internal/filtergraph"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateNormalize(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTools() error {
	if c.Tools.TimeoutSeconds < 0 {
		return errors.New("tools.timeout_seconds must be zero (no timeout) or positive")
	}
	return nil
}

func (c *Config) validateNormalize() error {
	if c.Normalize.Workers < 0 {
		return errors.New("normalize.workers must be zero (auto) or positive")
	}
	if _, ok := filtergraph.Lookup(c.Normalize.Profile); !ok {
		return fmt.Errorf("normalize.profile %q is not a known profile (available: %v)", c.Normalize.Profile, filtergraph.ProfileNames())
	}
	return nil
}

func (c *Config) validateMerge() error {
	switch c.Merge.Strategy {
	case MergeAuto, MergeMkvmerge, MergeFFmpeg:
		return nil
	default:
		return fmt.Errorf("merge.strategy must be one of auto, mkvmerge, ffmpeg (got %q)", c.Merge.Strategy)
	}
}

func (c *Config) validateWatch() error {
	if c.Watch.SettleSeconds < 1 {
		return errors.New("watch.settle_seconds must be at least 1")
	}
	if len(c.Watch.Extensions) == 0 {
		return errors.New("watch.extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("logging rotation limits must not be negative")
	}
	return nil
}
