package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stereomax/internal/config"
	"stereomax/internal/history"
	"stereomax/internal/logging"
	"stereomax/internal/pipeline"
	"stereomax/internal/procexec"
	"stereomax/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the command logger once. Console output follows the
// command's stderr so tests can capture it.
func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		opts := logging.ConfigOptions(cfg)
		opts.Console = cmd.ErrOrStderr()
		c.logger, c.loggerErr = logging.New(opts)
	})
	return c.logger, c.loggerErr
}

// runner returns the process runner commands use for external tools.
func (c *commandContext) runner(cfg *config.Config, logger *slog.Logger) procexec.Runner {
	return procexec.NewExecRunner(logger, cfg.ProcessTimeout())
}

// openRecorder opens the run history when enabled. The returned close func
// is always safe to call.
func (c *commandContext) openRecorder(cfg *config.Config) (pipeline.Recorder, func(), error) {
	if !cfg.History.Enabled {
		return nil, func() {}, nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open history: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
