package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"liftplan/internal/config"
	"liftplan/internal/daemonrun"
	"liftplan/internal/logging"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
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

// cliLogger writes warnings (or debug output with --verbose) to stderr so
// command output on stdout stays clean.
func (c *commandContext) cliLogger(stderr io.Writer) *slog.Logger {
	level := "warn"
	if c.verbose != nil && *c.verbose {
		level = "debug"
	}
	logger, err := logging.NewWithWriter(stderr, logging.Options{Level: level, Format: "console"})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withComponents opens the store and builds the scraper and planner for the
// duration of fn.
func (c *commandContext) withComponents(cmd *cobra.Command, fn func(*daemonrun.Components) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	components, err := daemonrun.Build(cfg, c.cliLogger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer components.Close()
	return fn(components)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// parseKeyValues turns key=value arguments into a map. An empty value is kept
// so callers can treat it as a removal.
func parseKeyValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid preference %q (expected key=value)", pair)
		}
		values[key] = strings.TrimSpace(value)
	}
	return values, nil
}
