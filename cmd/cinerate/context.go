package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cinerate/internal/app"
	"cinerate/internal/config"
	"cinerate/internal/logging"
)

type commandContext struct {
	configFlag  *string
	jsonFlag    *bool
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		jsonFlag:    jsonFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// JSONMode reports whether --json was passed.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

func (c *commandContext) logger() *slog.Logger {
	logger, err := logging.NewCLI(c.config, c.verbose())
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withStack opens the rating pipeline for a one-shot command and closes it
// afterwards.
func (c *commandContext) withStack(fn func(*app.Stack) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	stack, err := app.OpenStack(cfg, c.logger())
	if err != nil {
		return err
	}
	defer stack.Close()
	return fn(stack)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func orDash(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "-"
	}
	return *value
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
