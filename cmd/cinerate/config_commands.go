package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cinerate/internal/config"
	"cinerate/internal/omdb"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the cinerate configuration",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample config.toml",
		Long: `Write a sample config.toml with the public lookup and detail endpoints,
the shared OMDb key, and a SQLite rating cache under the data directory.`,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveInitTarget(targetPath)
			if err != nil {
				return err
			}
			if err := writeSampleConfig(target, overwrite); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "The defaults work as-is; set detail.api_key (or export OMDB_API_KEY) to use a private OMDb key.")
			fmt.Fprintln(out, "Start the ratings API with: cinerate serve")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}

func resolveInitTarget(flagValue string) (string, error) {
	target := strings.TrimSpace(flagValue)
	if target == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return defaultPath, nil
	}
	expanded, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return expanded, nil
}

func writeSampleConfig(target string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if !overwrite {
		_, err := os.Stat(target)
		switch {
		case err == nil:
			return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("check config path: %w", err)
		}
	}
	if err := config.CreateSample(target); err != nil {
		return fmt.Errorf("create sample config: %w", err)
	}
	return nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and show the resolved endpoints and cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configFlagValue())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			printConfigSummary(cmd.OutOrStdout(), cfg, path, exists)
			return nil
		},
	}
}

func printConfigSummary(out io.Writer, cfg *config.Config, path string, exists bool) {
	fmt.Fprintf(out, "Config path: %s\n", path)
	if !exists {
		fmt.Fprintln(out, "Config file did not exist; defaults were used")
	}
	fmt.Fprintf(out, "Lookup service: %s\n", cfg.Lookup.BaseURL)
	fmt.Fprintf(out, "Detail service: %s (%s)\n", cfg.Detail.BaseURL, detailKeySource(cfg.Detail.APIKey))
	fmt.Fprintf(out, "Cache backend: %s\n", cfg.Cache.Backend)
	if cfg.Cache.Path != "" {
		fmt.Fprintf(out, "Cache path: %s\n", cfg.Cache.Path)
	}
	fmt.Fprintf(out, "Cache key prefix: %s\n", cfg.Cache.KeyPrefix)
	fmt.Fprintf(out, "API bind: %s\n", cfg.Paths.APIBind)
	fmt.Fprintln(out, "Configuration valid")
}

func detailKeySource(key string) string {
	if key == omdb.DefaultAPIKey {
		return "shared key"
	}
	return "private key"
}
