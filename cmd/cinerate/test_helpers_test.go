package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cinerate/internal/config"
	"cinerate/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	upstream   *testsupport.Upstream
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	up := testsupport.NewUpstream(t, map[string]testsupport.Film{
		"the matrix": {IMDbID: "tt0133093", Title: "The Matrix", Year: 1999, Rating: "8.7", Votes: "2,100,000"},
		"dune":       {IMDbID: "tt1160419", Title: "Dune", Year: 2021, Rating: "8.0", Votes: "900,000"},
		"le film":    {IMDbID: "tt7654321", Title: "Le Film", Year: 2020},
	})
	cfg := testsupport.NewConfig(t,
		testsupport.WithUpstream(up),
		testsupport.WithCacheBackend(config.CacheBackendJSON),
	)

	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("OMDB_API_KEY", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, upstream: up, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
