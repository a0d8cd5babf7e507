package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
admin:
  enabled: true
  listen: "127.0.0.1:9091"
storage:
  database: test.db
auth:
  jwt:
    secret: topsecret
    expire_hours: 24
fetcher:
  batch_size: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Listen)
	require.True(t, cfg.Admin.Enabled)
	require.Equal(t, "test.db", cfg.Storage.Database)
	require.Equal(t, "topsecret", cfg.Auth.JWT.Secret)
	require.Equal(t, 3, cfg.Fetcher.BatchSize)
}

func TestLoadAppliesFetcherDefaults(t *testing.T) {
	path := writeConfig(t, `listen: ":8080"`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://leetcode.com/graphql", cfg.Fetcher.LeetcodeURL)
	require.Equal(t, "https://codeforces.com/api", cfg.Fetcher.CodeforcesURL)
	require.Equal(t, "https://api.github.com", cfg.Fetcher.GithubURL)
	require.Equal(t, 5, cfg.Fetcher.BatchSize)
	require.Equal(t, 1000, cfg.Fetcher.ItemDelayMS)
	require.Equal(t, 5000, cfg.Fetcher.BatchDelayMS)
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt:
    secret: from-file
`)
	t.Setenv("ALGOJOURNEY_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Auth.JWT.Secret)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
