package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "./data", cfg.Storage.DataDir)
	require.Equal(t, 64, cfg.BufferPool.PoolSize)
	require.Equal(t, 2, cfg.BufferPool.ReplacerK)
}

func TestLoad_AppliesFileValuesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  data_dir: /var/lib/relcore
buffer_pool:
  pool_size: 128
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/relcore", cfg.Storage.DataDir)
	require.Equal(t, 128, cfg.BufferPool.PoolSize)
	require.Equal(t, 2, cfg.BufferPool.ReplacerK)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
