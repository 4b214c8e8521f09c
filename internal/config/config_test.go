package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EFX_CONFIG_PATH", "EFX_DATA_DIR", "EFX_CATALOG_PATH", "EFX_DB_PATH",
		"EFX_STORAGE_DIR", "EFX_STORAGE_LOCATION", "EFX_STORAGE_EXTERNAL",
		"EFX_AUDIO_SAMPLE_BYTES", "EFX_EXPORT_DIR", "EFX_LOG_LEVEL", "EFX_LOG_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_DerivesPathsFromDataDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("EFX_DATA_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "efx_projects_metadata.json"), cfg.Catalog.Path)
	require.Equal(t, filepath.Join(dir, "efx.db"), cfg.DB.Path)
	require.Equal(t, filepath.Join(dir, "efx"), cfg.Storage.DefaultDir)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, int64(1<<20), cfg.Audio.SampleBytes)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "efx.yaml")
	content := `
data:
  dir: /srv/efx
storage:
  location: /mnt/shows
  external:
    content://tree/shows: /mnt/shared
log:
  level: info
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("EFX_CONFIG_PATH", path)
	t.Setenv("EFX_LOG_LEVEL", "debug")
	t.Setenv("EFX_DB_PATH", "/tmp/custom.db")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/srv/efx", cfg.Data.Dir)
	require.Equal(t, "/mnt/shows", cfg.Storage.Location)
	require.Equal(t, "/mnt/shared", cfg.Storage.External["content://tree/shows"])
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/tmp/custom.db", cfg.DB.Path)
	require.Equal(t, filepath.Join("/srv/efx", "efx_projects_metadata.json"), cfg.Catalog.Path)
}

func TestLoad_ExplicitPathWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("data:\n  dir: /explicit\n"), 0o644))
	t.Setenv("EFX_CONFIG_PATH", filepath.Join(dir, "missing.yaml"))

	cfg, err := Load(explicit)
	require.NoError(t, err)
	require.Equal(t, "/explicit", cfg.Data.Dir)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("EFX_DATA_DIR", t.TempDir())

	t.Setenv("EFX_AUDIO_SAMPLE_BYTES", "lots")
	_, err := Load("")
	require.Error(t, err)

	t.Setenv("EFX_AUDIO_SAMPLE_BYTES", "")
	t.Setenv("EFX_LOG_LEVEL", "loud")
	_, err = Load("")
	require.Error(t, err)

	t.Setenv("EFX_LOG_LEVEL", "")
	t.Setenv("EFX_STORAGE_EXTERNAL", "content://x")
	_, err = Load("")
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParseExternal(t *testing.T) {
	refs, err := parseExternal("content://a=/mnt/a, content://b=/mnt/b")
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"content://a": "/mnt/a",
		"content://b": "/mnt/b",
	}, refs)
}
