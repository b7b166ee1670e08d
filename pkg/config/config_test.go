package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, 2023, cfg.Year)
	require.Equal(t, []string{"a", "b"}, cfg.Semesters)
	require.Equal(t, 1, cfg.Workers)
	require.False(t, cfg.Cache.Disabled)
	require.NotEmpty(t, cfg.Cache.Dir)
	require.Equal(t, "catalog-refreshed", cfg.Cloud.Topic)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TAU_YEAR", "2025")
	t.Setenv("TAU_SEMESTERS", " b ")
	t.Setenv("TAU_WORKERS", "0")
	t.Setenv("TAU_NO_CACHE", "true")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	require.Equal(t, 2025, cfg.Year)
	require.Equal(t, []string{"b"}, cfg.Semesters)
	require.Equal(t, 1, cfg.Workers)
	require.True(t, cfg.Cache.Disabled)
}

func TestLoadFromDotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	// godotenv exports what it loads; keep it from leaking into other tests
	t.Setenv("YEAR", "")
	t.Setenv("LOG_FORMAT", "")
	require.NoError(t, os.WriteFile(".env", []byte("YEAR=2024\nLOG_FORMAT=json\n"), 0644))

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	require.Equal(t, 2024, cfg.Year)
	require.Equal(t, "json", cfg.Log.Format)
}

// chdir mirrors testing.T.Chdir (Go 1.24) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
