package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkeith/PackageDev/pkg/config"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsAreComplete(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"Packages"}, cfg.PackagesRoots)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2, cfg.FuzzyDistance)
	assert.True(t, cfg.IncludeInternalScopes)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoadYAMLFile(t *testing.T) {
	path := write(t, "packagedev.yaml", `
packages_roots:
  - /opt/sublime/Packages
  - Packages
log_level: debug
fuzzy_distance: 1
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/opt/sublime/Packages", "Packages"}, cfg.PackagesRoots)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, 1, cfg.FuzzyDistance)
	assert.True(t, cfg.IncludeInternalScopes, "unset keys keep their defaults")
}

func TestLoadTOMLFile(t *testing.T) {
	path := write(t, "packagedev.toml", `
log_level = "warn"
include_internal_scopes = false
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, zerolog.WarnLevel, cfg.Level())
	assert.False(t, cfg.IncludeInternalScopes)
	assert.Equal(t, []string{"Packages"}, cfg.PackagesRoots)
}

func TestFromBytesJSON(t *testing.T) {
	cfg, err := config.FromBytes([]byte(`{"fuzzy_distance": 0}`), "json")
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.FuzzyDistance)
	opts := cfg.CompletionOptions()
	assert.Equal(t, 0, opts.MaxFuzzyDistance, "an explicit zero beats the default")
	assert.True(t, opts.IncludeInternal)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("PACKAGEDEV_LOG_LEVEL", "error")
	t.Setenv("PACKAGEDEV_PACKAGES_ROOTS", "/data/Packages, /extra")

	path := write(t, "packagedev.yml", "log_level: debug\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, zerolog.ErrorLevel, cfg.Level())
	assert.Equal(t, []string{"/data/Packages", "/extra"}, cfg.PackagesRoots)
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want string
	}{
		{
			name: "unknown extension",
			file: "packagedev.ini",
			body: "x=1",
			want: "unsupported config format",
		},
		{
			name: "unknown level",
			file: "packagedev.yml",
			body: "log_level: loud\n",
			want: "log_level",
		},
		{
			name: "no roots",
			file: "packagedev.yml",
			body: "packages_roots: []\n",
			want: "packages root",
		},
		{
			name: "negative distance",
			file: "packagedev.yml",
			body: "fuzzy_distance: -1\n",
			want: "fuzzy_distance",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(write(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "packagedev.yml"))
	require.Error(t, err)
}

func TestDiscoverFindsNearbyConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "packagedev.yml"), []byte("log_level: debug\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(dir))

	assert.Equal(t, "packagedev.yml", filepath.Base(config.Discover()))
}

func TestDiscoverEmptyWhenAbsent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	assert.Equal(t, "", config.Discover())
}
