package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0, cfg.Pipeline.Workers)
	assert.Equal(t, 256, cfg.Pipeline.BatchCapacity)
	assert.False(t, cfg.Pipeline.DistinctGroupIdentities, "last-write-wins is the default identity mode")
	assert.Equal(t, float32(60), cfg.Text.FontSize)
	assert.Equal(t, 512, cfg.Text.AtlasSize)
	assert.Empty(t, cfg.Text.FontPath)
	assert.Equal(t, "text", cfg.Stress.Kind)
	assert.Equal(t, 10, cfg.Stress.Radius)
	assert.True(t, cfg.Viewer.VSync)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "billboard.yaml")
	yamlContent := `
pipeline:
  workers: 4
  distinct_group_identities: true
text:
  font_path: "/fonts/FiraSans-Regular.ttf"
  font_size: 32
stress:
  kind: both
  radius: 3
  recompute_text: true
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := LoadFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.True(t, cfg.Pipeline.DistinctGroupIdentities)
	assert.Equal(t, "/fonts/FiraSans-Regular.ttf", cfg.Text.FontPath)
	assert.Equal(t, float32(32), cfg.Text.FontSize)
	assert.Equal(t, "both", cfg.Stress.Kind)
	assert.Equal(t, 3, cfg.Stress.Radius)
	assert.True(t, cfg.Stress.RecomputeText)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched sections keep defaults.
	assert.Equal(t, 512, cfg.Text.AtlasSize)
	assert.Equal(t, 1280, cfg.Viewer.Width)
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "billboard.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("pipeline: [oops"), 0644))

	_, err := LoadFile(configPath)
	assert.Error(t, err)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"font size", func(c *Config) { c.Text.FontSize = 0 }, ErrInvalidFontSize},
		{"atlas size", func(c *Config) { c.Text.AtlasSize = -1 }, ErrInvalidAtlasSize},
		{"stress kind", func(c *Config) { c.Stress.Kind = "sprites" }, ErrInvalidStress},
		{"stress radius", func(c *Config) { c.Stress.Radius = -2 }, ErrInvalidStress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "billboard.yaml")

	cfg := Default()
	cfg.Stress.Kind = "texture"
	cfg.Pipeline.Workers = 2
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	assert.NotEmpty(t, dir)
}

func TestApplyFlags(t *testing.T) {
	oldDebug, oldKind, oldWorkers := *flagDebug, *flagKind, *flagWorkers
	defer func() {
		*flagDebug, *flagKind, *flagWorkers = oldDebug, oldKind, oldWorkers
	}()

	*flagDebug = true
	*flagKind = "texture"
	*flagWorkers = 3

	cfg := Default()
	applyFlags(cfg)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "texture", cfg.Stress.Kind)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	// Unset flags leave values alone.
	assert.Equal(t, 10, cfg.Stress.Radius)
}
