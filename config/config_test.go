package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprite-editor/scene"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Window.Width = 800
	cfg.Camera.Radius = 4
	cfg.Editor.DefaultFilter = "trilinear"
	cfg.Editor.TexturePath = "sprites/hero.png"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, scene.FilterTrilinear, loaded.Filter())
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("editor:\n  log_level: debug\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Editor.LogLevel)
	assert.Equal(t, Default().Window, cfg.Window)

	level, err := ParseLevel(cfg.Editor.LogLevel)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	malformed := filepath.Join(dir, "malformed.yaml")
	require.NoError(t, os.WriteFile(malformed, []byte("window: [1, 2"), 0644))
	cfg, err := Load(malformed)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)

	badFilter := filepath.Join(dir, "filter.yaml")
	require.NoError(t, os.WriteFile(badFilter, []byte("editor:\n  default_filter: cubic\n"), 0644))
	_, err = Load(badFilter)
	assert.Error(t, err)
}

func TestOutlineColor(t *testing.T) {
	cfg := Default()
	cfg.Editor.OutlineColor = [4]float32{0.1, 0.2, 0.3, 1}
	c := cfg.OutlineColor()
	assert.Equal(t, float32(0.2), c.G)
}

func TestPathExpandsHome(t *testing.T) {
	assert.Equal(t, "", Path(""))
	assert.Equal(t, "relative/file.png", Path("relative/file.png"))
	assert.NotContains(t, Path("~/file.png"), "~")
}
