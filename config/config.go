package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"sprite-editor/core"
	"sprite-editor/scene"
)

// DefaultPath is where the editor looks for its settings when no path is
// given on the command line.
const DefaultPath = "~/.config/sprite-editor/config.yaml"

// Config holds the persisted editor settings.
type Config struct {
	Window WindowConfig `yaml:"window"`
	Camera CameraConfig `yaml:"camera"`
	Editor EditorConfig `yaml:"editor"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

// CameraConfig seeds the orbit camera. Angles are in radians.
type CameraConfig struct {
	FOV           float32 `yaml:"fov"`
	Sensitivity   float32 `yaml:"sensitivity"`
	ZoomIntensity float32 `yaml:"zoom_intensity"`
	Radius        float32 `yaml:"radius"`
	Azimuth       float32 `yaml:"azimuth"`
	Polar         float32 `yaml:"polar"`
}

type EditorConfig struct {
	DefaultFilter  string     `yaml:"default_filter"`
	OutlineColor   [4]float32 `yaml:"outline_color"`
	TextureMaxSize int        `yaml:"texture_max_size"`
	WatchTexture   bool       `yaml:"watch_texture"`
	TexturePath    string     `yaml:"texture_path,omitempty"`
	LayoutPath     string     `yaml:"layout_path"`
	ExportPath     string     `yaml:"export_path"`
	LogLevel       string     `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Sprite Editor",
			VSync:  true,
		},
		Camera: CameraConfig{
			FOV:           0.785398, // 45°
			Sensitivity:   scene.DefaultSensitivity,
			ZoomIntensity: scene.DefaultZoomIntensity,
			Radius:        10,
			Azimuth:       0,
			Polar:         1.2,
		},
		Editor: EditorConfig{
			DefaultFilter:  scene.FilterNearest.String(),
			OutlineColor:   [4]float32{1, 0.8, 0.1, 1},
			TextureMaxSize: 2048,
			WatchTexture:   true,
			LayoutPath:     "layout.json",
			ExportPath:     "scene.glb",
			LogLevel:       "info",
		},
	}
}

// Load reads the YAML file at path on top of Default. A missing file is
// not an error and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("config path %q: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", expanded, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %q: %w", expanded, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %q: %w", expanded, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory if needed.
func Save(path string, cfg Config) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("config path %q: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(expanded, data, 0644)
}

// Validate rejects settings the editor cannot start with.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := scene.ParseFilterMode(c.Editor.DefaultFilter); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Editor.LogLevel); err != nil {
		return err
	}
	return nil
}

// Filter returns the configured default filter mode.
func (c Config) Filter() scene.FilterMode {
	mode, err := scene.ParseFilterMode(c.Editor.DefaultFilter)
	if err != nil {
		return scene.FilterNearest
	}
	return mode
}

// OutlineColor returns the selection outline color.
func (c Config) OutlineColor() core.Color {
	oc := c.Editor.OutlineColor
	return core.Color{R: oc[0], G: oc[1], B: oc[2], A: oc[3]}
}

// Path expands a possibly ~-prefixed path from the config. Empty stays empty.
func Path(p string) string {
	if p == "" {
		return ""
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}

// ParseLevel maps a log level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
