package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"sprite-editor/config"
	"sprite-editor/editor"
	"sprite-editor/platform"
	"sprite-editor/renderer"
	"sprite-editor/scene"
	"sprite-editor/textures"
)

// confirmWindow is how long a destructive action stays armed after the
// first key press.
const confirmWindow = 2 * time.Second

// statsInterval is how often draw stats are logged at debug level.
const statsInterval = 5 * time.Second

var (
	configPath  = flag.String("config", config.DefaultPath, "path of the YAML settings file")
	texturePath = flag.String("texture", "", "sprite image to load at startup (overrides the config)")
	logLevel    = flag.String("log-level", "", "log level: debug, info, warn or error (overrides the config)")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() > 0 && *texturePath == "" {
		*texturePath = flag.Arg(0)
	}

	if err := run(); err != nil {
		slog.Error("sprite editor failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "\tsprite-editor [flags] [texture]\n")
	flag.PrintDefaults()
}

func run() error {
	cfg, cfgErr := config.Load(*configPath)

	level := cfg.Editor.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	if cfgErr != nil {
		logger.Warn("using default settings", "path", config.Path(*configPath), "error", cfgErr)
	}
	if *texturePath != "" {
		cfg.Editor.TexturePath = *texturePath
	}

	window, err := platform.NewWindow(platform.WindowConfig{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: true,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		return err
	}
	defer window.Destroy()

	engine, err := renderer.NewRenderEngine(window, logger)
	if err != nil {
		return err
	}
	defer engine.Destroy()

	s := scene.NewScene()
	grid := scene.NewNode("Grid")
	grid.Mesh = scene.CreateGrid(20, 20)
	s.AddNode(grid)
	engine.SetScene(s)

	cam := scene.NewCamera(cfg.Camera.FOV, float32(window.Width)/float32(window.Height), 0.1, 500)
	orbit := scene.NewOrbitCamera(cam, cfg.Camera.Radius, cfg.Camera.Azimuth, cfg.Camera.Polar)
	orbit.Sensitivity = cfg.Camera.Sensitivity
	orbit.ZoomIntensity = cfg.Camera.ZoomIntensity

	manager := textures.NewManager(engine, cfg.Editor.TextureMaxSize, cfg.Filter(), logger)
	defer manager.Close()

	gizmo := editor.NewTransformGizmo()
	s.AddNode(gizmo.Node)
	engine.Overlay = gizmo.Node

	outline := cfg.OutlineColor()
	var ed *editor.Editor
	confirmer := editor.NewRepeatConfirmer(confirmWindow, func(msg string) {
		ed.Notifier.Notice(msg + " Press again to confirm")
	})
	ed = editor.NewEditor(editor.Options{
		Scene:        s,
		Orbit:        orbit,
		Textures:     manager,
		Gizmo:        gizmo,
		Confirmer:    confirmer,
		Logger:       logger,
		OutlineColor: &outline,
		Width:        window.Width,
		Height:       window.Height,
	})
	manager.OnChange(ed.SetTexture)

	var watcher *textures.Watcher
	if cfg.Editor.TexturePath != "" {
		if _, err := manager.Load(cfg.Editor.TexturePath); err != nil {
			logger.Error("load texture", "path", cfg.Editor.TexturePath, "error", err)
			ed.Notifier.Notice("Could not load " + cfg.Editor.TexturePath)
		} else if cfg.Editor.WatchTexture {
			if watcher, err = textures.Watch(cfg.Editor.TexturePath, logger); err != nil {
				logger.Warn("texture hot reload disabled", "error", err)
			} else {
				defer watcher.Close()
			}
		}
	}

	input := editor.NewInputAdapter(ed, config.Path(cfg.Editor.LayoutPath), config.Path(cfg.Editor.ExportPath))
	window.SetHandler(resizer{InputAdapter: input, engine: engine})

	logger.Info("editor ready", "config", config.Path(*configPath), "texture", cfg.Editor.TexturePath)

	lastStats := time.Now()
	for !window.ShouldClose() {
		window.PollEvents()

		if watcher != nil && watcher.Poll() {
			if _, err := manager.Load(watcher.Path()); err != nil {
				logger.Warn("texture reload failed", "path", watcher.Path(), "error", err)
			}
		}

		ed.Update()
		if err := engine.Render(); err != nil {
			return err
		}
		if time.Since(lastStats) >= statsInterval {
			objects, vertices, triangles := engine.DrawStats()
			logger.Debug("frame", "objects", objects, "vertices", vertices, "triangles", triangles)
			lastStats = time.Now()
		}
		window.SetTitle(cfg.Window.Title + " | " + ed.StatusLine())
		engine.Present()
	}
	return nil
}

// resizer forwards events to the editor and keeps the GL viewport in step
// with the framebuffer.
type resizer struct {
	*editor.InputAdapter
	engine *renderer.RenderEngine
}

func (r resizer) Resize(width, height int) {
	r.engine.Resize(width, height)
	r.InputAdapter.Resize(width, height)
}
