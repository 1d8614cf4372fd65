package renderer

import (
	"fmt"
	"log/slog"

	"sprite-editor/internal/opengl"
	"sprite-editor/platform"
	"sprite-editor/scene"
)

// gcSlack is how many stale GPU meshes may pile up before they are freed.
const gcSlack = 16

// RenderEngine is the high-level renderer that drives the OpenGL backend.
type RenderEngine struct {
	gl     *opengl.Renderer
	window *platform.Window
	logger *slog.Logger
	Scene  *scene.Scene

	// Overlay is drawn after everything else with a cleared depth buffer,
	// so its subtree (the gizmo) is never hidden by sprites.
	Overlay *scene.Node

	// Per-frame stats (populated during Render)
	lastObjects   int
	lastVertices  int
	lastTriangles int
}

func NewRenderEngine(window *platform.Window, logger *slog.Logger) (*RenderEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	glRenderer, err := opengl.NewRenderer(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}

	glRenderer.SetViewport(window.Width, window.Height)

	logger.Info("render engine initialized", "backend", "opengl", "width", window.Width, "height", window.Height)
	return &RenderEngine{
		gl:     glRenderer,
		window: window,
		logger: logger,
	}, nil
}

func (re *RenderEngine) SetScene(s *scene.Scene) {
	re.Scene = s
}

// Render draws every visible node of the scene. Meshes that fail to draw
// are logged and skipped.
func (re *RenderEngine) Render() error {
	if re.Scene == nil || re.Scene.Camera == nil {
		return fmt.Errorf("no scene or camera")
	}

	re.gl.BeginFrame(re.Scene.SkyColor)

	vp := re.Scene.Camera.GetViewProjectionMatrix()

	var overlay []*scene.Node
	drawn := make(map[*scene.Mesh]bool)
	objects, vertices, triangles := 0, 0, 0

	draw := func(node *scene.Node) {
		mvp := node.GetWorldMatrix().Mul(vp)
		if err := re.gl.DrawMesh(node.Mesh, mvp); err != nil {
			re.logger.Error("draw mesh", "node", node.Name, "error", err)
		}
		drawn[node.Mesh] = true
		objects++
		vertices += len(node.Mesh.Vertices)
		if node.Mesh.DrawMode == scene.DrawTriangles {
			triangles += len(node.Mesh.Indices) / 3
		}
	}

	for _, node := range re.Scene.GetVisibleNodes() {
		if re.isOverlay(node) {
			overlay = append(overlay, node)
			continue
		}
		draw(node)
	}
	if len(overlay) > 0 {
		re.gl.ClearDepth()
		for _, node := range overlay {
			draw(node)
		}
	}

	re.lastObjects = objects
	re.lastVertices = vertices
	re.lastTriangles = triangles

	// Outlines are rebuilt on every selection change, so their buffers
	// would otherwise accumulate.
	if re.gl.MeshCount() > len(drawn)+gcSlack {
		n := re.gl.ReleaseUnused(func(m *scene.Mesh) bool { return drawn[m] })
		re.logger.Debug("released stale meshes", "count", n)
	}
	return nil
}

func (re *RenderEngine) isOverlay(node *scene.Node) bool {
	if re.Overlay == nil {
		return false
	}
	return node.Ancestor(func(n *scene.Node) bool { return n == re.Overlay }) != nil
}

// Present swaps buffers. Call after Render().
func (re *RenderEngine) Present() {
	re.window.SwapBuffers()
}

func (re *RenderEngine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	re.gl.SetViewport(width, height)
}

// Release frees a previously uploaded GPU texture. It satisfies
// textures.Releaser.
func (re *RenderEngine) Release(tex *scene.Texture) {
	opengl.DeleteTexture(tex)
}

func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}

// DrawStats returns stats from the most recent Render call.
func (re *RenderEngine) DrawStats() (objects, vertices, triangles int) {
	return re.lastObjects, re.lastVertices, re.lastTriangles
}
