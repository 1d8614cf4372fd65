package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"sprite-editor/core"
	sceneio "sprite-editor/io"
	"sprite-editor/math"
	"sprite-editor/scene"
)

// ErrNoTexture is returned by AddObject before any texture is loaded.
var ErrNoTexture = errors.New("editor: no texture loaded")

// duplicateOffset separates a duplicate from its original.
var duplicateOffset = math.NewVec3(0.5, 0, 0.05)

// CameraButton is the pointer button that orbits the camera. Clicks with it
// never change the selection.
const CameraButton = core.MouseRight

// TextureSource provides the active sprite texture.
type TextureSource interface {
	Current() *scene.Texture
	Load(path string) (*scene.Texture, error)
	Filter() scene.FilterMode
	SetFilter(mode scene.FilterMode)
}

// Options configures a new Editor. Scene, Orbit and Textures are required.
type Options struct {
	Scene    *scene.Scene
	Orbit    *scene.OrbitCamera
	Textures TextureSource

	// Gizmo defaults to a TransformGizmo whose handles are added to Scene.
	Gizmo     Gizmo
	Confirmer Confirmer
	Notifier  Notifier
	Logger    *slog.Logger

	OutlineColor *core.Color
	HistoryDepth int
	Width        int
	Height       int
}

// Editor is one sprite editing session: the orbit camera, the placed
// objects and the selection state machine driven by an InputAdapter.
type Editor struct {
	Scene     *scene.Scene
	Orbit     *scene.OrbitCamera
	Objects   *Objects
	Selection *Selection
	Gizmo     Gizmo
	History   *History
	Textures  TextureSource
	Confirmer Confirmer
	Notifier  Notifier

	// Status info
	StatusText string

	logger   *slog.Logger
	material *scene.Material // shared by every sprite
	width    float32
	height   float32

	// dragging is latched by the gizmo's drag notifications
	dragging       bool
	dragObject     ObjectID
	dragStartState core.Transform
}

// NewEditor initializes a new editor instance
func NewEditor(opts Options) *Editor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gizmo := opts.Gizmo
	if gizmo == nil {
		tg := NewTransformGizmo()
		opts.Scene.AddNode(tg.Node)
		gizmo = tg
	}
	confirmer := opts.Confirmer
	if confirmer == nil {
		confirmer = ConfirmFunc(func(string) bool { return true })
	}
	depth := opts.HistoryDepth
	if depth <= 0 {
		depth = 100
	}

	e := &Editor{
		Scene:      opts.Scene,
		Orbit:      opts.Orbit,
		Objects:    NewObjects(),
		Gizmo:      gizmo,
		History:    NewHistory(depth),
		Textures:   opts.Textures,
		Confirmer:  confirmer,
		StatusText: "Ready",
		logger:     logger,
		material:   scene.NewSpriteMaterial("Sprite", opts.Textures.Current()),
	}
	e.Notifier = opts.Notifier
	if e.Notifier == nil {
		e.Notifier = NoticeFunc(func(msg string) { e.setStatus("%s", msg) })
	}
	e.Selection = NewSelection(opts.Scene, e.Objects, gizmo, logger)
	if opts.OutlineColor != nil {
		e.Selection.OutlineColor = *opts.OutlineColor
	}
	opts.Scene.SetCamera(opts.Orbit.Camera)

	// Registered once; the latch suppresses picking during drags.
	gizmo.OnDraggingChanged(func(dragging bool) {
		e.dragging = dragging
	})

	if opts.Width > 0 && opts.Height > 0 {
		e.Resize(opts.Width, opts.Height)
	}
	return e
}

func (e *Editor) setStatus(format string, args ...any) {
	e.StatusText = fmt.Sprintf(format, args...)
	e.logger.Debug("status", "text", e.StatusText)
}

func (e *Editor) fail(action string, err error) {
	e.logger.Error(action+" failed", "error", err)
	e.setStatus("%s failed: %v", action, err)
}

// Resize updates the viewport used for picking and the camera aspect ratio.
func (e *Editor) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.width, e.height = float32(width), float32(height)
	e.Orbit.Resize(width, height)
}

// Update runs once per frame before rendering.
func (e *Editor) Update() {
	e.Gizmo.Sync()
	e.Selection.FaceCamera(e.Orbit.Camera.Position)
}

// Viewport returns the current viewport size in pixels.
func (e *Editor) Viewport() (width, height int) {
	return int(e.width), int(e.height)
}

// Dragging reports whether a gizmo drag is in progress.
func (e *Editor) Dragging() bool { return e.dragging }

// Ray returns the world-space ray under pointer position (x, y).
func (e *Editor) Ray(x, y float32) scene.Ray {
	return scene.ScreenToRay(x, y, e.width, e.height, e.Orbit.Camera)
}

// Pick selects the object under (x, y). It does nothing while a gizmo
// drag is in progress or when button is the camera button. Returns whether
// an object is selected afterwards.
func (e *Editor) Pick(x, y float32, button core.MouseButton) bool {
	if e.dragging || button == CameraButton {
		return false
	}
	if e.width == 0 || e.height == 0 {
		e.Deselect()
		return false
	}
	hits := scene.Raycast(e.Ray(x, y), e.Objects.Hulls())
	if !e.Selection.PickHits(hits) {
		e.setStatus("Selection cleared")
		return false
	}
	e.setStatus("Selected: %s", e.Selection.Object().Root.Name)
	return true
}

// SelectExplicit selects id regardless of the current selection.
func (e *Editor) SelectExplicit(id ObjectID) bool {
	if !e.Selection.Select(id) {
		return false
	}
	e.setStatus("Selected: %s", e.Selection.Object().Root.Name)
	return true
}

// CycleNext selects the next object in placement order.
func (e *Editor) CycleNext() {
	e.Selection.CycleNext()
	if obj := e.Selection.Object(); obj != nil {
		e.setStatus("Selected: %s", obj.Root.Name)
	}
}

// Deselect clears the selection.
func (e *Editor) Deselect() {
	if e.Selection.HasSelection() {
		e.Selection.Deselect()
		e.setStatus("Selection cleared")
	}
}

// DeleteSelected removes the selected object after confirmation. It is a
// no-op while idle. Returns whether an object was deleted.
func (e *Editor) DeleteSelected() bool {
	obj := e.Selection.Object()
	if obj == nil {
		return false
	}
	if !e.Confirmer.Confirm(fmt.Sprintf("Delete %s?", obj.Root.Name)) {
		return false
	}
	e.Selection.Deselect()
	e.History.Do(NewDeleteObjectCommand(e.Scene, e.Objects, obj))
	e.logger.Info("object deleted", "id", obj.ID, "name", obj.Root.Name)
	e.setStatus("Deleted %s", obj.Root.Name)
	return true
}

// AddObject places a new sprite sized to the texture's aspect ratio and
// selects it. Without a texture it notifies the user and returns
// ErrNoTexture.
func (e *Editor) AddObject() (*PlacedObject, error) {
	tex := e.Textures.Current()
	if tex == nil {
		e.Notifier.Notice("Load a texture before adding a sprite")
		return nil, ErrNoTexture
	}
	e.material.AlbedoTexture = tex

	obj := NewPlacedObject(e.Objects.nextName(), tex.Aspect(), 1, e.material)
	obj.Root.SetPosition(e.Objects.spawnPosition())
	e.History.Do(NewAddObjectCommand(e.Scene, e.Objects, obj))
	e.logger.Info("object added", "id", obj.ID, "name", obj.Root.Name)
	e.SelectExplicit(obj.ID)
	return obj, nil
}

// DuplicateSelected copies the selected object next to the original.
func (e *Editor) DuplicateSelected() (*PlacedObject, bool) {
	src := e.Selection.Object()
	if src == nil {
		return nil, false
	}
	w, h := src.Size()
	obj := NewPlacedObject(e.Objects.nextName(), w, h, e.material)
	t := src.Root.Transform
	t.Position = t.Position.Add(duplicateOffset)
	obj.Root.SetTransform(t)
	e.History.Do(NewAddObjectCommand(e.Scene, e.Objects, obj))
	e.SelectExplicit(obj.ID)
	return obj, true
}

// SetTexture points every sprite at tex.
func (e *Editor) SetTexture(tex *scene.Texture) {
	e.material.AlbedoTexture = tex
}

// ApplyFilter changes the sampling mode of the active texture.
func (e *Editor) ApplyFilter(mode scene.FilterMode) {
	e.Textures.SetFilter(mode)
	e.setStatus("Filter: %s", mode)
}

// SetGizmoMode selects a gizmo mode explicitly.
func (e *Editor) SetGizmoMode(mode GizmoMode) {
	e.Selection.SetMode(mode)
	e.setStatus("Tool: %s", mode)
}

// CycleGizmoMode advances the gizmo mode while an object is selected.
func (e *Editor) CycleGizmoMode() {
	if !e.Selection.HasSelection() {
		return
	}
	e.Selection.CycleMode()
	e.setStatus("Tool: %s", e.Selection.Mode())
}

// BeginDrag starts a gizmo drag if (x, y) grabs a handle of the selected
// object's gizmo.
func (e *Editor) BeginDrag(x, y float32) bool {
	obj := e.Selection.Object()
	if obj == nil {
		return false
	}
	start := obj.Root.Transform
	if !e.Gizmo.BeginDrag(e.Ray(x, y)) {
		return false
	}
	e.dragObject = obj.ID
	e.dragStartState = start
	return true
}

// UpdateDrag follows the pointer during a gizmo drag.
func (e *Editor) UpdateDrag(x, y float32) {
	if e.dragging {
		e.Gizmo.UpdateDrag(e.Ray(x, y))
	}
}

// EndDrag finishes a gizmo drag and records it for undo.
func (e *Editor) EndDrag() {
	e.Gizmo.EndDrag()
	obj := e.Objects.Get(e.dragObject)
	e.dragObject = 0
	if obj == nil || obj.Root.Transform == e.dragStartState {
		return
	}
	e.History.Push(NewTransformCommand(obj.Root, e.dragStartState, e.Selection.Mode().String()+" "+obj.Root.Name))
	e.setStatus("%s %s", e.Selection.Mode(), obj.Root.Name)
}

// Undo reverts the last action. The selection is cleared first so it never
// refers to an object the undo removes.
func (e *Editor) Undo() bool {
	e.Selection.Deselect()
	cmd := e.History.Undo()
	if cmd == nil {
		return false
	}
	e.setStatus("Undo: %s", cmd.Description())
	return true
}

// Redo reapplies the last undone action.
func (e *Editor) Redo() bool {
	e.Selection.Deselect()
	cmd := e.History.Redo()
	if cmd == nil {
		return false
	}
	e.setStatus("Redo: %s", cmd.Description())
	return true
}

// StatusLine summarizes the session for the window title.
func (e *Editor) StatusLine() string {
	filter := "no texture"
	if tex := e.Textures.Current(); tex != nil {
		filter = tex.Name + " (" + tex.Filter.String() + ")"
	}
	return fmt.Sprintf("%s | %d sprites | %s | %s", e.StatusText, e.Objects.Len(), e.Selection.Mode(), filter)
}

// Snapshot captures the session as a layout.
func (e *Editor) Snapshot() *sceneio.Layout {
	layout := sceneio.NewLayout()
	layout.Camera = sceneio.OrbitData{Radius: e.Orbit.Radius, Azimuth: e.Orbit.Azimuth, Polar: e.Orbit.Polar}
	layout.Filter = e.Textures.Filter().String()
	layout.GizmoMode = e.Selection.Mode().String()
	if tex := e.Textures.Current(); tex != nil {
		layout.TexturePath = tex.Path
	}
	for _, obj := range e.Objects.All() {
		w, h := obj.Size()
		data := sceneio.SpriteData{Name: obj.Root.Name, Width: w, Height: h}
		sceneio.TransformToData(obj.Root.Transform, &data)
		layout.Objects = append(layout.Objects, data)
	}
	return layout
}

// Restore replaces the session with layout. History is cleared.
func (e *Editor) Restore(layout *sceneio.Layout) error {
	filter, err := scene.ParseFilterMode(layout.Filter)
	if err != nil {
		return fmt.Errorf("restore layout: %w", err)
	}
	if layout.TexturePath != "" {
		if cur := e.Textures.Current(); cur == nil || cur.Path != layout.TexturePath {
			tex, err := e.Textures.Load(layout.TexturePath)
			if err != nil {
				return fmt.Errorf("restore layout: %w", err)
			}
			e.SetTexture(tex)
		}
	}

	e.Selection.Deselect()
	for _, obj := range e.Objects.All() {
		e.Scene.RemoveNode(obj.Root)
	}
	e.Objects.Clear()
	e.History.Clear()

	e.Textures.SetFilter(filter)
	e.Selection.SetMode(ParseGizmoMode(layout.GizmoMode))
	e.Orbit.Radius = max(layout.Camera.Radius, scene.MinRadius)
	e.Orbit.Azimuth = layout.Camera.Azimuth
	e.Orbit.Polar = scene.ClampPolar(layout.Camera.Polar)
	e.Orbit.RecomputePosition()

	for _, data := range layout.Objects {
		obj := NewPlacedObject(data.Name, data.Width, data.Height, e.material)
		obj.Root.SetTransform(sceneio.DataToTransform(data))
		e.Objects.Add(obj)
		e.Scene.AddNode(obj.Root)
	}
	e.setStatus("Loaded %d sprites", e.Objects.Len())
	return nil
}

// SaveLayout writes the session to path.
func (e *Editor) SaveLayout(path string) error {
	if err := sceneio.SaveLayout(path, e.Snapshot()); err != nil {
		return err
	}
	e.logger.Info("layout saved", "path", path, "objects", e.Objects.Len())
	e.setStatus("Saved %s", path)
	return nil
}

// LoadLayout reads path and restores it.
func (e *Editor) LoadLayout(path string) error {
	layout, err := sceneio.LoadLayout(path)
	if err != nil {
		return err
	}
	if err := e.Restore(layout); err != nil {
		return err
	}
	e.logger.Info("layout loaded", "path", path, "objects", e.Objects.Len())
	return nil
}

// Export writes the placed sprites as a glTF file.
func (e *Editor) Export(path string) error {
	if err := scene.ExportGLTF(path, e.Scene); err != nil {
		return err
	}
	e.logger.Info("scene exported", "path", path, "objects", e.Objects.Len())
	e.setStatus("Exported %s", path)
	return nil
}
