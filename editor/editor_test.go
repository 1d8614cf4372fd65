package editor

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprite-editor/core"
	"sprite-editor/math"
	"sprite-editor/scene"
)

const (
	viewW = 800
	viewH = 600
)

type fakeTextures struct {
	cur    *scene.Texture
	filter scene.FilterMode
	loaded []string
	err    error
}

func (f *fakeTextures) Current() *scene.Texture { return f.cur }

func (f *fakeTextures) Load(path string) (*scene.Texture, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.loaded = append(f.loaded, path)
	tex := scene.NewSolidTexture(filepath.Base(path), 255, 255, 255, 255)
	tex.Path = path
	f.cur = tex
	return tex, nil
}

func (f *fakeTextures) Filter() scene.FilterMode { return f.filter }

func (f *fakeTextures) SetFilter(mode scene.FilterMode) {
	f.filter = mode
	if f.cur != nil {
		f.cur.SetFilter(mode)
	}
}

// recordingGizmo counts the calls the editor makes.
type recordingGizmo struct {
	target    *scene.Node
	mode      GizmoMode
	modes     []GizmoMode
	listeners []func(bool)
	grab      bool
	dragging  bool
}

func (g *recordingGizmo) Attach(target *scene.Node) { g.target = target }
func (g *recordingGizmo) Detach()                   { g.target = nil }
func (g *recordingGizmo) Target() *scene.Node       { return g.target }
func (g *recordingGizmo) Mode() GizmoMode           { return g.mode }
func (g *recordingGizmo) Sync()                     {}

func (g *recordingGizmo) SetMode(mode GizmoMode) {
	g.mode = mode
	g.modes = append(g.modes, mode)
}

func (g *recordingGizmo) BeginDrag(scene.Ray) bool {
	if g.grab {
		g.setDragging(true)
	}
	return g.grab
}

func (g *recordingGizmo) UpdateDrag(scene.Ray) {}
func (g *recordingGizmo) EndDrag()             { g.setDragging(false) }

func (g *recordingGizmo) OnDraggingChanged(fn func(bool)) {
	g.listeners = append(g.listeners, fn)
}

func (g *recordingGizmo) setDragging(d bool) {
	if g.dragging == d {
		return
	}
	g.dragging = d
	for _, fn := range g.listeners {
		fn(d)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEditor(t *testing.T, gizmo Gizmo) (*Editor, *fakeTextures) {
	t.Helper()
	textures := &fakeTextures{cur: scene.NewSolidTexture("white", 255, 255, 255, 255)}
	cam := scene.NewCamera(math32.Pi/4, float32(viewW)/viewH, 0.1, 100)
	e := NewEditor(Options{
		Scene:    scene.NewScene(),
		Orbit:    scene.NewOrbitCamera(cam, 10, 0, math32.Pi/2),
		Textures: textures,
		Gizmo:    gizmo,
		Logger:   testLogger(),
		Width:    viewW,
		Height:   viewH,
	})
	return e, textures
}

// addObjects places n sprites two units apart along X.
func addObjects(t *testing.T, e *Editor, n int) []*PlacedObject {
	t.Helper()
	objs := make([]*PlacedObject, 0, n)
	for i := 0; i < n; i++ {
		obj, err := e.AddObject()
		require.NoError(t, err)
		obj.Root.SetPosition(math.NewVec3(float32(i)*2, 0, 0))
		objs = append(objs, obj)
	}
	return objs
}

// project returns the pixel under world point p.
func project(e *Editor, p math.Vec3) (float32, float32) {
	clip := p.ToVec4(1).MulMat(e.Orbit.Camera.GetViewProjectionMatrix())
	ndc := clip.ToVec3DivW()
	return (ndc.X + 1) / 2 * viewW, (1 - ndc.Y) / 2 * viewH
}

func TestSelectReplacesOutline(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	objs := addObjects(t, e, 2)

	require.True(t, e.SelectExplicit(objs[0].ID))
	assert.Equal(t, 1, e.Scene.CountTagged(scene.TagOutline))
	assert.NotNil(t, objs[0].Outline)
	assert.Nil(t, objs[1].Outline)

	require.True(t, e.SelectExplicit(objs[1].ID))
	assert.Equal(t, 1, e.Scene.CountTagged(scene.TagOutline))
	assert.Nil(t, objs[0].Outline)
	require.NotNil(t, objs[1].Outline)
	assert.Equal(t, objs[1].Sprite, objs[1].Outline.Parent)
	assert.InDelta(t, OutlineOffset, objs[1].Outline.Transform.Position.Z, 1e-7)

	assert.False(t, e.SelectExplicit(999))
	assert.Equal(t, objs[1].ID, e.Selection.Selected())
}

func TestOutlineFacesCamera(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	obj := addObjects(t, e, 1)[0]
	require.True(t, e.SelectExplicit(obj.ID))

	for _, azimuth := range []float32{0, math32.Pi, math32.Pi / 3, -2} {
		e.Orbit.Azimuth = azimuth
		e.Orbit.RecomputePosition()
		e.Update()

		eye := e.Orbit.Camera.Position
		sprite := obj.Sprite.WorldPosition().Sub(eye).Length()
		outline := obj.Outline.WorldPosition().Sub(eye).Length()
		assert.Less(t, outline, sprite, "azimuth %v", azimuth)
	}
}

func TestCycleNextWrapsAround(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	objs := addObjects(t, e, 3)
	e.Deselect()
	require.False(t, e.Selection.HasSelection())

	e.CycleNext()
	assert.Equal(t, objs[0].ID, e.Selection.Selected())

	for i := 1; i <= 3; i++ {
		e.CycleNext()
		assert.Equal(t, objs[i%3].ID, e.Selection.Selected())
		assert.Equal(t, 1, e.Scene.CountTagged(scene.TagOutline))
	}
}

func TestCycleNextEmpty(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	e.CycleNext()
	assert.False(t, e.Selection.HasSelection())
}

func TestDeleteSelected(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	objs := addObjects(t, e, 3)
	victim := objs[1]
	require.True(t, e.SelectExplicit(victim.ID))

	require.True(t, e.DeleteSelected())
	assert.False(t, e.Selection.HasSelection())
	assert.Equal(t, 2, e.Objects.Len())
	assert.Nil(t, e.Objects.Get(victim.ID))
	assert.False(t, e.Scene.Contains(victim.Root))
	assert.Equal(t, 0, e.Scene.CountTagged(scene.TagOutline))

	for i := 0; i < 5; i++ {
		e.CycleNext()
		assert.NotEqual(t, victim.ID, e.Selection.Selected())
		assert.NotNil(t, e.Selection.Object())
	}
}

func TestDeleteWhileIdleIsNoop(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	addObjects(t, e, 2)
	e.Deselect()

	assert.False(t, e.DeleteSelected())
	assert.Equal(t, 2, e.Objects.Len())
}

func TestDeleteDeclined(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	objs := addObjects(t, e, 1)

	var asked []string
	e.Confirmer = ConfirmFunc(func(msg string) bool {
		asked = append(asked, msg)
		return false
	})

	assert.False(t, e.DeleteSelected())
	assert.Equal(t, []string{"Delete Sprite 1?"}, asked)
	assert.Equal(t, 1, e.Objects.Len())
	assert.Equal(t, objs[0].ID, e.Selection.Selected())
	assert.True(t, e.Scene.Contains(objs[0].Root))
}

func TestPick(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	obj := addObjects(t, e, 1)[0]
	e.Deselect()

	assert.True(t, e.Pick(viewW/2, viewH/2, core.MouseLeft))
	assert.Equal(t, obj.ID, e.Selection.Selected())

	// Clicking the same object again keeps a single outline
	assert.True(t, e.Pick(viewW/2, viewH/2, core.MouseLeft))
	assert.Equal(t, 1, e.Scene.CountTagged(scene.TagOutline))

	assert.False(t, e.Pick(10, 10, core.MouseLeft))
	assert.False(t, e.Selection.HasSelection())
	assert.Equal(t, 0, e.Scene.CountTagged(scene.TagOutline))
}

func TestPickWithoutViewportClears(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	obj := addObjects(t, e, 1)[0]
	require.Equal(t, obj.ID, e.Selection.Selected())

	e.width, e.height = 0, 0
	assert.False(t, e.Pick(0, 0, core.MouseLeft))
	assert.False(t, e.Selection.HasSelection())
	assert.Equal(t, 0, e.Scene.CountTagged(scene.TagOutline))
}

func TestPickHitsPadding(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	obj := addObjects(t, e, 1)[0]
	e.Deselect()

	// Just outside the quad's right edge, inside the hull
	x, y := project(e, math.NewVec3(0.55, 0, 0))
	assert.True(t, e.Pick(x, y, core.MouseLeft))
	assert.Equal(t, obj.ID, e.Selection.Selected())
}

func TestPickNearestObject(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	objs := addObjects(t, e, 2)
	objs[1].Root.SetPosition(math.NewVec3(0, 0, 2))
	e.Deselect()

	assert.True(t, e.Pick(viewW/2, viewH/2, core.MouseLeft))
	assert.Equal(t, objs[1].ID, e.Selection.Selected())
}

func TestPickIgnoresCameraButton(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	addObjects(t, e, 1)
	e.Deselect()

	assert.False(t, e.Pick(viewW/2, viewH/2, CameraButton))
	assert.False(t, e.Selection.HasSelection())
}

func TestPickSuppressedWhileDragging(t *testing.T) {
	gizmo := &recordingGizmo{grab: true}
	e, _ := newTestEditor(t, gizmo)
	objs := addObjects(t, e, 2)
	require.Equal(t, objs[1].ID, e.Selection.Selected())

	require.True(t, e.BeginDrag(0, 0))
	require.True(t, e.Dragging())

	x, y := project(e, math.Vec3Zero)
	assert.False(t, e.Pick(x, y, core.MouseLeft))
	assert.Equal(t, objs[1].ID, e.Selection.Selected())

	e.EndDrag()
	assert.False(t, e.Dragging())
	assert.True(t, e.Pick(x, y, core.MouseLeft))
	assert.Equal(t, objs[0].ID, e.Selection.Selected())
}

func TestAddObjectWithoutTexture(t *testing.T) {
	e, textures := newTestEditor(t, nil)
	textures.cur = nil

	var notices []string
	e.Notifier = NoticeFunc(func(msg string) { notices = append(notices, msg) })

	obj, err := e.AddObject()
	assert.ErrorIs(t, err, ErrNoTexture)
	assert.Nil(t, obj)
	assert.Len(t, notices, 1)
	assert.Zero(t, e.Objects.Len())
}

func TestAddObjectUsesTextureAspect(t *testing.T) {
	e, textures := newTestEditor(t, nil)
	textures.cur = &scene.Texture{Name: "wide", Width: 64, Height: 32}

	obj, err := e.AddObject()
	require.NoError(t, err)
	w, h := obj.Size()
	assert.InDelta(t, 2, w, 1e-6)
	assert.InDelta(t, 1, h, 1e-6)
	assert.Equal(t, obj.ID, e.Selection.Selected())
	assert.Same(t, textures.cur, obj.Sprite.Mesh.Material.AlbedoTexture)
}

func TestSetTextureSharedBySprites(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	objs := addObjects(t, e, 2)

	tex := scene.NewSolidTexture("red", 255, 0, 0, 255)
	e.SetTexture(tex)
	for _, obj := range objs {
		assert.Same(t, tex, obj.Sprite.Mesh.Material.AlbedoTexture)
	}
}

func TestGizmoModeRemembered(t *testing.T) {
	gizmo := &recordingGizmo{}
	e, _ := newTestEditor(t, gizmo)

	// Idle: cycling does nothing
	e.CycleGizmoMode()
	assert.Equal(t, GizmoTranslate, e.Selection.Mode())
	assert.Empty(t, gizmo.modes)

	objs := addObjects(t, e, 2)
	assert.Equal(t, GizmoTranslate, gizmo.mode)

	e.CycleGizmoMode()
	assert.Equal(t, GizmoRotate, e.Selection.Mode())
	assert.Equal(t, GizmoRotate, gizmo.mode)

	e.Deselect()
	e.SelectExplicit(objs[0].ID)
	assert.Equal(t, GizmoRotate, gizmo.mode)

	e.CycleGizmoMode()
	e.CycleGizmoMode()
	assert.Equal(t, GizmoTranslate, e.Selection.Mode())
}

func TestDraggingListenerRegisteredOnce(t *testing.T) {
	gizmo := &recordingGizmo{}
	e, _ := newTestEditor(t, gizmo)
	addObjects(t, e, 3)
	e.CycleNext()
	e.Deselect()
	e.CycleNext()

	assert.Len(t, gizmo.listeners, 1)
}

func TestUndoRedoAdd(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	obj := addObjects(t, e, 1)[0]

	require.True(t, e.Undo())
	assert.Zero(t, e.Objects.Len())
	assert.False(t, e.Scene.Contains(obj.Root))
	assert.False(t, e.Selection.HasSelection())

	require.True(t, e.Redo())
	assert.Equal(t, 1, e.Objects.Len())
	assert.True(t, e.Scene.Contains(obj.Root))
	assert.Equal(t, obj.ID, e.Objects.At(0).ID)

	assert.False(t, e.Redo())
}

func TestUndoDeleteRestoresOrder(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	objs := addObjects(t, e, 3)
	e.SelectExplicit(objs[1].ID)
	require.True(t, e.DeleteSelected())

	require.True(t, e.Undo())
	require.Equal(t, 3, e.Objects.Len())
	for i, obj := range objs {
		assert.Equal(t, obj.ID, e.Objects.At(i).ID)
	}
	assert.True(t, e.Scene.Contains(objs[1].Root))
	assert.Equal(t, 0, e.Scene.CountTagged(scene.TagOutline))

	require.True(t, e.Redo())
	assert.Equal(t, 2, e.Objects.Len())
	assert.False(t, e.Scene.Contains(objs[1].Root))
}

func TestDuplicateSelected(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	src := addObjects(t, e, 1)[0]
	src.Root.SetScale(math.NewVec3(2, 2, 1))

	dup, ok := e.DuplicateSelected()
	require.True(t, ok)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, dup.ID, e.Selection.Selected())
	assert.Equal(t, src.Root.Transform.Scale, dup.Root.Transform.Scale)
	assert.True(t, dup.Root.Transform.Position.ApproxEqual(duplicateOffset, 1e-6))

	e.Deselect()
	_, ok = e.DuplicateSelected()
	assert.False(t, ok)
}

func TestGizmoTranslateDrag(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	obj := addObjects(t, e, 1)[0]
	input := NewInputAdapter(e, "", "")

	x0, y0 := project(e, math.NewVec3(0.75, 0, 0))
	x1, y1 := project(e, math.NewVec3(1.25, 0, 0))

	input.PointerDown(x0, y0, core.MouseLeft)
	require.True(t, e.Dragging())
	input.PointerMove(x1, y1)
	input.PointerUp(x1, y1, core.MouseLeft)
	assert.False(t, e.Dragging())

	pos := obj.Root.Transform.Position
	assert.InDelta(t, 0.5, pos.X, 1e-3)
	assert.InDelta(t, 0, pos.Y, 1e-4)
	assert.InDelta(t, 0, pos.Z, 1e-4)
	assert.Equal(t, obj.ID, e.Selection.Selected())

	require.True(t, e.History.CanUndo())
	e.Undo()
	assert.Equal(t, math.Vec3Zero, obj.Root.Transform.Position)
	e.Redo()
	assert.InDelta(t, 0.5, obj.Root.Transform.Position.X, 1e-3)
}

func TestGizmoScaleDrag(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	obj := addObjects(t, e, 1)[0]
	e.SetGizmoMode(GizmoScale)

	x0, y0 := project(e, math.NewVec3(1, 0, 0))
	x1, y1 := project(e, math.NewVec3(3, 0, 0))
	require.True(t, e.BeginDrag(x0, y0))
	e.UpdateDrag(x1, y1)
	e.EndDrag()

	// factor = 1 + 2*0.5
	assert.InDelta(t, 2, obj.Root.Transform.Scale.X, 1e-3)
	assert.InDelta(t, 1, obj.Root.Transform.Scale.Y, 1e-6)
}

func TestBeginDragMissesHandles(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	addObjects(t, e, 1)

	assert.False(t, e.BeginDrag(10, 10))
	assert.False(t, e.Dragging())
	e.EndDrag()
	assert.Len(t, e.History.undoStack, 1)
}

func TestHistoryDepth(t *testing.T) {
	h := NewHistory(2)
	node := scene.NewNode("n")
	for i := 1; i <= 3; i++ {
		old := node.Transform
		node.SetPosition(math.NewVec3(float32(i), 0, 0))
		h.Push(NewTransformCommand(node, old, "move"))
	}
	assert.NotNil(t, h.Undo())
	assert.NotNil(t, h.Undo())
	assert.Nil(t, h.Undo())
	assert.InDelta(t, 1, node.Transform.Position.X, 1e-6)
}

func TestObjectsInsertRemove(t *testing.T) {
	c := NewObjects()
	a := &PlacedObject{Root: scene.NewNode("a")}
	b := &PlacedObject{Root: scene.NewNode("b")}
	c.Add(a)
	c.Insert(0, b)

	assert.Equal(t, []*PlacedObject{b, a}, c.All())
	assert.NotEqual(t, a.ID, b.ID)
	assert.Same(t, a, c.ByRoot(a.Root))
	assert.Equal(t, 1, c.Remove(a.ID))
	assert.Equal(t, -1, c.Remove(a.ID))
	assert.Nil(t, c.Get(0))

	// IDs keep increasing after reinsertion
	c.Insert(5, a)
	d := &PlacedObject{Root: scene.NewNode("d")}
	c.Add(d)
	assert.Greater(t, d.ID, a.ID)
}

func TestSnapshotRestore(t *testing.T) {
	e, textures := newTestEditor(t, nil)
	textures.cur.Path = "sprites/hero.png"
	objs := addObjects(t, e, 2)
	objs[1].Root.SetScale(math.NewVec3(2, 1, 1))
	e.SetGizmoMode(GizmoRotate)
	e.ApplyFilter(scene.FilterTrilinear)
	e.Orbit.Radius = 4
	e.Orbit.Azimuth = 0.5

	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, e.SaveLayout(path))

	other, otherTextures := newTestEditor(t, nil)
	otherTextures.cur = nil
	require.NoError(t, other.LoadLayout(path))

	assert.Equal(t, []string{"sprites/hero.png"}, otherTextures.loaded)
	assert.Equal(t, scene.FilterTrilinear, otherTextures.filter)
	assert.Equal(t, GizmoRotate, other.Selection.Mode())
	assert.InDelta(t, 4, other.Orbit.Radius, 1e-6)
	assert.InDelta(t, 0.5, other.Orbit.Azimuth, 1e-6)
	assert.False(t, other.History.CanUndo())
	assert.False(t, other.Selection.HasSelection())

	require.Equal(t, 2, other.Objects.Len())
	for i, obj := range objs {
		got := other.Objects.At(i)
		assert.Equal(t, obj.Root.Name, got.Root.Name)
		assert.Equal(t, obj.Root.Transform, got.Root.Transform)
		assert.True(t, other.Scene.Contains(got.Root))
	}
}

func TestRestoreTextureFailure(t *testing.T) {
	e, textures := newTestEditor(t, nil)
	addObjects(t, e, 1)
	layout := e.Snapshot()
	layout.TexturePath = "missing.png"
	textures.err = os.ErrNotExist

	err := e.Restore(layout)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, 1, e.Objects.Len())
}

func TestExport(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	addObjects(t, e, 2)

	path := filepath.Join(t.TempDir(), "scene.glb")
	require.NoError(t, e.Export(path))
	assert.FileExists(t, path)
}

func TestStatusLine(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	addObjects(t, e, 2)
	assert.Equal(t, "Selected: Sprite 2 | 2 sprites | translate | white (nearest)", e.StatusLine())
}
