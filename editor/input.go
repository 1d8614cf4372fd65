package editor

import (
	"sprite-editor/core"
	"sprite-editor/scene"
)

// InputAdapter translates window events into editor actions. It implements
// platform.EventHandler.
type InputAdapter struct {
	Editor *Editor

	// Targets of the F5/F9 layout keys and the F6 export key.
	LayoutPath string
	ExportPath string

	lastX, lastY float32
	orbiting     bool
	gizmoDrag    bool
	pressed      bool
}

func NewInputAdapter(e *Editor, layoutPath, exportPath string) *InputAdapter {
	return &InputAdapter{Editor: e, LayoutPath: layoutPath, ExportPath: exportPath}
}

func (a *InputAdapter) PointerDown(x, y float32, button core.MouseButton) {
	a.lastX, a.lastY = x, y
	switch button {
	case CameraButton:
		a.orbiting = true
	case core.MouseLeft:
		a.pressed = true
		a.gizmoDrag = a.Editor.BeginDrag(x, y)
	}
}

func (a *InputAdapter) PointerMove(x, y float32) {
	dx, dy := x-a.lastX, y-a.lastY
	a.lastX, a.lastY = x, y
	switch {
	case a.gizmoDrag:
		a.Editor.UpdateDrag(x, y)
	case a.orbiting:
		a.Editor.Orbit.SetDelta(dx, dy)
	}
}

func (a *InputAdapter) PointerUp(x, y float32, button core.MouseButton) {
	a.lastX, a.lastY = x, y
	switch button {
	case CameraButton:
		a.orbiting = false
	case core.MouseLeft:
		if !a.pressed {
			return
		}
		a.pressed = false
		if a.gizmoDrag {
			a.gizmoDrag = false
			a.Editor.EndDrag()
			return
		}
		a.Editor.Pick(x, y, button)
	}
}

// Wheel zooms the orbit camera. Scrolling up moves the camera out.
func (a *InputAdapter) Wheel(dy float32) {
	switch {
	case dy > 0:
		a.Editor.Orbit.Zoom(1)
	case dy < 0:
		a.Editor.Orbit.Zoom(-1)
	}
}

func (a *InputAdapter) Resize(width, height int) {
	a.Editor.Resize(width, height)
}

// KeyDown dispatches editor shortcuts and reports whether key was consumed.
// Tab is always consumed so focus never leaves the viewport.
func (a *InputAdapter) KeyDown(key core.Key, mods core.Modifier) bool {
	e := a.Editor
	ctrl := mods.Has(core.ModControl) || mods.Has(core.ModSuper)

	switch key {
	case core.KeySpace:
		e.CycleGizmoMode()
	case core.KeyEscape:
		e.Deselect()
	case core.KeyDelete, core.KeyBackspace:
		e.DeleteSelected()
	case core.KeyTab:
		e.CycleNext()
	case core.KeyZ:
		if !ctrl {
			return false
		}
		if mods.Has(core.ModShift) {
			e.Redo()
		} else {
			e.Undo()
		}
	case core.KeyD:
		if !ctrl {
			return false
		}
		e.DuplicateSelected()
	case core.KeyW:
		e.SetGizmoMode(GizmoTranslate)
	case core.KeyE:
		e.SetGizmoMode(GizmoRotate)
	case core.KeyR:
		e.SetGizmoMode(GizmoScale)
	case core.KeyN:
		if _, err := e.AddObject(); err != nil {
			e.logger.Warn("add object", "error", err)
		}
	case core.Key1:
		e.ApplyFilter(scene.FilterNearest)
	case core.Key2:
		e.ApplyFilter(scene.FilterBilinear)
	case core.Key3:
		e.ApplyFilter(scene.FilterTrilinear)
	case core.KeyF5:
		if err := e.SaveLayout(a.LayoutPath); err != nil {
			e.fail("save layout", err)
		}
	case core.KeyF9:
		if err := e.LoadLayout(a.LayoutPath); err != nil {
			e.fail("load layout", err)
		}
	case core.KeyF6:
		if err := e.Export(a.ExportPath); err != nil {
			e.fail("export", err)
		}
	default:
		return false
	}
	return true
}
