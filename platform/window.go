// Package platform binds the editor to a GLFW window with an OpenGL 4.1 core
// context and forwards window events to an EventHandler.
package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"sprite-editor/core"
)

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

// EventHandler receives translated window events. Handlers run to completion
// on the main thread before the next event is dispatched.
type EventHandler interface {
	PointerDown(x, y float32, button core.MouseButton)
	PointerMove(x, y float32)
	PointerUp(x, y float32, button core.MouseButton)
	Wheel(dy float32)
	// KeyDown reports whether the key was consumed.
	KeyDown(key core.Key, mods core.Modifier) bool
	Resize(width, height int)
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	handler EventHandler
}

type WindowConfig struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	VSync     bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1280,
		Height:    720,
		Title:     "Sprite Editor",
		Resizable: true,
		VSync:     true,
	}
}

func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	fbWidth, fbHeight := handle.GetFramebufferSize()
	window := &Window{
		Handle: handle,
		Width:  fbWidth,
		Height: fbHeight,
		Title:  config.Title,
	}
	window.installCallbacks()
	return window, nil
}

// SetHandler routes subsequent events to h.
func (w *Window) SetHandler(h EventHandler) {
	w.handler = h
}

func (w *Window) installCallbacks() {
	w.Handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.Width = width
		w.Height = height
		if w.handler != nil {
			w.handler.Resize(width, height)
		}
	})

	w.Handle.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if w.handler == nil {
			return
		}
		b, ok := mapMouseButton(button)
		if !ok {
			return
		}
		x, y := w.toFramebuffer(win.GetCursorPos())
		switch action {
		case glfw.Press:
			w.handler.PointerDown(x, y, b)
		case glfw.Release:
			w.handler.PointerUp(x, y, b)
		}
	})

	w.Handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.handler != nil {
			w.handler.PointerMove(w.toFramebuffer(x, y))
		}
	})

	w.Handle.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.handler != nil {
			w.handler.Wheel(float32(yoff))
		}
	})

	w.Handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if w.handler == nil || action != glfw.Press {
			return
		}
		if k := mapKey(key); k != core.KeyUnknown {
			w.handler.KeyDown(k, mapMods(mods))
		}
	})
}

// toFramebuffer converts cursor coordinates (screen units) to framebuffer
// pixels, which differ on high-DPI displays.
func (w *Window) toFramebuffer(x, y float64) (float32, float32) {
	winW, winH := w.Handle.GetSize()
	if winW == 0 || winH == 0 {
		return float32(x), float32(y)
	}
	return float32(x * float64(w.Width) / float64(winW)), float32(y * float64(w.Height) / float64(winH))
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) SetTitle(title string) {
	if title == w.Title {
		return
	}
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func mapMouseButton(b glfw.MouseButton) (core.MouseButton, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return core.MouseLeft, true
	case glfw.MouseButtonRight:
		return core.MouseRight, true
	case glfw.MouseButtonMiddle:
		return core.MouseMiddle, true
	}
	return 0, false
}

func mapMods(m glfw.ModifierKey) core.Modifier {
	var mods core.Modifier
	if m&glfw.ModShift != 0 {
		mods |= core.ModShift
	}
	if m&glfw.ModControl != 0 {
		mods |= core.ModControl
	}
	if m&glfw.ModAlt != 0 {
		mods |= core.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		mods |= core.ModSuper
	}
	return mods
}

var keyMap = map[glfw.Key]core.Key{
	glfw.KeySpace:     core.KeySpace,
	glfw.KeyEscape:    core.KeyEscape,
	glfw.KeyEnter:     core.KeyEnter,
	glfw.KeyTab:       core.KeyTab,
	glfw.KeyBackspace: core.KeyBackspace,
	glfw.KeyDelete:    core.KeyDelete,
	glfw.Key1:         core.Key1,
	glfw.Key2:         core.Key2,
	glfw.Key3:         core.Key3,
	glfw.KeyD:         core.KeyD,
	glfw.KeyE:         core.KeyE,
	glfw.KeyN:         core.KeyN,
	glfw.KeyR:         core.KeyR,
	glfw.KeyW:         core.KeyW,
	glfw.KeyZ:         core.KeyZ,
	glfw.KeyF5:        core.KeyF5,
	glfw.KeyF6:        core.KeyF6,
	glfw.KeyF9:        core.KeyF9,
}

func mapKey(k glfw.Key) core.Key {
	if key, ok := keyMap[k]; ok {
		return key
	}
	return core.KeyUnknown
}
