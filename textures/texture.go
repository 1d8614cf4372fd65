package textures

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"sprite-editor/scene"
)

// ErrEmptyPath is returned when a texture load is requested without a path.
var ErrEmptyPath = errors.New("textures: empty path")

// Releaser frees the GPU resources held by a texture.
type Releaser interface {
	Release(tex *scene.Texture)
}

// ReleaserFunc adapts a function to the Releaser interface.
type ReleaserFunc func(tex *scene.Texture)

func (f ReleaserFunc) Release(tex *scene.Texture) { f(tex) }

// LoadFile decodes the image at path into an RGBA texture. Images whose
// longest side exceeds maxSize are downscaled to fit, keeping the aspect
// ratio; maxSize <= 0 disables the limit. Nearest-filtered textures are
// resampled with nearest neighbour so pixel art stays crisp.
func LoadFile(path string, maxSize int, filter scene.FilterMode) (*scene.Texture, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load texture %q: %w", path, err)
	}

	rgba := fitWithin(img, maxSize, filter)
	tex := scene.NewTextureFromRGBA(filepath.Base(path), rgba)
	tex.Path = path
	tex.Filter = filter
	return tex, nil
}

// fitWithin returns img as RGBA, downscaled so neither side exceeds maxSize.
func fitWithin(img image.Image, maxSize int, filter scene.FilterMode) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return clone.AsRGBA(img)
	}

	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}

	resample := transform.Lanczos
	if filter == scene.FilterNearest {
		resample = transform.NearestNeighbor
	}
	return transform.Resize(img, w, h, resample)
}

// Manager owns the single active sprite texture. Replacing it releases the
// previous texture before the new one is stored.
type Manager struct {
	current  *scene.Texture
	releaser Releaser
	maxSize  int
	filter   scene.FilterMode
	logger   *slog.Logger

	onChange []func(*scene.Texture)
}

// NewManager creates a manager. releaser may be nil when no GPU resources
// are involved (tests, headless use).
func NewManager(releaser Releaser, maxSize int, filter scene.FilterMode, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		releaser: releaser,
		maxSize:  maxSize,
		filter:   filter,
		logger:   logger,
	}
}

// Current returns the active texture or nil.
func (m *Manager) Current() *scene.Texture {
	return m.current
}

// Filter returns the filter mode applied to loaded textures.
func (m *Manager) Filter() scene.FilterMode {
	return m.filter
}

// OnChange registers fn to be called with the new texture after every
// successful Load or Replace.
func (m *Manager) OnChange(fn func(*scene.Texture)) {
	m.onChange = append(m.onChange, fn)
}

// Load decodes path and makes it the active texture. On failure the
// current texture is kept.
func (m *Manager) Load(path string) (*scene.Texture, error) {
	tex, err := LoadFile(path, m.maxSize, m.filter)
	if err != nil {
		return nil, err
	}
	m.Replace(tex)
	m.logger.Info("texture loaded", "path", path, "width", tex.Width, "height", tex.Height)
	return tex, nil
}

// Replace releases the active texture, then stores tex.
func (m *Manager) Replace(tex *scene.Texture) {
	if m.current == tex {
		return
	}
	m.release()
	m.current = tex
	for _, fn := range m.onChange {
		fn(tex)
	}
}

// SetFilter applies mode to the active texture and to future loads.
func (m *Manager) SetFilter(mode scene.FilterMode) {
	m.filter = mode
	if m.current != nil {
		m.current.SetFilter(mode)
	}
}

// Close releases the active texture.
func (m *Manager) Close() {
	m.release()
	m.current = nil
}

func (m *Manager) release() {
	if m.current == nil {
		return
	}
	if m.releaser != nil {
		m.releaser.Release(m.current)
	}
	m.logger.Debug("texture released", "name", m.current.Name)
}
