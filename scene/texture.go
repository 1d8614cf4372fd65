package scene

import (
	"fmt"
	"image"
	"strings"
)

// FilterMode selects how a texture is sampled when magnified or minified.
type FilterMode int

const (
	FilterNearest   FilterMode = iota // point sampling, crisp pixel art
	FilterBilinear                    // linear, no mipmaps
	FilterTrilinear                   // linear with linear mipmap blending
)

func (f FilterMode) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterBilinear:
		return "bilinear"
	case FilterTrilinear:
		return "trilinear"
	}
	return fmt.Sprintf("FilterMode(%d)", int(f))
}

// ParseFilterMode accepts the names produced by FilterMode.String.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest", "point":
		return FilterNearest, nil
	case "bilinear", "linear":
		return FilterBilinear, nil
	case "trilinear":
		return FilterTrilinear, nil
	}
	return FilterNearest, fmt.Errorf("unknown filter mode %q", s)
}

// Texture holds CPU-side pixel data for a 2D texture.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Path   string // source file, empty for generated textures
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	Filter FilterMode
	// GLID is the OpenGL texture object ID, set by opengl.UploadTexture.
	GLID uint32
	// Dirty asks the backend to re-apply the sampler state.
	Dirty bool
}

// NewTextureFromRGBA wraps an RGBA image. The pixel slice is shared.
func NewTextureFromRGBA(name string, img *image.RGBA) *Texture {
	b := img.Bounds()
	return &Texture{
		Name:   name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: img.Pix,
		Dirty:  true,
	}
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
		Dirty:  true,
	}
}

// SetFilter changes the sampling mode; the backend picks it up on the next
// draw.
func (t *Texture) SetFilter(mode FilterMode) {
	if t.Filter != mode {
		t.Filter = mode
		t.Dirty = true
	}
}

// Aspect returns width / height, or 1 for an empty texture.
func (t *Texture) Aspect() float32 {
	if t.Width == 0 || t.Height == 0 {
		return 1
	}
	return float32(t.Width) / float32(t.Height)
}
