package scene

import "sprite-editor/core"

// Material describes how a mesh is shaded. The editor draws everything
// unlit: sprites show their texture as-is and decorations use flat colors.
type Material struct {
	Name   string
	Albedo core.Color // multiplied with AlbedoTexture when one is set

	// Optional albedo texture. Upload via opengl.UploadTexture before rendering.
	AlbedoTexture *Texture

	// AlphaCutoff discards fragments whose texture alpha is below it, so
	// transparent sprite pixels do not occlude what is behind them.
	AlphaCutoff float32
}

// DefaultMaterial returns a plain white material.
func DefaultMaterial() *Material {
	return &Material{
		Name:   "Default",
		Albedo: core.ColorWhite,
	}
}

// NewMaterial creates a flat-colored material.
func NewMaterial(name string, albedo core.Color) *Material {
	return &Material{
		Name:   name,
		Albedo: albedo,
	}
}

// NewSpriteMaterial creates a textured material for sprite quads.
func NewSpriteMaterial(name string, tex *Texture) *Material {
	return &Material{
		Name:          name,
		Albedo:        core.ColorWhite,
		AlbedoTexture: tex,
		AlphaCutoff:   0.05,
	}
}
