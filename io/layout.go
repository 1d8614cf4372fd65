package io

import (
	"encoding/json"
	"fmt"
	"os"

	"sprite-editor/core"
	"sprite-editor/math"
)

// LayoutVersion is written into every saved layout.
const LayoutVersion = "1.0"

// Layout is the top-level structure of a saved editor session
type Layout struct {
	Version     string       `json:"version"`
	Camera      OrbitData    `json:"camera"`
	TexturePath string       `json:"texture_path,omitempty"`
	Filter      string       `json:"filter"`
	GizmoMode   string       `json:"gizmo_mode"`
	Objects     []SpriteData `json:"objects"`
}

// OrbitData stores the orbit camera's spherical state
type OrbitData struct {
	Radius  float32 `json:"radius"`
	Azimuth float32 `json:"azimuth"`
	Polar   float32 `json:"polar"`
}

// SpriteData stores one placed sprite
type SpriteData struct {
	Name     string     `json:"name"`
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"` // Quaternion (x,y,z,w)
	Scale    [3]float32 `json:"scale"`
	Width    float32    `json:"width"`
	Height   float32    `json:"height"`
}

// SaveLayout serializes a layout to a JSON file
func SaveLayout(path string, layout *Layout) error {
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	return nil
}

// LoadLayout deserializes a JSON layout file
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	layout := &Layout{}
	if err := json.Unmarshal(data, layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout file: %w", err)
	}
	if layout.Version != LayoutVersion {
		return nil, fmt.Errorf("unsupported layout version %q", layout.Version)
	}
	for i, obj := range layout.Objects {
		if obj.Width <= 0 || obj.Height <= 0 {
			return nil, fmt.Errorf("object %d (%s): invalid size %gx%g", i, obj.Name, obj.Width, obj.Height)
		}
	}
	return layout, nil
}

// NewLayout creates an empty layout with the current version
func NewLayout() *Layout {
	return &Layout{
		Version: LayoutVersion,
		Camera:  OrbitData{Radius: 10, Polar: 1.2},
		Filter:  "nearest",
	}
}

// --- Helper conversions ---

// Vec3ToArray converts a Vec3 to a [3]float32
func Vec3ToArray(v math.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// ArrayToVec3 converts a [3]float32 to Vec3
func ArrayToVec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// QuatToArray converts a Quaternion to [4]float32
func QuatToArray(q math.Quaternion) [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

// ArrayToQuat converts [4]float32 to Quaternion
func ArrayToQuat(a [4]float32) math.Quaternion {
	return math.Quaternion{X: a[0], Y: a[1], Z: a[2], W: a[3]}
}

// TransformToData fills the transform fields of a SpriteData
func TransformToData(t core.Transform, d *SpriteData) {
	d.Position = Vec3ToArray(t.Position)
	d.Rotation = QuatToArray(t.Rotation)
	d.Scale = Vec3ToArray(t.Scale)
}

// DataToTransform rebuilds a transform from a SpriteData. A zero
// quaternion is treated as identity.
func DataToTransform(d SpriteData) core.Transform {
	t := core.NewTransform()
	t.Position = ArrayToVec3(d.Position)
	if d.Rotation != [4]float32{} {
		t.Rotation = ArrayToQuat(d.Rotation).Normalize()
	}
	if d.Scale != [3]float32{} {
		t.Scale = ArrayToVec3(d.Scale)
	}
	return t
}
