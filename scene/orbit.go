package scene

import (
	"github.com/chewxy/math32"

	"sprite-editor/math"
)

const (
	// PolarEpsilon keeps the polar angle away from the poles so the
	// look-at basis never degenerates.
	PolarEpsilon float32 = 0.1
	// MinRadius is the closest the camera may get to its target.
	MinRadius float32 = 1.1

	DefaultSensitivity   float32 = 0.005
	DefaultZoomIntensity float32 = 0.5
)

// OrbitCamera drives a Camera from spherical coordinates around a fixed
// target at the origin.
type OrbitCamera struct {
	Camera *Camera
	Target math.Vec3

	Radius  float32
	Azimuth float32 // radians, unbounded
	Polar   float32 // radians from +Y, clamped to [PolarEpsilon, π-PolarEpsilon]

	Sensitivity   float32 // radians per pixel of drag
	ZoomIntensity float32
}

// NewOrbitCamera wraps camera and immediately positions it.
func NewOrbitCamera(camera *Camera, radius, azimuth, polar float32) *OrbitCamera {
	o := &OrbitCamera{
		Camera:        camera,
		Target:        math.Vec3Zero,
		Radius:        math32.Max(radius, MinRadius),
		Azimuth:       azimuth,
		Polar:         ClampPolar(polar),
		Sensitivity:   DefaultSensitivity,
		ZoomIntensity: DefaultZoomIntensity,
	}
	o.RecomputePosition()
	return o
}

// ClampPolar limits p to [PolarEpsilon, π-PolarEpsilon].
func ClampPolar(p float32) float32 {
	return math.Clamp(p, PolarEpsilon, math32.Pi-PolarEpsilon)
}

// SetDelta applies a pointer drag in pixels.
func (o *OrbitCamera) SetDelta(dAzimuth, dPolar float32) {
	o.Azimuth -= dAzimuth * o.Sensitivity
	o.Polar = ClampPolar(o.Polar - dPolar*o.Sensitivity)
	o.RecomputePosition()
}

// Zoom moves the camera one scroll tick. Positive direction moves away from
// the target, negative moves closer. The step shrinks near MinRadius.
func (o *OrbitCamera) Zoom(direction float32) {
	if direction == 0 {
		return
	}
	scale := o.ZoomIntensity * math32.Max(0.1, (o.Radius-1)/10)
	o.Radius = math32.Max(o.Radius+math.Sign(direction)*scale, MinRadius)
	o.RecomputePosition()
}

// Offset returns the camera position relative to the target for the
// current state.
func (o *OrbitCamera) Offset() math.Vec3 {
	polar := ClampPolar(o.Polar)
	sinPolar := math32.Sin(polar)
	return math.Vec3{
		X: o.Radius * sinPolar * math32.Sin(o.Azimuth),
		Y: o.Radius * math32.Cos(polar),
		Z: o.Radius * sinPolar * math32.Cos(o.Azimuth),
	}
}

// RecomputePosition places the camera from the spherical state and aims it
// at the target with +Y up.
func (o *OrbitCamera) RecomputePosition() {
	o.Camera.SetPosition(o.Target.Add(o.Offset()))
	o.Camera.LookAt(o.Target, math.Vec3Up)
}

// Resize updates the aspect ratio only; the orbit state is untouched.
func (o *OrbitCamera) Resize(width, height int) {
	o.Camera.UpdateAspectRatio(float32(width), float32(height))
	o.RecomputePosition()
}
