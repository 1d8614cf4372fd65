package editor

import (
	"github.com/chewxy/math32"

	"sprite-editor/core"
	"sprite-editor/math"
	"sprite-editor/scene"
)

// GizmoMode selects which transform the gizmo applies.
type GizmoMode int

const (
	GizmoTranslate GizmoMode = iota
	GizmoRotate
	GizmoScale
)

// Next returns the mode after m in the Translate, Rotate, Scale cycle.
func (m GizmoMode) Next() GizmoMode {
	return (m + 1) % 3
}

func (m GizmoMode) String() string {
	switch m {
	case GizmoTranslate:
		return "translate"
	case GizmoRotate:
		return "rotate"
	case GizmoScale:
		return "scale"
	}
	return "unknown"
}

// ParseGizmoMode is the inverse of GizmoMode.String. Unknown names map to
// GizmoTranslate.
func ParseGizmoMode(s string) GizmoMode {
	switch s {
	case "rotate":
		return GizmoRotate
	case "scale":
		return GizmoScale
	}
	return GizmoTranslate
}

// Gizmo is an on-screen manipulation handle bound to at most one node.
type Gizmo interface {
	Attach(target *scene.Node)
	Detach()
	Target() *scene.Node
	SetMode(mode GizmoMode)
	Mode() GizmoMode
	// BeginDrag starts a drag if ray grabs one of the handles.
	BeginDrag(ray scene.Ray) bool
	UpdateDrag(ray scene.Ray)
	EndDrag()
	// Sync follows the target after it moves outside a drag.
	Sync()
	// OnDraggingChanged registers fn to be told when a drag starts or ends.
	OnDraggingChanged(fn func(dragging bool))
}

const (
	gizmoLength  float32 = 1.5
	gizmoHitDist float32 = 0.2
	ringHitDist  float32 = 0.25
	ringRadius           = gizmoLength * 0.8
	ringSegments         = 48
)

var gizmoAxes = [3]math.Vec3{math.Vec3Right, math.Vec3Up, math.Vec3Front}

var gizmoColors = [3]core.Color{
	{R: 0.9, G: 0.2, B: 0.2, A: 1},
	{R: 0.2, G: 0.85, B: 0.2, A: 1},
	{R: 0.25, G: 0.4, B: 1, A: 1},
}

// TransformGizmo moves, rotates or scales its target along world axes.
// Its handles live under Node, which the owner adds to the scene.
type TransformGizmo struct {
	Node *scene.Node

	target   *scene.Node
	mode     GizmoMode
	handles  [3]*scene.Node // one group per mode
	dragging bool
	listener []func(bool)

	dragAxisIdx     int
	dragAxis        math.Vec3
	dragPlaneNormal math.Vec3
	dragStart       float32
	dragInit        core.Transform
	dragInitWorld   math.Vec3
}

func NewTransformGizmo() *TransformGizmo {
	g := &TransformGizmo{Node: scene.NewNode("Gizmo")}
	g.Node.Visible = false
	g.handles[GizmoTranslate] = buildAxisHandles("Translate", 0)
	g.handles[GizmoRotate] = buildRingHandles()
	g.handles[GizmoScale] = buildAxisHandles("Scale", 0.12)
	for _, h := range g.handles {
		g.Node.AddChild(h)
	}
	g.SetMode(GizmoTranslate)
	return g
}

// buildAxisHandles draws three axis lines; tick > 0 adds a cross at each end.
func buildAxisHandles(name string, tick float32) *scene.Node {
	group := scene.NewNode(name)
	for i, axis := range gizmoAxes {
		var verts []core.Vertex
		var idx []uint32
		line := func(a, b math.Vec3) {
			base := uint32(len(verts))
			verts = append(verts,
				core.Vertex{Position: a, Color: gizmoColors[i]},
				core.Vertex{Position: b, Color: gizmoColors[i]})
			idx = append(idx, base, base+1)
		}
		end := axis.Mul(gizmoLength)
		line(math.Vec3Zero, end)
		if tick > 0 {
			for _, other := range gizmoAxes {
				if other == axis {
					continue
				}
				line(end.Sub(other.Mul(tick)), end.Add(other.Mul(tick)))
			}
		}
		group.AddChild(lineNode(name, verts, idx))
	}
	return group
}

func buildRingHandles() *scene.Node {
	group := scene.NewNode("Rotate")
	for i, axis := range gizmoAxes {
		u := gizmoAxes[(i+1)%3]
		v := gizmoAxes[(i+2)%3]
		var verts []core.Vertex
		var idx []uint32
		for s := 0; s < ringSegments; s++ {
			a := float32(s) / ringSegments * 2 * math32.Pi
			p := u.Mul(math32.Cos(a) * ringRadius).Add(v.Mul(math32.Sin(a) * ringRadius))
			verts = append(verts, core.Vertex{Position: p, Normal: axis, Color: gizmoColors[i]})
			idx = append(idx, uint32(s), uint32((s+1)%ringSegments))
		}
		group.AddChild(lineNode("Ring", verts, idx))
	}
	return group
}

// lineNode wraps a line mesh; the color comes from the vertices.
func lineNode(name string, verts []core.Vertex, idx []uint32) *scene.Node {
	n := scene.NewNode(name)
	n.Mesh = scene.CreateMeshFromData(name, verts, idx)
	n.Mesh.DrawMode = scene.DrawLines
	n.Mesh.Material = scene.NewMaterial(name, core.ColorWhite)
	return n
}

func (g *TransformGizmo) Attach(target *scene.Node) {
	if g.target != target {
		g.EndDrag()
	}
	g.target = target
	g.Node.Visible = target != nil
	g.Sync()
}

func (g *TransformGizmo) Detach() {
	g.EndDrag()
	g.target = nil
	g.Node.Visible = false
}

func (g *TransformGizmo) Target() *scene.Node { return g.target }

func (g *TransformGizmo) SetMode(mode GizmoMode) {
	g.mode = mode
	for m, h := range g.handles {
		h.Visible = GizmoMode(m) == mode
	}
}

func (g *TransformGizmo) Mode() GizmoMode { return g.mode }

// Dragging reports whether a drag is in progress.
func (g *TransformGizmo) Dragging() bool { return g.dragging }

func (g *TransformGizmo) OnDraggingChanged(fn func(bool)) {
	g.listener = append(g.listener, fn)
}

func (g *TransformGizmo) setDragging(d bool) {
	if g.dragging == d {
		return
	}
	g.dragging = d
	for _, fn := range g.listener {
		fn(d)
	}
}

// Sync moves the handles to the target's world position.
func (g *TransformGizmo) Sync() {
	if g.target == nil {
		return
	}
	g.Node.SetPosition(g.target.WorldPosition())
}

// pickAxis returns the index of the handle closest to ray, or -1.
func (g *TransformGizmo) pickAxis(ray scene.Ray) int {
	if g.target == nil {
		return -1
	}
	center := g.target.WorldPosition()
	bestDist := float32(math32.MaxFloat32)
	bestAxis := -1

	for i, axis := range gizmoAxes {
		if g.mode == GizmoRotate {
			// Rings lie in the plane perpendicular to their axis
			pt, ok := rayPlaneIntersect(ray, center, axis)
			if !ok {
				continue
			}
			d := math32.Abs(pt.Distance(center) - ringRadius)
			if d < ringHitDist && d < bestDist {
				bestDist, bestAxis = d, i
			}
			continue
		}
		_, t, d := closestPointBetweenRays(ray.Origin, ray.Direction, center, axis)
		if t > 0 && t < gizmoLength && d < gizmoHitDist && d < bestDist {
			bestDist, bestAxis = d, i
		}
	}
	return bestAxis
}

func (g *TransformGizmo) BeginDrag(ray scene.Ray) bool {
	axisIdx := g.pickAxis(ray)
	if axisIdx < 0 {
		return false
	}

	g.dragAxisIdx = axisIdx
	g.dragAxis = gizmoAxes[axisIdx]
	g.dragInit = g.target.Transform
	g.dragInitWorld = g.target.WorldPosition()

	// Drag plane contains the axis and faces the viewer as much as possible
	viewDir := g.dragInitWorld.Sub(ray.Origin).Normalize()
	g.dragPlaneNormal = g.dragAxis.Cross(viewDir.Cross(g.dragAxis)).Normalize()
	if g.mode == GizmoRotate {
		g.dragPlaneNormal = g.dragAxis
	}
	if g.dragPlaneNormal.LengthSqr() == 0 {
		return false
	}

	g.dragStart = 0
	if start, ok := g.dragParam(ray); ok {
		g.dragStart = start
	}
	g.setDragging(true)
	return true
}

// dragParam measures ray's position along the drag: distance along the
// axis for translate/scale, angle around it for rotate.
func (g *TransformGizmo) dragParam(ray scene.Ray) (float32, bool) {
	pt, ok := rayPlaneIntersect(ray, g.dragInitWorld, g.dragPlaneNormal)
	if !ok {
		return 0, false
	}
	rel := pt.Sub(g.dragInitWorld)
	if g.mode != GizmoRotate {
		return rel.Dot(g.dragAxis), true
	}
	u := gizmoAxes[(g.dragAxisIdx+1)%3]
	v := gizmoAxes[(g.dragAxisIdx+2)%3]
	return math32.Atan2(rel.Dot(v), rel.Dot(u)), true
}

func (g *TransformGizmo) UpdateDrag(ray scene.Ray) {
	if !g.dragging || g.target == nil {
		return
	}
	current, ok := g.dragParam(ray)
	if !ok {
		return
	}
	delta := current - g.dragStart

	t := g.dragInit
	switch g.mode {
	case GizmoTranslate:
		t.Position = g.dragInit.Position.Add(g.dragAxis.Mul(delta))
	case GizmoRotate:
		t.Rotation = math.QuaternionFromAxisAngle(g.dragAxis, delta).Mul(g.dragInit.Rotation).Normalize()
	case GizmoScale:
		factor := math32.Max(0.1, 1+delta*0.5)
		switch g.dragAxisIdx {
		case 0:
			t.Scale.X = g.dragInit.Scale.X * factor
		case 1:
			t.Scale.Y = g.dragInit.Scale.Y * factor
		case 2:
			t.Scale.Z = g.dragInit.Scale.Z * factor
		}
	}
	g.target.SetTransform(t)
	g.Sync()
}

func (g *TransformGizmo) EndDrag() {
	g.setDragging(false)
}

// closestPointBetweenRays finds the closest approach between two rays.
// Returns (t1, t2, distance) where t1/t2 are parameters along each ray.
func closestPointBetweenRays(a, u, b, v math.Vec3) (t1, t2, dist float32) {
	w := a.Sub(b)
	uu := u.Dot(u)
	uv := u.Dot(v)
	vv := v.Dot(v)
	uw := u.Dot(w)
	vw := v.Dot(w)

	denom := uu*vv - uv*uv
	if denom < 1e-6 {
		return 0, 0, math32.MaxFloat32
	}

	t1 = (uv*vw - vv*uw) / denom
	t2 = (uu*vw - uv*uw) / denom

	p1 := a.Add(u.Mul(t1))
	p2 := b.Add(v.Mul(t2))
	return t1, t2, p1.Distance(p2)
}

// rayPlaneIntersect returns where ray hits the plane through point with
// the given normal.
func rayPlaneIntersect(ray scene.Ray, point, normal math.Vec3) (math.Vec3, bool) {
	denom := ray.Direction.Dot(normal)
	if math32.Abs(denom) < 1e-6 {
		return math.Vec3{}, false
	}
	t := point.Sub(ray.Origin).Dot(normal) / denom
	if t < 0 {
		return math.Vec3{}, false
	}
	return ray.At(t), true
}
