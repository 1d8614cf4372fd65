package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprite-editor/core"
	"sprite-editor/math"
)

func TestNodeWorldMatrix(t *testing.T) {
	parent := NewNode("parent")
	parent.SetPosition(math.NewVec3(1, 0, 0))
	parent.SetScale(math.NewVec3(2, 2, 2))

	child := NewNode("child")
	child.SetPosition(math.NewVec3(1, 0, 0))
	parent.AddChild(child)

	assert.True(t, child.WorldPosition().ApproxEqual(math.NewVec3(3, 0, 0), 1e-5), "got %v", child.WorldPosition())

	// Moving the parent invalidates the child's cached matrix
	parent.SetPosition(math.NewVec3(0, 1, 0))
	assert.True(t, child.WorldPosition().ApproxEqual(math.NewVec3(2, 1, 0), 1e-5), "got %v", child.WorldPosition())
}

func TestNodeAncestor(t *testing.T) {
	s := NewScene()
	root := NewNode("object")
	root.Tags = TagSelectable
	hull := NewNode("hull")
	hull.Tags = TagHull
	root.AddChild(hull)
	s.AddNode(root)

	found := hull.Ancestor(func(n *Node) bool { return n.HasTag(TagSelectable) })
	assert.Same(t, root, found)
	assert.Nil(t, hull.Ancestor(func(n *Node) bool { return n.HasTag(TagOutline) }))
	assert.True(t, s.Contains(hull))

	s.RemoveNode(root)
	assert.False(t, s.Contains(hull))
	assert.Nil(t, root.Parent)
}

func TestGetVisibleNodesSkipsHiddenSubtrees(t *testing.T) {
	s := NewScene()
	group := NewNode("group")
	group.Visible = false
	leaf := NewNode("leaf")
	leaf.Mesh = CreateQuad(1, 1)
	group.AddChild(leaf)
	s.AddNode(group)

	other := NewNode("other")
	other.Mesh = CreateQuad(1, 1)
	s.AddNode(other)

	assert.Equal(t, []*Node{other}, s.GetVisibleNodes())
}

func TestCreateEdgesQuad(t *testing.T) {
	edges := CreateEdges(CreateQuad(2, 1), 1, core.ColorYellow)
	require.Equal(t, DrawLines, edges.DrawMode)

	// The shared diagonal is coplanar and dropped; the four sides remain.
	assert.Len(t, edges.Indices, 8)
	assert.Len(t, edges.Vertices, 8)
	for _, v := range edges.Vertices {
		assert.Equal(t, core.ColorYellow, v.Color)
		assert.True(t, math32.Abs(v.Position.X) == 1 || math32.Abs(v.Position.Y) == 0.5)
	}
}

func TestCreateEdgesBox(t *testing.T) {
	edges := CreateEdges(CreateBox(1, 1, 1), 1, core.ColorWhite)
	assert.Len(t, edges.Indices, 12*2)
}

func TestOrbitZoomScaling(t *testing.T) {
	cam := NewCamera(math32.Pi/4, 1, 0.1, 100)

	o := NewOrbitCamera(cam, 10, 0, math32.Pi/2)
	o.Zoom(-1)
	assert.InDelta(t, 9.55, o.Radius, 1e-5)

	o = NewOrbitCamera(cam, MinRadius, 0, math32.Pi/2)
	o.Zoom(1)
	assert.InDelta(t, 1.15, o.Radius, 1e-5)

	o = NewOrbitCamera(cam, MinRadius, 0, math32.Pi/2)
	o.Zoom(-1)
	assert.InDelta(t, MinRadius, o.Radius, 1e-6)

	o.Zoom(0)
	assert.InDelta(t, MinRadius, o.Radius, 1e-6)
}

func TestOrbitRadiusFloor(t *testing.T) {
	o := NewOrbitCamera(NewCamera(1, 1, 0.1, 100), 50, 0, 1)
	for i := 0; i < 500; i++ {
		o.Zoom(-1)
		require.GreaterOrEqual(t, o.Radius, MinRadius)
	}
	assert.InDelta(t, MinRadius, o.Radius, 1e-6)
}

func TestOrbitPolarClamp(t *testing.T) {
	o := NewOrbitCamera(NewCamera(1, 1, 0.1, 100), 10, 0, 1)

	for _, d := range []float32{-1e6, 1e6, -3, 400, 0.5, -0.5} {
		o.SetDelta(0, d)
		assert.GreaterOrEqual(t, o.Polar, PolarEpsilon)
		assert.LessOrEqual(t, o.Polar, math32.Pi-PolarEpsilon)
	}

	// Dragging down far enough reaches the top pole clamp
	o.SetDelta(0, 1e6)
	assert.InDelta(t, PolarEpsilon, o.Polar, 1e-6)
	assert.Greater(t, o.Camera.Position.Y, float32(0))
}

func TestOrbitSetDeltaSensitivity(t *testing.T) {
	o := NewOrbitCamera(NewCamera(1, 1, 0.1, 100), 10, 0, 1)
	o.SetDelta(100, 20)
	assert.InDelta(t, -0.5, o.Azimuth, 1e-6)
	assert.InDelta(t, 0.9, o.Polar, 1e-6)
}

func TestOrbitRecomputeDeterministic(t *testing.T) {
	o := NewOrbitCamera(NewCamera(1, 1, 0.1, 100), 10, 0, math32.Pi/2)
	assert.True(t, o.Camera.Position.ApproxEqual(math.NewVec3(0, 0, 10), 1e-4), "got %v", o.Camera.Position)

	o.Azimuth = math32.Pi / 2
	o.RecomputePosition()
	first := o.Camera.Position
	o.RecomputePosition()
	assert.Equal(t, first, o.Camera.Position)
	assert.True(t, first.ApproxEqual(math.NewVec3(10, 0, 0), 1e-4), "got %v", first)
	assert.InDelta(t, 10, first.Length(), 1e-4)
}

func TestOrbitResizeLeavesStateAlone(t *testing.T) {
	o := NewOrbitCamera(NewCamera(1, 1, 0.1, 100), 7, 0.3, 1.2)
	before := *o
	o.Resize(1600, 800)

	assert.Equal(t, before.Radius, o.Radius)
	assert.Equal(t, before.Azimuth, o.Azimuth)
	assert.Equal(t, before.Polar, o.Polar)
	assert.InDelta(t, 2, o.Camera.AspectRatio, 1e-6)

	o.Resize(1600, 0)
	assert.InDelta(t, 2, o.Camera.AspectRatio, 1e-6)
}

func newTestCamera() *Camera {
	cam := NewCamera(math32.Pi/3, 1, 0.1, 100)
	cam.SetPosition(math.NewVec3(0, 0, 10))
	cam.LookAt(math.Vec3Zero, math.Vec3Up)
	return cam
}

func TestScreenToRayCentre(t *testing.T) {
	ray := ScreenToRay(400, 300, 800, 600, newTestCamera())
	assert.True(t, ray.Origin.ApproxEqual(math.NewVec3(0, 0, 10), 1e-5))
	assert.True(t, ray.Direction.ApproxEqual(math.NewVec3(0, 0, -1), 1e-4), "got %v", ray.Direction)

	// Left half of the screen points towards -X
	left := ScreenToRay(100, 300, 800, 600, newTestCamera())
	assert.Less(t, left.Direction.X, float32(0))
}

func TestRaycastSortsFrontToBack(t *testing.T) {
	far := NewNode("far")
	far.Mesh = CreateBox(1, 1, 1)
	far.SetPosition(math.NewVec3(0, 0, -3))

	near := NewNode("near")
	near.Mesh = CreateBox(1, 1, 0.2)
	near.Visible = false

	miss := NewNode("miss")
	miss.Mesh = CreateBox(1, 1, 1)
	miss.SetPosition(math.NewVec3(5, 0, 0))

	ray := ScreenToRay(400, 300, 800, 600, newTestCamera())
	hits := Raycast(ray, []*Node{far, miss, near})

	require.Len(t, hits, 2)
	assert.Same(t, near, hits[0].Node)
	assert.InDelta(t, 9.9, hits[0].Distance, 1e-3)
	assert.Same(t, far, hits[1].Node)
	assert.InDelta(t, 12.5, hits[1].Distance, 1e-3)
}

func TestRaycastHitsSharedEdge(t *testing.T) {
	hull := NewNode("hull")
	hull.Mesh = CreateBox(1.2, 1.2, 0.2)

	// The centre ray runs along the diagonal splitting each face.
	ray := ScreenToRay(400, 300, 800, 600, newTestCamera())
	hits := Raycast(ray, []*Node{hull})
	require.Len(t, hits, 1)
	assert.InDelta(t, 9.9, hits[0].Distance, 1e-3)

	for _, px := range [][2]float32{{401, 300}, {400, 301}, {410, 290}} {
		ray := ScreenToRay(px[0], px[1], 800, 600, newTestCamera())
		assert.Len(t, Raycast(ray, []*Node{hull}), 1, "pixel %v", px)
	}
}

func TestRaycastIgnoresLines(t *testing.T) {
	n := NewNode("grid")
	n.Mesh = CreateGrid(10, 10)
	ray := Ray{Origin: math.NewVec3(0, 5, 0), Direction: math.Vec3Down}
	assert.Empty(t, Raycast(ray, []*Node{n}))
}

func TestParseFilterMode(t *testing.T) {
	for _, mode := range []FilterMode{FilterNearest, FilterBilinear, FilterTrilinear} {
		parsed, err := ParseFilterMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
	_, err := ParseFilterMode("anisotropic")
	assert.Error(t, err)
}

func TestTextureSetFilterMarksDirty(t *testing.T) {
	tex := NewSolidTexture("white", 255, 255, 255, 255)
	tex.Dirty = false
	tex.SetFilter(FilterNearest)
	assert.False(t, tex.Dirty)
	tex.SetFilter(FilterTrilinear)
	assert.True(t, tex.Dirty)
}

func TestBuildGLTFSampler(t *testing.T) {
	tex := NewSolidTexture("sprite", 255, 0, 0, 255)
	tex.SetFilter(FilterTrilinear)

	s := NewScene()
	sprite := NewNode("sprite")
	sprite.Mesh = CreateQuad(1, 1)
	sprite.Mesh.Material = NewSpriteMaterial("sprite", tex)
	s.AddNode(sprite)

	second := NewNode("sprite2")
	second.Mesh = CreateQuad(1, 1)
	second.Mesh.Material = sprite.Mesh.Material
	s.AddNode(second)

	hull := NewNode("hull")
	hull.Mesh = CreateBox(1, 1, 1)
	hull.Visible = false
	s.AddNode(hull)

	doc, err := BuildGLTF(s)
	require.NoError(t, err)

	assert.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Samplers, 1)
	assert.Len(t, doc.Textures, 1)
	assert.Equal(t, gltf.MagLinear, doc.Samplers[0].MagFilter)
	assert.Equal(t, gltf.MinLinearMipMapLinear, doc.Samplers[0].MinFilter)

	assert.Equal(t, gltf.MinNearest, gltfSampler(FilterNearest).MinFilter)
	assert.Equal(t, gltf.MinLinear, gltfSampler(FilterBilinear).MinFilter)
}
