package scene

import (
	"sort"

	"github.com/chewxy/math32"

	"sprite-editor/math"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // unit length
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// HitResult stores the result of a ray intersection test
type HitResult struct {
	Distance float32
	Point    math.Vec3
	Normal   math.Vec3
	Node     *Node
	FaceIdx  int // triangle index in the mesh
}

// ScreenToRay converts a screen-space pointer position (pixels, origin top
// left) to a world-space ray leaving the camera.
func ScreenToRay(mouseX, mouseY, screenWidth, screenHeight float32, camera *Camera) Ray {
	ndcX := (2.0*mouseX)/screenWidth - 1.0
	ndcY := 1.0 - (2.0*mouseY)/screenHeight // flip Y

	invProj := camera.GetProjectionMatrix().Inverse()
	invView := camera.GetViewMatrix().Inverse()

	// Unproject a point on the near plane into view space, then world space.
	viewNear := math.NewVec4(ndcX, ndcY, -1, 1).MulMat(invProj)
	viewNear = viewNear.Div(viewNear.W)
	worldNear := math.NewVec4(viewNear.X, viewNear.Y, viewNear.Z, 1).MulMat(invView).ToVec3()

	return Ray{
		Origin:    camera.Position,
		Direction: worldNear.Sub(camera.Position).Normalize(),
	}
}

// Raycast tests ray against every node with a triangle mesh and returns all
// hits ordered front to back. Visibility is not considered, so invisible
// collision hulls can be picked.
func Raycast(ray Ray, nodes []*Node) []HitResult {
	var hits []HitResult
	for _, node := range nodes {
		if node.Mesh == nil || node.Mesh.DrawMode != DrawTriangles {
			continue
		}

		// Broad phase: world-space AABB
		worldMatrix := node.GetWorldMatrix()
		if node.Mesh.HasLocalAABB {
			box := transformAABB(node.Mesh.LocalAABB, worldMatrix)
			if _, hit := rayAABBIntersect(ray, box); !hit {
				continue
			}
		}

		// Narrow phase: triangle test
		if result, ok := rayMeshIntersect(ray, node, worldMatrix); ok {
			hits = append(hits, result)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// transformAABB returns the world-space box enclosing the eight transformed
// corners of box.
func transformAABB(box AABB, m math.Mat4) AABB {
	maxFloat := float32(math32.MaxFloat32)
	out := AABB{
		Min: math.Vec3{X: maxFloat, Y: maxFloat, Z: maxFloat},
		Max: math.Vec3{X: -maxFloat, Y: -maxFloat, Z: -maxFloat},
	}
	for i := 0; i < 8; i++ {
		corner := box.Min
		if i&1 != 0 {
			corner.X = box.Max.X
		}
		if i&2 != 0 {
			corner.Y = box.Max.Y
		}
		if i&4 != 0 {
			corner.Z = box.Max.Z
		}
		p := m.MulVec3(corner)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// rayAABBIntersect tests ray-AABB intersection (slab method)
func rayAABBIntersect(ray Ray, box AABB) (float32, bool) {
	invDir := math.Vec3{
		X: 1.0 / ray.Direction.X,
		Y: 1.0 / ray.Direction.Y,
		Z: 1.0 / ray.Direction.Z,
	}

	t1 := (box.Min.X - ray.Origin.X) * invDir.X
	t2 := (box.Max.X - ray.Origin.X) * invDir.X
	t3 := (box.Min.Y - ray.Origin.Y) * invDir.Y
	t4 := (box.Max.Y - ray.Origin.Y) * invDir.Y
	t5 := (box.Min.Z - ray.Origin.Z) * invDir.Z
	t6 := (box.Max.Z - ray.Origin.Z) * invDir.Z

	tmin := math32.Max(math32.Max(math32.Min(t1, t2), math32.Min(t3, t4)), math32.Min(t5, t6))
	tmax := math32.Min(math32.Min(math32.Max(t1, t2), math32.Max(t3, t4)), math32.Max(t5, t6))

	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return tmin, true
}

// rayMeshIntersect returns the nearest triangle hit on node's mesh.
func rayMeshIntersect(ray Ray, node *Node, worldMatrix math.Mat4) (HitResult, bool) {
	mesh := node.Mesh
	closest := HitResult{Distance: math32.MaxFloat32}
	found := false

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		v0 := worldMatrix.MulVec3(mesh.Vertices[mesh.Indices[i]].Position)
		v1 := worldMatrix.MulVec3(mesh.Vertices[mesh.Indices[i+1]].Position)
		v2 := worldMatrix.MulVec3(mesh.Vertices[mesh.Indices[i+2]].Position)

		t, hit := mollerTrumbore(ray, v0, v1, v2)
		if hit && t < closest.Distance {
			found = true
			closest.Distance = t
			closest.Point = ray.At(t)
			closest.Normal = v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
			closest.Node = node
			closest.FaceIdx = i / 3
		}
	}
	return closest, found
}

// mollerTrumbore implements the Möller–Trumbore ray-triangle intersection algorithm
func mollerTrumbore(ray Ray, v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 0.0000001
	// Rays along a shared edge must hit at least one of its two triangles.
	const edgeTolerance = 1e-5

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < -edgeTolerance || u > 1+edgeTolerance {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < -edgeTolerance || u+v > 1+edgeTolerance {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}
