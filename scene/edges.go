package scene

import (
	"github.com/chewxy/math32"

	"sprite-editor/core"
	"sprite-editor/math"
)

type edgeKey struct {
	a, b [3]int32
}

type edgeInfo struct {
	a, b   math.Vec3
	normal math.Vec3
	faces  int
	keep   bool
}

func quantize(p math.Vec3) [3]int32 {
	const precision = 1e4
	return [3]int32{
		int32(math32.Round(p.X * precision)),
		int32(math32.Round(p.Y * precision)),
		int32(math32.Round(p.Z * precision)),
	}
}

func lessKey(a, b [3]int32) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// CreateEdges derives a line mesh from the hard edges of a triangle mesh:
// boundary edges plus edges whose two faces meet at more than thresholdDeg.
// Vertices are matched by position, so per-face duplicated corners still
// share edges. Edges between coplanar faces (a quad's diagonal) are dropped.
func CreateEdges(src *Mesh, thresholdDeg float32, color core.Color) *Mesh {
	cosThreshold := math32.Cos(thresholdDeg * math32.Pi / 180)

	edges := make(map[edgeKey]*edgeInfo)
	var order []edgeKey

	for i := 0; i+2 < len(src.Indices); i += 3 {
		p := [3]math.Vec3{
			src.Vertices[src.Indices[i]].Position,
			src.Vertices[src.Indices[i+1]].Position,
			src.Vertices[src.Indices[i+2]].Position,
		}
		normal := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
		if normal.LengthSqr() == 0 {
			continue
		}
		normal = normal.Normalize()

		for j := 0; j < 3; j++ {
			a, b := p[j], p[(j+1)%3]
			ka, kb := quantize(a), quantize(b)
			if ka == kb {
				continue
			}
			if lessKey(kb, ka) {
				ka, kb = kb, ka
			}
			key := edgeKey{ka, kb}

			info, ok := edges[key]
			if !ok {
				edges[key] = &edgeInfo{a: a, b: b, normal: normal, faces: 1}
				order = append(order, key)
				continue
			}
			info.faces++
			if info.normal.Dot(normal) <= cosThreshold {
				info.keep = true
			}
		}
	}

	var vertices []core.Vertex
	var indices []uint32
	for _, key := range order {
		info := edges[key]
		if info.faces > 1 && !info.keep {
			continue
		}
		base := uint32(len(vertices))
		vertices = append(vertices,
			core.Vertex{Position: info.a, Normal: info.normal, Color: color},
			core.Vertex{Position: info.b, Normal: info.normal, Color: color},
		)
		indices = append(indices, base, base+1)
	}

	m := CreateMeshFromData(src.Name+"_edges", vertices, indices)
	m.DrawMode = DrawLines
	m.Material = NewMaterial("Outline", color)
	return m
}
