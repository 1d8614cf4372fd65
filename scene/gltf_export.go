package scene

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfSampler maps a FilterMode onto glTF sampler filters.
func gltfSampler(mode FilterMode) *gltf.Sampler {
	s := &gltf.Sampler{
		WrapS: gltf.WrapClampToEdge,
		WrapT: gltf.WrapClampToEdge,
	}
	switch mode {
	case FilterNearest:
		s.MagFilter = gltf.MagNearest
		s.MinFilter = gltf.MinNearest
	case FilterBilinear:
		s.MagFilter = gltf.MagLinear
		s.MinFilter = gltf.MinLinear
	case FilterTrilinear:
		s.MagFilter = gltf.MagLinear
		s.MinFilter = gltf.MinLinearMipMapLinear
	}
	return s
}

func float64Ptr(v float64) *float64 { return &v }

// BuildGLTF converts every visible triangle mesh in s into a glTF document.
// Geometry is baked into world space so each exported node carries an
// identity transform. Textured materials share one image, texture and
// sampler per source Texture.
func BuildGLTF(s *Scene) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	textures := make(map[*Texture]int)

	textureIndex := func(tex *Texture) (int, error) {
		if idx, ok := textures[tex]; ok {
			return idx, nil
		}
		img := &image.RGBA{
			Pix:    tex.Pixels,
			Stride: tex.Width * 4,
			Rect:   image.Rect(0, 0, tex.Width, tex.Height),
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return 0, fmt.Errorf("encode texture %q: %w", tex.Name, err)
		}
		imgIdx, err := modeler.WriteImage(doc, tex.Name, "image/png", &buf)
		if err != nil {
			return 0, fmt.Errorf("write image %q: %w", tex.Name, err)
		}
		doc.Samplers = append(doc.Samplers, gltfSampler(tex.Filter))
		doc.Textures = append(doc.Textures, &gltf.Texture{
			Sampler: gltf.Index(len(doc.Samplers) - 1),
			Source:  gltf.Index(imgIdx),
		})
		idx := len(doc.Textures) - 1
		textures[tex] = idx
		return idx, nil
	}

	for _, node := range s.GetVisibleNodes() {
		mesh := node.Mesh
		if mesh.DrawMode != DrawTriangles || len(mesh.Indices) == 0 {
			continue
		}

		world := node.GetWorldMatrix()
		positions := make([][3]float32, len(mesh.Vertices))
		normals := make([][3]float32, len(mesh.Vertices))
		uvs := make([][2]float32, len(mesh.Vertices))
		for i, v := range mesh.Vertices {
			p := world.MulVec3(v.Position)
			n := world.MulDir(v.Normal).Normalize()
			positions[i] = [3]float32{p.X, p.Y, p.Z}
			normals[i] = [3]float32{n.X, n.Y, n.Z}
			uvs[i] = [2]float32{v.UV.X, v.UV.Y}
		}

		mat := mesh.Material
		if mat == nil {
			mat = DefaultMaterial()
		}
		gm := &gltf.Material{
			Name:        mat.Name,
			DoubleSided: true,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{float64(mat.Albedo.R), float64(mat.Albedo.G), float64(mat.Albedo.B), float64(mat.Albedo.A)},
				MetallicFactor:  float64Ptr(0),
				RoughnessFactor: float64Ptr(1),
			},
		}
		if tex := mat.AlbedoTexture; tex != nil && len(tex.Pixels) > 0 {
			texIdx, err := textureIndex(tex)
			if err != nil {
				return nil, err
			}
			gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: texIdx}
			if mat.AlphaCutoff > 0 {
				gm.AlphaMode = gltf.AlphaMask
				gm.AlphaCutoff = float64Ptr(float64(mat.AlphaCutoff))
			}
		}
		doc.Materials = append(doc.Materials, gm)

		prim := &gltf.Primitive{
			Indices: gltf.Index(modeler.WriteIndices(doc, mesh.Indices)),
			Attributes: map[string]int{
				"POSITION":   modeler.WritePosition(doc, positions),
				"NORMAL":     modeler.WriteNormal(doc, normals),
				"TEXCOORD_0": modeler.WriteTextureCoord(doc, uvs),
			},
			Material: gltf.Index(len(doc.Materials) - 1),
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: mesh.Name, Primitives: []*gltf.Primitive{prim}})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: node.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc, nil
}

// ExportGLTF writes s to path. A .glb extension produces a binary file.
func ExportGLTF(path string, s *Scene) error {
	doc, err := BuildGLTF(s)
	if err != nil {
		return err
	}
	save := gltf.Save
	if ext := filepath.Ext(path); strings.EqualFold(ext, ".glb") {
		save = gltf.SaveBinary
	} else {
		// Text glTF keeps its geometry in a sidecar .bin
		base := strings.TrimSuffix(filepath.Base(path), ext)
		for i, buf := range doc.Buffers {
			if buf.URI == "" {
				buf.URI = fmt.Sprintf("%s%d.bin", base, i)
			}
		}
	}
	if err := save(doc, path); err != nil {
		return fmt.Errorf("gltf save %q: %w", path, err)
	}
	return nil
}
