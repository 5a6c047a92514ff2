// Package gltfio exports a mesh to binary glTF (GLB), the teacher's own
// native interchange format, alongside the spec-mandated OBJ writer.
// Grounded on VoxelsPlace-VOPL/go/utils/vopl2glb.go.
package gltfio

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/isomesh/isomesh/mesh"
)

// Write exports m as a binary glTF file at outPath, with per-vertex
// positions and normals (this domain has no vertex color; the teacher's
// COLOR_0 accessor is dropped rather than faked).
func Write(outPath string, m *mesh.Mesh) error {
	doc, err := Build(m)
	if err != nil {
		return err
	}
	return gltf.SaveBinary(doc, outPath)
}

// Build assembles a gltf.Document from m without writing it to disk.
func Build(m *mesh.Mesh) (*gltf.Document, error) {
	positions := make([][3]float32, len(m.Vertices))
	normals := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = [3]float32{float32(v.Coord.X), float32(v.Coord.Y), float32(v.Coord.Z)}
		normals[i] = [3]float32{float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z)}
	}

	indices := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		idx := f.Indices()
		indices = append(indices, uint32(idx[0]), uint32(idx[1]), uint32(idx[2]))
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "isomesh"

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: posAccessor,
			gltf.NORMAL:   normalAccessor,
		},
		Indices: gltf.Index(indicesAccessor),
	}

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{0.8, 0.8, 0.8, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	doc.Materials = []*gltf.Material{{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}
	prim.Material = gltf.Index(0)

	doc.Meshes = []*gltf.Mesh{{Name: "isosurface", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	return doc, nil
}
