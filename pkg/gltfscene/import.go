package gltfscene

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ImportFile opens a glTF/GLB document and imports it with the given
// post-processing steps.
func ImportFile(path string, flags PostProcess) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return ImportDocument(doc, flags)
}

// ImportDocument builds a Scene from an already-parsed document. Mesh
// records are created per primitive, in mesh-then-primitive order, so a
// node referencing glTF mesh k references all of k's records.
func ImportDocument(doc *gltf.Document, flags PostProcess) (*Scene, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}

	s := &Scene{}

	for _, mat := range doc.Materials {
		s.Materials = append(s.Materials, Material{
			Name:        mat.Name,
			DiffusePath: diffusePath(doc, mat),
		})
	}

	// meshRecords[i] lists the record indices produced by glTF mesh i.
	meshRecords := make([][]int, len(doc.Meshes))
	for i, mesh := range doc.Meshes {
		records := make([]*MeshRecord, 0, len(mesh.Primitives))
		for j, prim := range mesh.Primitives {
			rec, err := readPrimitive(doc, mesh, prim, j, flags)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d primitive %d", i, j)
			}
			records = append(records, rec)
		}

		if flags&SortByPType != 0 {
			sort.SliceStable(records, func(a, b int) bool {
				return records[a].Kind < records[b].Kind
			})
		}

		for _, rec := range records {
			meshRecords[i] = append(meshRecords[i], len(s.Meshes))
			s.Meshes = append(s.Meshes, rec)
		}
	}

	s.Root = buildTree(doc, meshRecords)
	return s, nil
}

// buildTree assembles the node tree for the document's default scene. A
// synthetic root gathers the scene's root nodes so traversal always
// starts from a single node.
func buildTree(doc *gltf.Document, meshRecords [][]int) *Node {
	root := &Node{Name: "scene"}

	var rootRefs []uint32
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			idx = int(*doc.Scene)
		}
		if doc.Scenes[idx].Name != "" {
			root.Name = doc.Scenes[idx].Name
		}
		rootRefs = doc.Scenes[idx].Nodes
	} else {
		// No scene list: nodes that never appear as a child are roots.
		isChild := make([]bool, len(doc.Nodes))
		for _, n := range doc.Nodes {
			for _, c := range n.Children {
				if int(c) < len(isChild) {
					isChild[c] = true
				}
			}
		}
		for i := range doc.Nodes {
			if !isChild[i] {
				rootRefs = append(rootRefs, uint32(i))
			}
		}
	}

	for _, ref := range rootRefs {
		if child := buildNode(doc, ref, meshRecords); child != nil {
			root.Children = append(root.Children, child)
		}
	}
	return root
}

func buildNode(doc *gltf.Document, idx uint32, meshRecords [][]int) *Node {
	if int(idx) >= len(doc.Nodes) {
		return nil
	}
	src := doc.Nodes[idx]
	node := &Node{Name: src.Name}

	if src.Mesh != nil && int(*src.Mesh) < len(meshRecords) {
		node.Meshes = append(node.Meshes, meshRecords[*src.Mesh]...)
	}
	for _, c := range src.Children {
		if child := buildNode(doc, c, meshRecords); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// diffusePath resolves a material's base color texture to its image URI.
func diffusePath(doc *gltf.Document, mat *gltf.Material) string {
	if mat == nil || mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture == nil {
		return ""
	}
	texIdx := int(mat.PBRMetallicRoughness.BaseColorTexture.Index)
	if texIdx >= len(doc.Textures) {
		return ""
	}
	tex := doc.Textures[texIdx]
	if tex.Source == nil || int(*tex.Source) >= len(doc.Images) {
		return ""
	}
	return doc.Images[*tex.Source].URI
}

// readPrimitive extracts one primitive into an owned MeshRecord.
func readPrimitive(doc *gltf.Document, mesh *gltf.Mesh, prim *gltf.Primitive, idx int, flags PostProcess) (*MeshRecord, error) {
	rec := &MeshRecord{
		Name:     fmt.Sprintf("%s/%d", mesh.Name, idx),
		Material: -1,
	}
	if prim.Material != nil {
		rec.Material = int(*prim.Material)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, errors.Wrap(err, "reading positions")
	}
	rec.Positions = flatten3(positions)

	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
		if err != nil {
			return nil, errors.Wrap(err, "reading normals")
		}
		rec.Normals = flatten3(normals)
	}

	for ch := 0; ; ch++ {
		accIdx, ok := prim.Attributes[fmt.Sprintf("TEXCOORD_%d", ch)]
		if !ok {
			break
		}
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[accIdx], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "reading UV channel %d", ch)
		}
		rec.TexCoords = append(rec.TexCoords, flatten2(uvs))
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, errors.Wrap(err, "reading indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	rec.Kind, rec.Faces, err = buildFaces(prim.Mode, indices, flags)
	if err != nil {
		return nil, err
	}

	// Every face index must address a real vertex.
	vertexCount := uint32(rec.VertexCount())
	for _, face := range rec.Faces {
		for _, fi := range face {
			if fi >= vertexCount {
				return nil, errors.Errorf("index %d out of range (%d vertices)", fi, vertexCount)
			}
		}
	}

	if flags&JoinIdenticalVertices != 0 {
		joinIdenticalVertices(rec)
	}
	if flags&CalcTangentSpace != 0 {
		calcTangents(rec)
	}
	return rec, nil
}

func flatten3(v [][3]float32) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, e := range v {
		out = append(out, e[0], e[1], e[2])
	}
	return out
}

func flatten2(v [][2]float32) []float32 {
	out := make([]float32, 0, len(v)*2)
	for _, e := range v {
		out = append(out, e[0], e[1])
	}
	return out
}
