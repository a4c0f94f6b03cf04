// Package gltfscene imports glTF documents into a flat, renderer-friendly
// scene representation: a node tree referencing a flat array of mesh
// records, plus a flat array of materials.
package gltfscene

// PostProcess is a bitmask of steps applied to mesh data during import.
type PostProcess uint32

const (
	// CalcTangentSpace computes per-vertex tangents from positions and the
	// first UV channel. Skipped for records without normals or UVs.
	CalcTangentSpace PostProcess = 1 << iota
	// Triangulate converts triangle strips and fans into independent
	// triangle faces.
	Triangulate
	// JoinIdenticalVertices merges exact-duplicate vertices and remaps
	// face indices accordingly.
	JoinIdenticalVertices
	// SortByPType orders a mesh's primitives point < line < triangle
	// before record indices are assigned.
	SortByPType
)

// PrimitiveKind classifies a mesh record by its face arity.
type PrimitiveKind int

const (
	KindPoint PrimitiveKind = iota
	KindLine
	KindTriangle
)

// Scene is the imported asset: a node tree over flat mesh and material
// arrays. All buffers are owned by the Scene; nothing references the
// source document after import.
type Scene struct {
	Meshes    []*MeshRecord
	Materials []Material
	Root      *Node
}

// Node is one element of the scene tree. Meshes holds indices into
// Scene.Meshes. Children keep the document's order.
type Node struct {
	Name     string
	Meshes   []int
	Children []*Node
}

// MeshRecord holds the raw geometry of a single primitive: tightly packed
// float buffers plus per-face index lists. Positions and Normals are
// 3 floats per vertex, each TexCoords channel 2 floats per vertex.
type MeshRecord struct {
	Name      string
	Kind      PrimitiveKind
	Positions []float32
	Normals   []float32
	Tangents  []float32
	TexCoords [][]float32
	Faces     [][]uint32

	// Material indexes Scene.Materials, -1 when the primitive has none.
	Material int
}

// VertexCount returns the number of vertices in the record.
func (r *MeshRecord) VertexCount() int {
	return len(r.Positions) / 3
}

// NumUVChannels returns the number of texture coordinate channels.
func (r *MeshRecord) NumUVChannels() int {
	return len(r.TexCoords)
}

// Material describes a scene material. DiffusePath is the base color
// texture image URI exactly as the document states it, "" when the
// material has no diffuse texture or the image is embedded.
type Material struct {
	Name        string
	DiffusePath string
}
