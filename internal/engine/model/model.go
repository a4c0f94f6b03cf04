// Package model loads glTF assets into drawable meshes and renders them
// with client-side vertex arrays.
package model

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/texture"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/gltfscene"
)

// ShaderProgram resolves named attributes and uniforms in a linked
// program. *shader.Program satisfies it.
type ShaderProgram interface {
	A(name string) int32
	U(name string) int32
}

// Mesh is one drawable extracted from the imported scene. It keeps a
// reference to the importer's raw buffers; the record stays alive through
// the Scene the owning Model holds.
type Mesh struct {
	record *gltfscene.MeshRecord

	// Indices is the flattened face index sequence, face-then-index order.
	indices []uint32

	// texCoordAttribs holds the "texCoord{i}" attribute location per UV
	// channel, in channel order.
	texCoordAttribs []int32

	// textures holds resolved GL handles, unit order. 0 is the "no
	// texture" sentinel from a failed decode.
	textures []uint32
}

// Indices returns the flattened face index sequence.
func (m *Mesh) Indices() []uint32 { return m.indices }

// TexCoordAttribs returns the recorded texture coordinate attribute
// locations, in channel order.
func (m *Mesh) TexCoordAttribs() []int32 { return m.texCoordAttribs }

// Textures returns the resolved texture handles, in unit order.
func (m *Mesh) Textures() []uint32 { return m.textures }

// Model owns the meshes extracted from one loaded scene plus the texture
// cache keyed by path. Load once, Draw every frame; nothing is mutated
// after Load returns.
type Model struct {
	sp     ShaderProgram
	scene  *gltfscene.Scene
	meshes []Mesh

	// loadedTextures maps a texture path to its uploaded handle so a path
	// shared between meshes is uploaded exactly once. Entries are never
	// evicted; the GL context teardown reclaims the textures.
	loadedTextures map[string]uint32

	readTexture func(path string) uint32
	flags       gltfscene.PostProcess
}

// Option configures a Model.
type Option func(*Model)

// WithTextureReader overrides how a texture path becomes a GL handle.
// The reader must return 0 on failure.
func WithTextureReader(fn func(path string) uint32) Option {
	return func(m *Model) {
		m.readTexture = fn
	}
}

// WithPostProcess overrides the import post-processing steps.
func WithPostProcess(flags gltfscene.PostProcess) Option {
	return func(m *Model) {
		m.flags = flags
	}
}

// New creates an empty Model bound to a shader program.
func New(sp ShaderProgram, opts ...Option) *Model {
	m := &Model{
		sp:             sp,
		loadedTextures: make(map[string]uint32),
		readTexture:    texture.Read,
		flags: gltfscene.CalcTangentSpace | gltfscene.Triangulate |
			gltfscene.JoinIdenticalVertices | gltfscene.SortByPType,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load imports the model file and extracts every mesh reachable from the
// scene root. A failed import leaves the Model empty and Draw a no-op;
// there is no retry.
func (m *Model) Load(path string) {
	scene, err := gltfscene.ImportFile(path, m.flags)
	if err != nil {
		logger.Error("loading model", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("model loaded", zap.String("path", path))
	m.LoadScene(scene)
}

// LoadScene extracts meshes from an already-imported scene with a
// pre-order depth-first walk: each node's own meshes first, then its
// children in the scene's order.
func (m *Model) LoadScene(scene *gltfscene.Scene) {
	if scene == nil {
		logger.Error("no scene to load")
		return
	}
	if len(scene.Meshes) == 0 {
		logger.Warn("no meshes found in the model")
		return
	}

	m.scene = scene
	m.processNode(scene.Root)

	logger.Info("meshes processed", zap.Int("count", len(m.meshes)))
}

// MeshCount reports how many meshes were extracted. Zero after Load means
// the load failed.
func (m *Model) MeshCount() int {
	return len(m.meshes)
}

func (m *Model) processNode(node *gltfscene.Node) {
	if node == nil {
		logger.Warn("null node encountered")
		return
	}

	for _, idx := range node.Meshes {
		if idx < 0 || idx >= len(m.scene.Meshes) {
			logger.Warn("node references missing mesh",
				zap.String("node", node.Name), zap.Int("mesh", idx))
			continue
		}
		m.processMesh(m.scene.Meshes[idx])
	}

	for _, child := range node.Children {
		m.processNode(child)
	}
}

// processMesh flattens a record's faces, resolves its texcoord attribute
// locations, and resolves its diffuse texture through the cache.
func (m *Model) processMesh(rec *gltfscene.MeshRecord) {
	if rec == nil {
		logger.Warn("null mesh encountered")
		return
	}

	mesh := Mesh{record: rec}

	total := 0
	for _, face := range rec.Faces {
		total += len(face)
	}
	mesh.indices = make([]uint32, 0, total)
	for _, face := range rec.Faces {
		mesh.indices = append(mesh.indices, face...)
	}

	for i := 0; i < rec.NumUVChannels(); i++ {
		mesh.texCoordAttribs = append(mesh.texCoordAttribs, m.sp.A(fmt.Sprintf("texCoord%d", i)))
	}

	if rec.Material >= 0 && rec.Material < len(m.scene.Materials) {
		if path := m.scene.Materials[rec.Material].DiffusePath; path != "" {
			tex, ok := m.loadedTextures[path]
			if !ok {
				tex = m.readTexture(path)
				m.loadedTextures[path] = tex
			}
			mesh.textures = append(mesh.textures, tex)
		}
	}

	m.meshes = append(m.meshes, mesh)
}
