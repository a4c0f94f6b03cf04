package model

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/gltfscene"
)

// fakeProgram records attribute lookups and hands out deterministic
// locations without a GL context.
type fakeProgram struct {
	attribQueries []string
	locs          map[string]int32
	next          int32
}

func newFakeProgram() *fakeProgram {
	return &fakeProgram{locs: make(map[string]int32)}
}

func (p *fakeProgram) A(name string) int32 {
	p.attribQueries = append(p.attribQueries, name)
	if loc, ok := p.locs[name]; ok {
		return loc
	}
	loc := p.next
	p.next++
	p.locs[name] = loc
	return loc
}

func (p *fakeProgram) U(name string) int32 { return 0 }

// fakeTextureReader counts invocations per path.
type fakeTextureReader struct {
	calls   map[string]int
	handles map[string]uint32
	next    uint32
}

func newFakeTextureReader() *fakeTextureReader {
	return &fakeTextureReader{
		calls:   make(map[string]int),
		handles: make(map[string]uint32),
		next:    1,
	}
}

func (r *fakeTextureReader) read(path string) uint32 {
	r.calls[path]++
	if h, ok := r.handles[path]; ok {
		return h
	}
	h := r.next
	r.next++
	r.handles[path] = h
	return h
}

func triRecord(material int, faces ...[]uint32) *gltfscene.MeshRecord {
	return &gltfscene.MeshRecord{
		Kind:      gltfscene.KindTriangle,
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		Faces:     faces,
		Material:  material,
	}
}

func newTestModel(t *testing.T) (*Model, *fakeProgram, *fakeTextureReader) {
	t.Helper()
	sp := newFakeProgram()
	tr := newFakeTextureReader()
	return New(sp, WithTextureReader(tr.read)), sp, tr
}

func TestLoadSceneMeshCount(t *testing.T) {
	recs := []*gltfscene.MeshRecord{
		triRecord(-1, []uint32{0, 1, 2}),
		triRecord(-1, []uint32{0, 1, 2}),
		triRecord(-1, []uint32{0, 1, 2}),
	}
	scene := &gltfscene.Scene{
		Meshes: recs,
		Root: &gltfscene.Node{
			Name: "scene",
			Children: []*gltfscene.Node{
				{Name: "a", Meshes: []int{0, 1}},
				{Name: "b", Children: []*gltfscene.Node{
					// Record 1 referenced again by a deeper node.
					{Name: "b/inner", Meshes: []int{1, 2}},
				}},
			},
		},
	}

	m, _, _ := newTestModel(t)
	m.LoadScene(scene)

	// Count equals the sum of mesh references across visited nodes.
	if m.MeshCount() != 4 {
		t.Errorf("expected 4 meshes, got %d", m.MeshCount())
	}
}

func TestLoadSceneTraversalOrder(t *testing.T) {
	recs := []*gltfscene.MeshRecord{
		triRecord(-1, []uint32{0, 1, 2}),
		triRecord(-1, []uint32{1, 2, 3}),
		triRecord(-1, []uint32{0, 2, 3}),
	}
	// Pre-order: parent's meshes before children, siblings in given order.
	scene := &gltfscene.Scene{
		Meshes: recs,
		Root: &gltfscene.Node{
			Meshes: []int{2},
			Children: []*gltfscene.Node{
				{Meshes: []int{0}},
				{Meshes: []int{1}},
			},
		},
	}

	m, _, _ := newTestModel(t)
	m.LoadScene(scene)

	if m.MeshCount() != 3 {
		t.Fatalf("expected 3 meshes, got %d", m.MeshCount())
	}
	want := [][]uint32{{0, 2, 3}, {0, 1, 2}, {1, 2, 3}}
	for i, mesh := range m.meshes {
		if !reflect.DeepEqual(mesh.Indices(), want[i]) {
			t.Errorf("mesh %d: expected indices %v, got %v", i, want[i], mesh.Indices())
		}
	}
}

func TestProcessMeshFlattensFaces(t *testing.T) {
	rec := triRecord(-1, []uint32{0, 1, 2}, []uint32{2, 3, 0})
	scene := &gltfscene.Scene{
		Meshes: []*gltfscene.MeshRecord{rec},
		Root:   &gltfscene.Node{Meshes: []int{0}},
	}

	m, _, _ := newTestModel(t)
	m.LoadScene(scene)

	want := []uint32{0, 1, 2, 2, 3, 0}
	if got := m.meshes[0].Indices(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected flattened indices %v, got %v", want, got)
	}
}

func TestTexCoordAttribLookups(t *testing.T) {
	rec := triRecord(-1, []uint32{0, 1, 2})
	rec.TexCoords = [][]float32{
		{0, 0, 1, 0, 0, 1, 1, 1},
		{0, 0, 0.5, 0, 0, 0.5, 0.5, 0.5},
		{0, 0, 0.25, 0, 0, 0.25, 0.25, 0.25},
	}
	scene := &gltfscene.Scene{
		Meshes: []*gltfscene.MeshRecord{rec},
		Root:   &gltfscene.Node{Meshes: []int{0}},
	}

	m, sp, _ := newTestModel(t)
	m.LoadScene(scene)

	want := []string{"texCoord0", "texCoord1", "texCoord2"}
	if !reflect.DeepEqual(sp.attribQueries, want) {
		t.Errorf("expected attribute queries %v, got %v", want, sp.attribQueries)
	}

	attribs := m.meshes[0].TexCoordAttribs()
	if len(attribs) != 3 {
		t.Fatalf("expected 3 recorded locations, got %d", len(attribs))
	}
	for i, loc := range attribs {
		if loc != sp.locs[fmt.Sprintf("texCoord%d", i)] {
			t.Errorf("channel %d: location %d does not match lookup", i, loc)
		}
	}
}

func TestTextureCacheHit(t *testing.T) {
	scene := &gltfscene.Scene{
		Meshes: []*gltfscene.MeshRecord{
			triRecord(0, []uint32{0, 1, 2}),
			triRecord(0, []uint32{0, 1, 2}),
		},
		Materials: []gltfscene.Material{
			{Name: "wood", DiffusePath: "wood.png"},
		},
		Root: &gltfscene.Node{Meshes: []int{0, 1}},
	}

	m, _, tr := newTestModel(t)
	m.LoadScene(scene)

	if tr.calls["wood.png"] != 1 {
		t.Errorf("expected texture reader invoked once, got %d", tr.calls["wood.png"])
	}
	h0 := m.meshes[0].Textures()
	h1 := m.meshes[1].Textures()
	if len(h0) != 1 || len(h1) != 1 {
		t.Fatalf("expected one texture per mesh, got %d and %d", len(h0), len(h1))
	}
	if h0[0] != h1[0] {
		t.Errorf("expected shared handle, got %d and %d", h0[0], h1[0])
	}
}

func TestTextureReadFailure(t *testing.T) {
	scene := &gltfscene.Scene{
		Meshes: []*gltfscene.MeshRecord{
			triRecord(0, []uint32{0, 1, 2}),
			triRecord(1, []uint32{0, 1, 2}),
		},
		Materials: []gltfscene.Material{
			{Name: "broken", DiffusePath: "missing.png"},
			{Name: "ok", DiffusePath: "ok.png"},
		},
		Root: &gltfscene.Node{Meshes: []int{0, 1}},
	}

	calls := 0
	m := New(newFakeProgram(), WithTextureReader(func(path string) uint32 {
		calls++
		if path == "missing.png" {
			return 0
		}
		return 7
	}))
	m.LoadScene(scene)

	// The failed texture does not abort the rest of the load.
	if m.MeshCount() != 2 {
		t.Fatalf("expected 2 meshes, got %d", m.MeshCount())
	}
	if got := m.meshes[0].Textures(); len(got) != 1 || got[0] != 0 {
		t.Errorf("expected sentinel handle 0 for failed texture, got %v", got)
	}
	if got := m.meshes[1].Textures(); len(got) != 1 || got[0] != 7 {
		t.Errorf("expected handle 7 for second texture, got %v", got)
	}
	if calls != 2 {
		t.Errorf("expected 2 reader invocations, got %d", calls)
	}
}

func TestMaterialWithoutDiffuse(t *testing.T) {
	scene := &gltfscene.Scene{
		Meshes: []*gltfscene.MeshRecord{
			triRecord(0, []uint32{0, 1, 2}),
		},
		Materials: []gltfscene.Material{
			{Name: "flat"},
		},
		Root: &gltfscene.Node{Meshes: []int{0}},
	}

	m, _, tr := newTestModel(t)
	m.LoadScene(scene)

	if len(tr.calls) != 0 {
		t.Errorf("expected no texture reader invocations, got %v", tr.calls)
	}
	if got := m.meshes[0].Textures(); len(got) != 0 {
		t.Errorf("expected zero texture handles, got %v", got)
	}
}

func TestLoadSceneNil(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.LoadScene(nil)

	if m.MeshCount() != 0 {
		t.Errorf("expected empty model, got %d meshes", m.MeshCount())
	}
}

func TestLoadSceneEmpty(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.LoadScene(&gltfscene.Scene{Root: &gltfscene.Node{}})

	if m.MeshCount() != 0 {
		t.Errorf("expected empty model, got %d meshes", m.MeshCount())
	}
}

func TestLoadRejectedFile(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Load("/nonexistent/not-a-model.gltf")

	if m.MeshCount() != 0 {
		t.Errorf("expected empty model after failed load, got %d meshes", m.MeshCount())
	}
}

func TestNodeReferencingMissingMesh(t *testing.T) {
	scene := &gltfscene.Scene{
		Meshes: []*gltfscene.MeshRecord{
			triRecord(-1, []uint32{0, 1, 2}),
		},
		Root: &gltfscene.Node{Meshes: []int{0, 5, -1}},
	}

	m, _, _ := newTestModel(t)
	m.LoadScene(scene)

	if m.MeshCount() != 1 {
		t.Errorf("expected out-of-range references skipped, got %d meshes", m.MeshCount())
	}
}

func TestNilMeshRecordSkipped(t *testing.T) {
	scene := &gltfscene.Scene{
		Meshes: []*gltfscene.MeshRecord{
			nil,
			triRecord(-1, []uint32{0, 1, 2}),
		},
		Root: &gltfscene.Node{Meshes: []int{0, 1}},
	}

	m, _, _ := newTestModel(t)
	m.LoadScene(scene)

	if m.MeshCount() != 1 {
		t.Errorf("expected nil record skipped, got %d meshes", m.MeshCount())
	}
}

func TestDrawEmptyModel(t *testing.T) {
	// No GL context here: an empty model must not touch GL at all.
	m, _, _ := newTestModel(t)
	m.Draw(mgl32.Ident4())
}
