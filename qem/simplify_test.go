package qem

import (
	"container/heap"
	"testing"

	"github.com/isomesh/isomesh/linalg"
	"github.com/isomesh/isomesh/mesh"
)

func vtx(x, y, z float64) mesh.Vertex {
	return mesh.Vertex{Coord: linalg.Vec3{X: x, Y: y, Z: z}, Normal: linalg.Vec3{X: 0, Y: 0, Z: 1}}
}

// unitCube returns the axis-aligned unit cube: 8 vertices, 12 triangles.
func unitCube() *mesh.Mesh {
	m := mesh.New()
	coords := [8][3]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	for _, c := range coords {
		m.AddVertex(vtx(c[0], c[1], c[2]))
	}
	faces := [12][3]int{
		{0, 1, 2}, {0, 2, 3}, // bottom
		{4, 6, 5}, {4, 7, 6}, // top
		{0, 5, 1}, {0, 4, 5}, // front
		{3, 2, 6}, {3, 6, 7}, // back
		{0, 3, 7}, {0, 7, 4}, // left
		{1, 5, 6}, {1, 6, 2}, // right
	}
	for _, f := range faces {
		m.AddFace(f[0], f[1], f[2])
	}
	return m
}

func tetrahedron() *mesh.Mesh {
	m := mesh.New()
	m.AddVertex(vtx(0, 0, 0))
	m.AddVertex(vtx(1, 0, 0))
	m.AddVertex(vtx(0, 1, 0))
	m.AddVertex(vtx(0, 0, 1))
	m.AddFace(0, 1, 2)
	m.AddFace(0, 1, 3)
	m.AddFace(0, 2, 3)
	m.AddFace(1, 2, 3)
	return m
}

func TestSimplifyCubeCollapse(t *testing.T) {
	m := unitCube()
	if err := Simplify(m, 0.5); err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) > 4 {
		t.Fatalf("expected at least 4 vertices removed, got %d remaining", len(m.Vertices))
	}
	if m.HasDegenerate() {
		t.Fatal("simplified mesh has a degenerate face")
	}
	for _, f := range m.Faces {
		n := m.FaceCrossProduct(f).Normalize()
		l := n.Norm()
		if l != 0 && (l < 0.999 || l > 1.001) {
			t.Fatalf("face normal length %v not unit", l)
		}
	}
}

func TestSimplifyTetrahedronIdempotentTidy(t *testing.T) {
	m := tetrahedron()
	if err := Simplify(m, 0.1); err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 3 {
		t.Fatalf("expected 3 vertices after one contraction, got %d", len(m.Vertices))
	}
	if len(m.Faces) > 1 {
		t.Fatalf("expected 0 or 1 surviving faces, got %d", len(m.Faces))
	}
	if m.HasDegenerate() {
		t.Fatal("tidy left a degenerate face")
	}

	s := &state{mesh: m, vertexVersion: make([]int, len(m.Vertices)), validFace: make([]bool, len(m.Faces))}
	for i := range s.validFace {
		s.validFace[i] = true
	}
	before := append([]mesh.Vertex(nil), m.Vertices...)
	beforeFaces := append([]mesh.Face(nil), m.Faces...)
	if err := s.tidyMesh(); err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != len(before) || len(m.Faces) != len(beforeFaces) {
		t.Fatal("second tidyMesh pass changed array lengths")
	}
}

func TestSimplifyKnownPrism(t *testing.T) {
	m := mesh.New()
	coords := [8][3]float64{
		{-2, -4, 0}, {-2, 0, 0}, {-2, 4, 0}, {0, -1, 1},
		{0, 1, 1}, {2, -4, 0}, {2, 0, 0}, {2, 4, 0},
	}
	for _, c := range coords {
		m.AddVertex(vtx(c[0], c[1], c[2]))
	}
	faces := [12][3]int{
		{0, 3, 1}, {1, 4, 2}, {1, 3, 4}, {3, 6, 4},
		{3, 5, 6}, {4, 6, 7}, {0, 5, 3}, {2, 4, 7},
		{0, 1, 7}, {1, 2, 7}, {0, 6, 5}, {0, 7, 6},
	}
	for _, f := range faces {
		m.AddFace(f[0], f[1], f[2])
	}

	if err := Simplify(m, 0.3); err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 5 {
		t.Fatalf("expected 8-3=5 vertices after simplification, got %d", len(m.Vertices))
	}
	for _, f := range m.Faces {
		for _, idx := range f.Indices() {
			if idx < 0 || idx >= len(m.Vertices) {
				t.Fatalf("face references out-of-range vertex %d", idx)
			}
		}
	}
}

func TestSimplifyInvalidRatio(t *testing.T) {
	m := tetrahedron()
	if err := Simplify(m, 0); err == nil {
		t.Fatal("expected error for ratio 0")
	}
	if err := Simplify(m, 1.5); err == nil {
		t.Fatal("expected error for ratio > 1")
	}
}

func TestSimplifyMonotoneErrorPops(t *testing.T) {
	m := unitCube()
	s := newState(m)
	heap.Init(&s.pairs)
	last := -1.0
	for s.pairs.Len() > 0 {
		p := heap.Pop(&s.pairs).(*pair)
		if !s.pairValid(p) {
			continue
		}
		if p.err < last {
			t.Fatalf("popped error %v decreased from previous %v", p.err, last)
		}
		last = p.err
		s.contractPair(p)
	}
}
