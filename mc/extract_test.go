package mc

import (
	"math"
	"testing"

	"github.com/isomesh/isomesh/voxel"
)

func approxPoint(a [3]float64, x, y, z float64) bool {
	const eps = 1e-9
	return math.Abs(a[0]-x) < eps && math.Abs(a[1]-y) < eps && math.Abs(a[2]-z) < eps
}

func TestExtractSingleCornerCube(t *testing.T) {
	g := voxel.NewGrid(2, 2, 2)
	g.Set(0, 0, 0, 1)
	m, err := Extract(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) != 1 {
		t.Fatalf("expected exactly one triangle, got %d", len(m.Faces))
	}
	want := [][3]float64{{0.5, 0, 0}, {0, 0.5, 0}, {0, 0, 0.5}}
	f := m.Faces[0]
	for _, idx := range f.Indices() {
		c := m.Vertices[idx].Coord
		found := false
		for _, w := range want {
			if approxPoint([3]float64{c.X, c.Y, c.Z}, w[0], w[1], w[2]) {
				found = true
			}
		}
		if !found {
			t.Fatalf("unexpected vertex coordinate %+v", c)
		}
	}
}

func TestExtractTwoCubeSharing(t *testing.T) {
	g := voxel.NewGrid(3, 2, 2)
	g.Set(0, 0, 0, 1)
	g.Set(1, 0, 0, 1)
	m, err := Extract(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	seen := 0
	for _, v := range m.Vertices {
		if approxPoint([3]float64{v.Coord.X, v.Coord.Y, v.Coord.Z}, 1, 0, 0.5) {
			seen++
		}
	}
	if seen > 1 {
		t.Fatalf("shared edge vertex (1,0,0.5) duplicated %d times", seen)
	}
}

func TestExtractEmptyField(t *testing.T) {
	g := voxel.NewGrid(4, 4, 4)
	m, err := Extract(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) != 0 || len(m.Vertices) != 0 {
		t.Fatalf("expected empty mesh, got %d vertices, %d faces", len(m.Vertices), len(m.Faces))
	}
}

func TestExtractInvalidShape(t *testing.T) {
	g := voxel.NewGrid(1, 4, 4)
	if _, err := Extract(g, 0.5); err == nil {
		t.Fatal("expected error for grid dimension below 2")
	}
}

func TestExtractNormalsUnitLength(t *testing.T) {
	g := voxel.Sphere(12, 12, 12, 4)
	m, err := Extract(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range m.Vertices {
		n := math.Sqrt(v.Normal.X*v.Normal.X + v.Normal.Y*v.Normal.Y + v.Normal.Z*v.Normal.Z)
		if math.Abs(n-1) > 1e-4 && n != 0 {
			t.Fatalf("normal length %v not unit", n)
		}
	}
}

func TestExtractSphereOrientation(t *testing.T) {
	g := voxel.Sphere(16, 16, 16, 6)
	m, err := Extract(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) == 0 {
		t.Fatal("expected a non-empty closed surface")
	}
	for _, f := range m.Faces {
		cross := m.FaceCrossProduct(f)
		centroid := m.Vertices[f.A].Coord.Add(m.Vertices[f.B].Coord).Add(m.Vertices[f.C].Coord).Scale(1.0 / 3)
		grad := g.Gradient(int(centroid.X+0.5), int(centroid.Y+0.5), int(centroid.Z+0.5))
		if cross.Dot(grad) < -1e-6 {
			t.Fatalf("face normal points against gradient: dot=%v", cross.Dot(grad))
		}
	}
}

func TestExtractTorusOrientation(t *testing.T) {
	g := voxel.Torus(24, 24, 12, 7, 3)
	m, err := Extract(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) == 0 {
		t.Fatal("expected a non-empty closed surface")
	}
	for _, f := range m.Faces {
		cross := m.FaceCrossProduct(f)
		centroid := m.Vertices[f.A].Coord.Add(m.Vertices[f.B].Coord).Add(m.Vertices[f.C].Coord).Scale(1.0 / 3)
		grad := g.Gradient(int(centroid.X+0.5), int(centroid.Y+0.5), int(centroid.Z+0.5))
		if cross.Dot(grad) < -1e-6 {
			t.Fatalf("face normal points against gradient: dot=%v", cross.Dot(grad))
		}
	}
}

func TestExtractParallelMatchesSequential(t *testing.T) {
	g := voxel.Sphere(10, 10, 10, 3)
	seq, err := Extract(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	par, err := ExtractParallel(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(seq.Faces) != len(par.Faces) {
		t.Fatalf("face count mismatch: sequential=%d parallel=%d", len(seq.Faces), len(par.Faces))
	}
	if len(seq.Vertices) != len(par.Vertices) {
		t.Fatalf("vertex count mismatch: sequential=%d parallel=%d (parallel join failed to merge inter-plane boundary vertices)",
			len(seq.Vertices), len(par.Vertices))
	}
}

func TestExtractParallelMergesPlaneBoundaryVertices(t *testing.T) {
	g := voxel.Sphere(16, 12, 12, 5)
	par, err := ExtractParallel(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[[3]float64]int)
	for _, v := range par.Vertices {
		seen[[3]float64{v.Coord.X, v.Coord.Y, v.Coord.Z}]++
	}
	for c, n := range seen {
		if n > 1 {
			t.Fatalf("vertex at %+v duplicated %d times across plane boundaries", c, n)
		}
	}
}

// TestExtractDiagonalCornersProducesTwoTriangles reproduces the
// idx=65-shaped classification directly: a 2x2x2 grid with the corners
// at (0,0,0) and (1,1,1) below isovalue and every other corner above it.
// The two diagonally opposite "low" corners each sit inside their own
// disjoint triangle, so a correct triangle-emission walk must produce
// exactly two faces, not one.
func TestExtractDiagonalCornersProducesTwoTriangles(t *testing.T) {
	g := voxel.NewGrid(2, 2, 2)
	g.Set(0, 0, 0, 0)
	g.Set(1, 0, 0, 1)
	g.Set(1, 1, 0, 1)
	g.Set(0, 1, 0, 1)
	g.Set(0, 0, 1, 1)
	g.Set(1, 0, 1, 1)
	g.Set(1, 1, 1, 0)
	g.Set(0, 1, 1, 1)
	m, err := Extract(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) != 2 {
		t.Fatalf("expected 2 triangles for the two disjoint diagonal corners, got %d", len(m.Faces))
	}
}

func TestExtractBrickedMatchesUnbricked(t *testing.T) {
	g := voxel.Sphere(20, 20, 20, 7)
	plain, err := Extract(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	bricked, err := ExtractBricked(g, 0.5, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(plain.Faces) != len(bricked.Faces) {
		t.Fatalf("face count mismatch: plain=%d bricked=%d", len(plain.Faces), len(bricked.Faces))
	}
	if len(plain.Vertices) != len(bricked.Vertices) {
		t.Fatalf("vertex count mismatch: plain=%d bricked=%d", len(plain.Vertices), len(bricked.Vertices))
	}
}

func TestExtractBrickedMatchesUnbrickedTorus(t *testing.T) {
	g := voxel.Torus(24, 24, 12, 7, 3)
	plain, err := Extract(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	bricked, err := ExtractBricked(g, 0.5, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(plain.Faces) != len(bricked.Faces) {
		t.Fatalf("face count mismatch: plain=%d bricked=%d", len(plain.Faces), len(bricked.Faces))
	}
	if len(plain.Vertices) != len(bricked.Vertices) {
		t.Fatalf("vertex count mismatch: plain=%d bricked=%d", len(plain.Vertices), len(bricked.Vertices))
	}
}

func TestExtractBrickedEmptyField(t *testing.T) {
	g := voxel.NewGrid(8, 8, 8)
	m, err := ExtractBricked(g, 0.5, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) != 0 {
		t.Fatalf("expected no faces for an empty field, got %d", len(m.Faces))
	}
}
