package meshcache

import (
	"testing"

	"github.com/isomesh/isomesh/linalg"
	"github.com/isomesh/isomesh/mesh"
	"github.com/isomesh/isomesh/voxel"
)

func sampleMesh() *mesh.Mesh {
	m := mesh.New()
	m.AddVertex(mesh.Vertex{Val: 0.5, Coord: linalg.Vec3{X: 0, Y: 0, Z: 0}, Normal: linalg.Vec3{X: 0, Y: 0, Z: 1}})
	m.AddVertex(mesh.Vertex{Val: 0.5, Coord: linalg.Vec3{X: 1, Y: 0, Z: 0}, Normal: linalg.Vec3{X: 0, Y: 0, Z: 1}})
	m.AddVertex(mesh.Vertex{Val: 0.5, Coord: linalg.Vec3{X: 0, Y: 1, Z: 0}, Normal: linalg.Vec3{X: 0, Y: 0, Z: 1}})
	m.AddFace(0, 1, 2)
	return m
}

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	m := sampleMesh()
	key := Key(12345, 0.5, 0.5)
	if err := c.Put(key, m); err != nil {
		t.Fatal(err)
	}
	if !c.Has(key) {
		t.Fatal("expected Has to report true after Put")
	}
	got, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Vertices) != len(m.Vertices) || len(got.Faces) != len(m.Faces) {
		t.Fatalf("round trip mismatch: got %d/%d want %d/%d",
			len(got.Vertices), len(got.Faces), len(m.Vertices), len(m.Faces))
	}
	for i, v := range m.Vertices {
		g := got.Vertices[i]
		if g.Coord != v.Coord || g.Normal != v.Normal || g.Val != v.Val {
			t.Fatalf("vertex %d mismatch: got %+v want %+v", i, g, v)
		}
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	m, err := c.Get(Key(1, 0.1, 0.1))
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatal("expected nil mesh for a missing key")
	}
}

func TestKeyDistinguishesInputs(t *testing.T) {
	a := Key(1, 0.5, 0.5)
	b := Key(1, 0.6, 0.5)
	c := Key(2, 0.5, 0.5)
	if a == b || a == c || b == c {
		t.Fatal("expected distinct keys for distinct inputs")
	}
}

func TestGridFingerprintDeterministic(t *testing.T) {
	g := voxel.Sphere(6, 6, 6, 2)
	f1 := GridFingerprint(g)
	f2 := GridFingerprint(g)
	if f1 != f2 {
		t.Fatal("expected GridFingerprint to be deterministic for the same grid")
	}
	g.Set(0, 0, 0, 9)
	if GridFingerprint(g) == f1 {
		t.Fatal("expected fingerprint to change when grid contents change")
	}
}
