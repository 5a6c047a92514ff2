package objio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/isomesh/isomesh/linalg"
	"github.com/isomesh/isomesh/mesh"
)

func triangle() *mesh.Mesh {
	m := mesh.New()
	m.AddVertex(mesh.Vertex{Coord: linalg.Vec3{X: 0, Y: 0, Z: 0}, Normal: linalg.Vec3{X: 0, Y: 0, Z: 1}})
	m.AddVertex(mesh.Vertex{Coord: linalg.Vec3{X: 1, Y: 0, Z: 0}, Normal: linalg.Vec3{X: 0, Y: 0, Z: 1}})
	m.AddVertex(mesh.Vertex{Coord: linalg.Vec3{X: 0, Y: 1, Z: 0}, Normal: linalg.Vec3{X: 0, Y: 0, Z: 1}})
	m.AddFace(0, 1, 2)
	return m
}

func TestWriteToFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, triangle()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "v 0 0 0\n") {
		t.Fatalf("missing vertex line, got:\n%s", out)
	}
	if !strings.Contains(out, "f 1//1 2//2 3//3\n") {
		t.Fatalf("missing face line, got:\n%s", out)
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	orig := triangle()
	if err := WriteTo(&buf, orig); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrom(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Vertices) != len(orig.Vertices) || len(got.Faces) != len(orig.Faces) {
		t.Fatalf("round trip shape mismatch: got %d/%d want %d/%d",
			len(got.Vertices), len(got.Faces), len(orig.Vertices), len(orig.Faces))
	}
	if got.Faces[0] != orig.Faces[0] {
		t.Fatalf("face mismatch: got %+v want %+v", got.Faces[0], orig.Faces[0])
	}
	for i, v := range orig.Vertices {
		if got.Vertices[i].Coord != v.Coord || got.Vertices[i].Normal != v.Normal {
			t.Fatalf("vertex %d mismatch: got %+v want %+v", i, got.Vertices[i], v)
		}
	}
}

func TestReadSplitsQuads(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\n" +
		"vn 0 0 1\nvn 0 0 1\nvn 0 0 1\nvn 0 0 1\n" +
		"f 1//1 2//2 3//3 4//4\n"
	m, err := ReadFrom(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) != 2 {
		t.Fatalf("expected quad split into 2 triangles, got %d faces", len(m.Faces))
	}
	if m.Faces[0] != (mesh.Face{A: 0, B: 1, C: 2}) {
		t.Fatalf("unexpected first triangle: %+v", m.Faces[0])
	}
	if m.Faces[1] != (mesh.Face{A: 1, B: 2, C: 3}) {
		t.Fatalf("unexpected second triangle: %+v", m.Faces[1])
	}
}
