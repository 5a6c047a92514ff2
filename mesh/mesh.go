// Package mesh holds the indexed triangle-mesh representation shared by
// the marching-cubes extractor and the QEM simplifier.
package mesh

import "github.com/isomesh/isomesh/linalg"

// Vertex is a single mesh sample: its scalar field value, its position in
// grid space, and its (unit-length, for surface vertices) normal.
type Vertex struct {
	Val    float64
	Coord  linalg.Vec3
	Normal linalg.Vec3
}

// InterpolateVertex builds the vertex that would sit at parameter t along
// the segment a-b, interpolating scalar value and normal and normalizing
// the result.
func InterpolateVertex(t float64, a, b Vertex) Vertex {
	return Vertex{
		Val:    a.Val + (b.Val-a.Val)*t,
		Coord:  linalg.Lerp(a.Coord, b.Coord, t),
		Normal: linalg.Lerp(a.Normal, b.Normal, t).Normalize(),
	}
}

// Face is an ordered triple of vertex indices into a Mesh's Vertices slice.
type Face struct {
	A, B, C int
}

// Degenerate reports whether two of the face's three indices coincide.
func (f Face) Degenerate() bool {
	return f.A == f.B || f.B == f.C || f.A == f.C
}

// Contains reports whether the face references vertex v.
func (f Face) Contains(v int) bool {
	return f.A == v || f.B == v || f.C == v
}

// Replace returns f with every occurrence of old replaced by next.
func (f Face) Replace(old, next int) Face {
	if f.A == old {
		f.A = next
	}
	if f.B == old {
		f.B = next
	}
	if f.C == old {
		f.C = next
	}
	return f
}

// Indices returns the face's three vertex indices as an array, useful for
// iteration.
func (f Face) Indices() [3]int { return [3]int{f.A, f.B, f.C} }

// Mesh is an indexed triangle mesh: a vertex arena plus faces referencing
// it by index. Vertex indices are stable until Faces or Vertices is
// mutated directly by a caller outside this package's own operations.
type Mesh struct {
	Vertices []Vertex
	Faces    []Face
}

// New returns an empty mesh.
func New() *Mesh { return &Mesh{} }

// AddVertex appends v and returns its index.
func (m *Mesh) AddVertex(v Vertex) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddFace appends a face built from three vertex indices.
func (m *Mesh) AddFace(a, b, c int) {
	m.Faces = append(m.Faces, Face{a, b, c})
}

// FaceCrossProduct returns the unnormalized (p1-p0)x(p2-p0) cross product for a
// face, using the mesh's current vertex positions.
func (m *Mesh) FaceCrossProduct(f Face) linalg.Vec3 {
	p0, p1, p2 := m.Vertices[f.A].Coord, m.Vertices[f.B].Coord, m.Vertices[f.C].Coord
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

// FacePlane returns the unit normal and offset d of the plane supporting
// f, following ax+by+cz+d=0 with n=normalize((p1-p0)x(p2-p0)), d=-n.p0.
// ok is false when the face is collinear (zero-area) and the plane is
// undefined; callers must treat that as NumericInvariantViolated and skip
// the face rather than propagate a NaN normal.
func (m *Mesh) FacePlane(f Face) (n linalg.Vec3, d float64, ok bool) {
	cross := m.FaceCrossProduct(f)
	if cross.Norm() == 0 {
		return linalg.Vec3{}, 0, false
	}
	n = cross.Normalize()
	d = -n.Dot(m.Vertices[f.A].Coord)
	return n, d, true
}

// HasDegenerate reports whether any face in the mesh is degenerate.
func (m *Mesh) HasDegenerate() bool {
	for _, f := range m.Faces {
		if f.Degenerate() {
			return true
		}
	}
	return false
}
