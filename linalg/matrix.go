package linalg

// symIndex maps a (row, col) pair of a 4x4 symmetric matrix to its slot in
// the 10-entry packed storage. Row-major upper triangle order:
// (00, 01, 02, 03, 11, 12, 13, 22, 23, 33).
var symIndex = [16]int{
	0, 1, 2, 3,
	1, 4, 5, 6,
	2, 5, 7, 8,
	3, 6, 8, 9,
}

// SymmetryMatrix4 is a symmetric 4x4 matrix stored as its 10 unique
// entries, used to accumulate the quadric error of a vertex.
type SymmetryMatrix4 struct {
	data [10]float64
}

// NewSymmetryMatrix4 builds a matrix from its upper-triangle entries in
// (00,01,02,03,11,12,13,22,23,33) order.
func NewSymmetryMatrix4(m00, m01, m02, m03, m11, m12, m13, m22, m23, m33 float64) SymmetryMatrix4 {
	return SymmetryMatrix4{data: [10]float64{m00, m01, m02, m03, m11, m12, m13, m22, m23, m33}}
}

// PlaneQuadric builds Kp = [a b c d]^T * [a b c d], the quadric of the
// plane ax+by+cz+d=0.
func PlaneQuadric(a, b, c, d float64) SymmetryMatrix4 {
	return NewSymmetryMatrix4(
		a*a, a*b, a*c, a*d,
		b*b, b*c, b*d,
		c*c, c*d,
		d*d,
	)
}

// At returns the entry at (i, j), i, j in [0,4).
func (m SymmetryMatrix4) At(i, j int) float64 {
	return m.data[symIndex[4*i+j]]
}

// Set writes the entry at (i, j); since the matrix is symmetric this also
// sets (j, i).
func (m *SymmetryMatrix4) Set(i, j int, v float64) {
	m.data[symIndex[4*i+j]] = v
}

// Fill sets every unique entry to x.
func (m *SymmetryMatrix4) Fill(x float64) {
	for i := range m.data {
		m.data[i] = x
	}
}

// Add returns the element-wise sum of m and o.
func (m SymmetryMatrix4) Add(o SymmetryMatrix4) SymmetryMatrix4 {
	var out SymmetryMatrix4
	for i := range m.data {
		out.data[i] = m.data[i] + o.data[i]
	}
	return out
}

// AddInPlace adds o into m.
func (m *SymmetryMatrix4) AddInPlace(o SymmetryMatrix4) {
	for i := range m.data {
		m.data[i] += o.data[i]
	}
}

// Upper3x3WellConditioned reports whether the leading 3x3 block (the
// quadratic part of the error function, ignoring the homogeneous row/col)
// is numerically safe to solve for the optimal vertex position: every
// diagonal entry must be at least eps and the block's determinant must
// exceed eps in magnitude.
func (m SymmetryMatrix4) Upper3x3WellConditioned(eps float64) bool {
	a00, a11, a22 := m.At(0, 0), m.At(1, 1), m.At(2, 2)
	if a00 < eps || a11 < eps || a22 < eps {
		return false
	}
	det := m.At(0, 0)*(m.At(1, 1)*m.At(2, 2)-m.At(1, 2)*m.At(2, 1)) -
		m.At(0, 1)*(m.At(1, 0)*m.At(2, 2)-m.At(1, 2)*m.At(2, 0)) +
		m.At(0, 2)*(m.At(1, 0)*m.At(2, 1)-m.At(1, 1)*m.At(2, 0))
	return det > eps || det < -eps
}

// SolveUpper3x3 solves the leading 3x3 block Ax = b for x via Cramer's
// rule. Callers must check Upper3x3WellConditioned first.
func (m SymmetryMatrix4) SolveUpper3x3(b Vec3) (Vec3, bool) {
	a00, a01, a02 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	a10, a11, a12 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	a20, a21, a22 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	det := a00*(a11*a22-a12*a21) - a01*(a10*a22-a12*a20) + a02*(a10*a21-a11*a20)
	if det == 0 {
		return Vec3{}, false
	}
	inv := 1 / det

	x := (b.X*(a11*a22-a12*a21) - a01*(b.Y*a22-a12*b.Z) + a02*(b.Y*a21-a11*b.Z)) * inv
	y := (a00*(b.Y*a22-a12*b.Z) - b.X*(a10*a22-a12*a20) + a02*(a10*b.Z-b.Y*a20)) * inv
	z := (a00*(a11*b.Z-b.Y*a21) - a01*(a10*b.Z-b.Y*a20) + b.X*(a10*a21-a11*a20)) * inv
	return Vec3{x, y, z}, true
}
