// Package voxel holds the dense scalar-field representation consumed by
// marching cubes, its discrete gradient, separable smoothing, and the
// boundary-collaborator loaders that stand in for the out-of-scope TIFF
// decoder named by the specification.
package voxel

import (
	"fmt"

	"github.com/isomesh/isomesh/errs"
	"github.com/isomesh/isomesh/linalg"
)

// Grid is a dense Nx*Ny*Nz scalar field, C-order indexed V[x][y][z], with
// values conventionally normalized to [0, 1]. It is immutable once built
// for the purposes of extraction: mutating operations like Smooth return a
// new Grid rather than editing in place.
type Grid struct {
	Nx, Ny, Nz int
	Data       []float32
}

// NewGrid allocates a zero-filled grid of the given shape.
func NewGrid(nx, ny, nz int) *Grid {
	return &Grid{Nx: nx, Ny: ny, Nz: nz, Data: make([]float32, nx*ny*nz)}
}

func (g *Grid) index(x, y, z int) int { return (x*g.Ny+y)*g.Nz + z }

// At returns the value at (x, y, z). Out-of-range coordinates are clamped
// to the nearest valid one, which keeps boundary gradient formulas simple.
func (g *Grid) At(x, y, z int) float32 {
	x = clamp(x, 0, g.Nx-1)
	y = clamp(y, 0, g.Ny-1)
	z = clamp(z, 0, g.Nz-1)
	return g.Data[g.index(x, y, z)]
}

// Set writes the value at (x, y, z); coordinates must be in range.
func (g *Grid) Set(x, y, z int, v float32) {
	g.Data[g.index(x, y, z)] = v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Validate checks the InvalidInput condition from the error-handling
// design: every dimension must be at least 2 to enumerate a single cube.
func (g *Grid) Validate() error {
	if g.Nx < 2 || g.Ny < 2 || g.Nz < 2 {
		return fmt.Errorf("%w: grid shape (%d,%d,%d) has a dimension below 2", errs.ErrInvalidInput, g.Nx, g.Ny, g.Nz)
	}
	return nil
}

// Gradient returns the normalized discrete gradient of the field at
// integer position (x, y, z): central differences in the interior, and
// one-sided differences at each axis's boundary. A flat field (zero
// gradient) is returned unnormalized, per spec.
func (g *Grid) Gradient(x, y, z int) linalg.Vec3 {
	gx := axisDiff(x, g.Nx, func(i int) float32 { return g.At(i, y, z) })
	gy := axisDiff(y, g.Ny, func(i int) float32 { return g.At(x, i, z) })
	gz := axisDiff(z, g.Nz, func(i int) float32 { return g.At(x, y, i) })
	return linalg.Vec3{X: gx, Y: gy, Z: gz}.Normalize()
}

func axisDiff(i, n int, sample func(int) float32) float64 {
	switch {
	case i == 0:
		return float64(sample(1) - sample(0))
	case i == n-1:
		return float64(sample(n-1) - sample(n-2))
	default:
		return float64(sample(i+1)-sample(i-1)) / 2
	}
}
