package voxel

import "math"

// Sphere returns a grid of the given shape holding a signed-distance-like
// scalar field (1 at the center, falling off to 0 at radius), useful for
// tests exercising a genuinely closed isosurface.
func Sphere(nx, ny, nz int, radius float64) *Grid {
	g := NewGrid(nx, ny, nz)
	cx, cy, cz := float64(nx-1)/2, float64(ny-1)/2, float64(nz-1)/2
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				dx, dy, dz := float64(x)-cx, float64(y)-cy, float64(z)-cz
				d := math.Sqrt(dx*dx + dy*dy + dz*dz)
				v := 1 - d/radius
				if v < 0 {
					v = 0
				}
				if v > 1 {
					v = 1
				}
				g.Set(x, y, z, float32(v))
			}
		}
	}
	return g
}

// Torus returns a grid holding a torus-shaped scalar field centered in the
// grid, with major radius R and minor radius r.
func Torus(nx, ny, nz int, majorR, minorR float64) *Grid {
	g := NewGrid(nx, ny, nz)
	cx, cy, cz := float64(nx-1)/2, float64(ny-1)/2, float64(nz-1)/2
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				dx, dy, dz := float64(x)-cx, float64(y)-cy, float64(z)-cz
				q := math.Sqrt(dx*dx+dy*dy) - majorR
				d := math.Sqrt(q*q + dz*dz)
				v := 1 - d/minorR
				if v < 0 {
					v = 0
				}
				if v > 1 {
					v = 1
				}
				g.Set(x, y, z, float32(v))
			}
		}
	}
	return g
}
