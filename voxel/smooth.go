package voxel

import "math"

// gaussianKernel1D builds a normalized, odd-length 1D Gaussian kernel.
// Grounded on original_source/src/Voxel.hpp's generate_gaussian_vector.
func gaussianKernel1D(size int, sigma float64) []float64 {
	if size%2 == 0 {
		size++
	}
	k := make([]float64, size)
	half := size / 2
	sum := 0.0
	for i := range k {
		x := float64(i - half)
		v := math.Exp(-(x * x) / (2 * sigma * sigma))
		k[i] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// Smooth applies a separable Gaussian blur along X, then Y, then Z, with a
// fixed kernel size and sigma, clamping results to [0, 1]. The boundary
// region on each axis, as wide as the (odd-rounded) kernel size, is left
// untouched, following
// original_source's smooth<T,Size>, which never writes into that margin;
// spec.md §4 leaves this an explicit open policy and this module keeps the
// original's "skip" behavior rather than mirroring (see DESIGN.md).
func (g *Grid) Smooth(size int, sigma float64) *Grid {
	kernel := gaussianKernel1D(size, sigma)
	half := len(kernel) / 2

	out := &Grid{Nx: g.Nx, Ny: g.Ny, Nz: g.Nz, Data: append([]float32(nil), g.Data...)}
	out = convolveAxis(out, kernel, half, 0)
	out = convolveAxis(out, kernel, half, 1)
	out = convolveAxis(out, kernel, half, 2)
	return out
}

func convolveAxis(g *Grid, kernel []float64, half, axis int) *Grid {
	out := &Grid{Nx: g.Nx, Ny: g.Ny, Nz: g.Nz, Data: append([]float32(nil), g.Data...)}
	dims := [3]int{g.Nx, g.Ny, g.Nz}
	n := dims[axis]
	margin := len(kernel)
	if n <= 2*margin {
		return out
	}
	for z := 0; z < g.Nz; z++ {
		for y := 0; y < g.Ny; y++ {
			for x := 0; x < g.Nx; x++ {
				pos := [3]int{x, y, z}
				if pos[axis] < margin || pos[axis] >= n-margin {
					continue // boundary margin left unwritten
				}
				var acc float64
				for k, w := range kernel {
					p := pos
					p[axis] += k - half
					acc += w * float64(g.At(p[0], p[1], p[2]))
				}
				if acc < 0 {
					acc = 0
				}
				if acc > 1 {
					acc = 1
				}
				out.Set(x, y, z, float32(acc))
			}
		}
	}
	return out
}
