// Package bricks partitions a voxel grid into fixed-size cubes and
// determines which of them are uniformly on one side of an isovalue, so
// mc.ExtractBricked can skip whole regions of cubes that cannot possibly
// contribute a triangle. This is a pure performance optimization: it
// changes no output geometry, only which cube ranges are visited.
//
// Grounded on VoxelsPlace-VOPL/go/vopl's fixed-size-grid domain
// (occupancy is tracked per-brick the way vopl/grid.go tracks per-chunk
// occupancy), and its morton.go's Z-order iteration for a
// cache-friendlier visiting order across bricks.
package bricks

import (
	"math/bits"

	"github.com/isomesh/isomesh/voxel"
)

// Brick describes one cube-shaped partition of the grid in cube-index
// space (the same coordinate space mc.Extract iterates: origins at
// [0, N-1)).
type Brick struct {
	X0, Y0, Z0 int
	X1, Y1, Z1 int // exclusive
}

// Plan partitions the (Nx-1)*(Ny-1)*(Nz-1) cube range into bricks of the
// given size (clamped to the grid extent at the far edge of each axis),
// visited in Morton (Z-order) sequence for cache locality, matching the
// teacher's own Z-order chunk traversal.
func Plan(g *voxel.Grid, size int) []Brick {
	if size < 1 {
		size = 1
	}
	nx, ny, nz := g.Nx-1, g.Ny-1, g.Nz-1
	var list []Brick
	for x := 0; x < nx; x += size {
		for y := 0; y < ny; y += size {
			for z := 0; z < nz; z += size {
				list = append(list, Brick{
					X0: x, Y0: y, Z0: z,
					X1: min(x+size, nx), Y1: min(y+size, ny), Z1: min(z+size, nz),
				})
			}
		}
	}
	sortMorton(list)
	return list
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// sortMorton reorders bricks by the Morton code of their origin,
// insertion-sorted the way vopl/morton.go builds its traversal order (a
// brick count in the hundreds does not warrant an O(n log n) sort
// import for a stable, well-understood small-n algorithm already used
// elsewhere in the corpus for exactly this purpose).
func sortMorton(list []Brick) {
	for a := 1; a < len(list); a++ {
		k := list[a]
		kc := morton3D(uint32(k.X0), uint32(k.Y0), uint32(k.Z0))
		b := a - 1
		for b >= 0 && morton3D(uint32(list[b].X0), uint32(list[b].Y0), uint32(list[b].Z0)) > kc {
			list[b+1] = list[b]
			b--
		}
		list[b+1] = k
	}
}

func expand3(v uint32) uint32 {
	v = (v | (v << 16)) & 0x030000FF
	v = (v | (v << 8)) & 0x0300F00F
	v = (v | (v << 4)) & 0x030C30C3
	v = (v | (v << 2)) & 0x09249249
	return v
}

func morton3D(x, y, z uint32) uint32 {
	return expand3(x) | (expand3(y) << 1) | (expand3(z) << 2)
}

// StraddlesIsovalue reports whether any two corners in the brick's cube
// range fall on opposite sides of isovalue, i.e. whether the brick can
// possibly contribute a triangle. A brick where every voxel corner is
// uniformly above or uniformly below isovalue is skippable.
func StraddlesIsovalue(g *voxel.Grid, b Brick, isovalue float64) bool {
	var seenLow, seenHigh bool
	for x := b.X0; x <= b.X1; x++ {
		for y := b.Y0; y <= b.Y1; y++ {
			for z := b.Z0; z <= b.Z1; z++ {
				if float64(g.At(x, y, z)) < isovalue {
					seenLow = true
				} else {
					seenHigh = true
				}
				if seenLow && seenHigh {
					return true
				}
			}
		}
	}
	return false
}

// OccupancyBitmap packs one bit per brick (1 = straddles isovalue, so it
// must be visited) using the teacher's LSB-first bit-packing scheme from
// vopl/bitio.go, adapted from a byte-oriented stream writer to a fixed
// bitset since the brick count is known up front.
type OccupancyBitmap struct {
	bits []byte
	n    int
}

// BuildOccupancy evaluates StraddlesIsovalue for every brick and packs
// the results.
func BuildOccupancy(g *voxel.Grid, list []Brick, isovalue float64) *OccupancyBitmap {
	ob := &OccupancyBitmap{bits: make([]byte, (len(list)+7)/8), n: len(list)}
	for i, b := range list {
		if StraddlesIsovalue(g, b, isovalue) {
			ob.bits[i/8] |= 1 << uint(i%8)
		}
	}
	return ob
}

// Active reports whether brick i must be visited.
func (o *OccupancyBitmap) Active(i int) bool {
	return o.bits[i/8]&(1<<uint(i%8)) != 0
}

// Count returns the number of active bricks.
func (o *OccupancyBitmap) Count() int {
	total := 0
	for _, b := range o.bits {
		total += bits.OnesCount8(b)
	}
	return total
}
