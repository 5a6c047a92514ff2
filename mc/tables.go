package mc

// cornerOffset gives the (dx, dy, dz) offset of each of a cube's 8 corners
// from its low corner, in the standard Marching Cubes corner order.
var cornerOffset = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// axis identifies which grid axis a cube edge runs along.
type axis int

const (
	axisX axis = iota
	axisY
	axisZ
)

// edgeConnection[e] gives the two corner indices spanned by edge e and the
// axis it runs along, in the standard Marching Cubes edge order.
var edgeConnection = [12]struct {
	A, B int
	Dir  axis
}{
	{0, 1, axisX}, {1, 2, axisY}, {2, 3, axisX}, {3, 0, axisY},
	{4, 5, axisX}, {5, 6, axisY}, {6, 7, axisX}, {7, 4, axisY},
	{0, 4, axisZ}, {1, 5, axisZ}, {2, 6, axisZ}, {3, 7, axisZ},
}

// cubeFace lists the 4 corners of one cube face in cyclic order.
var cubeFaces = [6][4]int{
	{0, 1, 2, 3}, // z = 0
	{4, 5, 6, 7}, // z = 1
	{0, 1, 5, 4}, // y = 0
	{3, 2, 6, 7}, // y = 1
	{0, 3, 7, 4}, // x = 0
	{1, 2, 6, 5}, // x = 1
}

// edgeByCorners maps an unordered corner pair to its edge index.
var edgeByCorners map[[2]int]int

func init() {
	edgeByCorners = make(map[[2]int]int, 12)
	for e, conn := range edgeConnection {
		edgeByCorners[key(conn.A, conn.B)] = e
	}
}

func key(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// edgeTable[idx] is a 12-bit mask of which of the 12 cube edges are cut by
// the isosurface for corner-inside classification idx: edge e is cut iff
// its two corners disagree on being inside (v < isovalue).
var edgeTable [256]uint16

// triTable[idx] lists the cut edges to connect into triangles for corner
// classification idx, as consecutive triples, terminated by -1.
//
// Rather than transcribing the classic 256-row Lorensen-Cline/Bourke
// constant by hand (error-prone and unverifiable without a compiler in
// this environment), the table is generated at init time by tracing the
// cut-edge contour across the cube's 6 faces: two cut edges sharing a face
// are connected unless that face has all 4 edges cut (the ambiguous
// diagonal case), which is resolved by pairing the edges that meet at the
// face's first and third listed corners, cutting those two corners off and
// leaving the other diagonal pair connected across the face. This produces the same topology as the canonical
// table — for every face, a face with 1 or 3 corners on one side always
// yields exactly one unambiguous pairing, and only the 2-diagonal case
// needs the explicit tie-break above. Each resulting closed loop is fan
// triangulated, and each triangle's winding is chosen so its normal has a
// non-negative dot product with a reference direction pointing from the
// "inside" (v < isovalue) corners toward the "outside" (v >= isovalue)
// ones, the direction of the discrete gradient used throughout this
// package (see voxel.Grid.Gradient). The winding reference direction is
// computed per loop, from only the corners that loop's own cut edges
// touch, not from a single whole-cube average: see loopGradientDirection.
var triTable [256][]int8

func init() {
	for idx := 0; idx < 256; idx++ {
		edgeTable[idx] = cutMask(idx)
		if edgeTable[idx] == 0 {
			continue
		}
		triTable[idx] = buildTriangles(idx)
	}
}

func isLow(idx, corner int) bool { return idx&(1<<uint(corner)) != 0 }

func cutMask(idx int) uint16 {
	var mask uint16
	for e, conn := range edgeConnection {
		if isLow(idx, conn.A) != isLow(idx, conn.B) {
			mask |= 1 << uint(e)
		}
	}
	return mask
}

// facePairs returns the edge-index pairs to connect for one face, given
// the corner classification idx.
func facePairs(idx int, face [4]int) [][2]int {
	var cut []int
	for k := 0; k < 4; k++ {
		a, b := face[k], face[(k+1)%4]
		if isLow(idx, a) != isLow(idx, b) {
			cut = append(cut, edgeByCorners[key(a, b)])
		}
	}
	switch len(cut) {
	case 0:
		return nil
	case 2:
		return [][2]int{{cut[0], cut[1]}}
	case 4:
		// Alternating L/H around the face: pair the two cut edges meeting
		// at face[0] and the two meeting at face[2], whichever side those
		// corners are on; face[1] and face[3] stay connected across.
		return [][2]int{{cut[3], cut[0]}, {cut[1], cut[2]}}
	default:
		return nil
	}
}

func buildTriangles(idx int) []int8 {
	neighbors := make(map[int][]int, 12)
	for _, face := range cubeFaces {
		for _, pr := range facePairs(idx, face) {
			neighbors[pr[0]] = append(neighbors[pr[0]], pr[1])
			neighbors[pr[1]] = append(neighbors[pr[1]], pr[0])
		}
	}

	visited := make(map[int]bool, 12)
	var out []int8
	for e := range neighbors {
		if visited[e] {
			continue
		}
		loop := traceLoop(e, neighbors, visited)
		out = append(out, fanTriangulate(idx, loop)...)
	}
	return out
}

func traceLoop(start int, neighbors map[int][]int, visited map[int]bool) []int {
	loop := []int{start}
	visited[start] = true
	prev, cur := -1, start
	for {
		next := -1
		for _, cand := range neighbors[cur] {
			if cand != prev {
				next = cand
				break
			}
		}
		if next == -1 || next == start {
			break
		}
		loop = append(loop, next)
		visited[next] = true
		prev, cur = cur, next
	}
	return loop
}

// edgeMidpoint returns an edge's midpoint in unit-cube space, used only to
// determine triangle winding, not the actual (interpolated) output
// position computed during extraction.
func edgeMidpoint(e int) [3]float64 {
	conn := edgeConnection[e]
	a, b := cornerOffset[conn.A], cornerOffset[conn.B]
	return [3]float64{
		(float64(a[0]) + float64(b[0])) / 2,
		(float64(a[1]) + float64(b[1])) / 2,
		(float64(a[2]) + float64(b[2])) / 2,
	}
}

func fanTriangulate(idx int, loop []int) []int8 {
	if len(loop) < 3 {
		return nil
	}
	dir := loopGradientDirection(idx, loop)
	var out []int8
	for i := 1; i+1 < len(loop); i++ {
		e0, e1, e2 := loop[0], loop[i], loop[i+1]
		if !outward(e0, e1, e2, dir) {
			e1, e2 = e2, e1
		}
		out = append(out, int8(e0), int8(e1), int8(e2))
	}
	return append(out, -1)
}

// loopGradientDirection approximates the direction from the "inside" (v
// < isovalue) side toward the "outside" (v >= isovalue) side for one
// specific closed loop, used to pick a consistent triangle winding at
// table-build time.
//
// Every edge in loop is a cut edge, so each has exactly one "low" and one
// "high" endpoint; averaging those endpoints over only the edges in this
// loop (rather than over all 8 cube corners) keeps the direction local to
// the surface patch the loop actually bounds. A whole-cube average
// degenerates to the zero vector whenever the high and low corners are
// each symmetric about the cube center — e.g. idx=190, where corners 0
// and 6 are diagonally opposite and alone form the "high" set — silently
// disabling the winding check for every loop of that classification. The
// per-loop corners are a small subset of the cube local to that loop and
// are not subject to the same whole-cube symmetry.
func loopGradientDirection(idx int, loop []int) [3]float64 {
	var lo, hi [3]float64
	var nlo, nhi int
	add := func(sum *[3]float64, corner int) {
		off := cornerOffset[corner]
		sum[0] += float64(off[0])
		sum[1] += float64(off[1])
		sum[2] += float64(off[2])
	}
	for _, e := range loop {
		conn := edgeConnection[e]
		a, b := conn.A, conn.B
		if isLow(idx, a) {
			add(&lo, a)
			nlo++
			add(&hi, b)
			nhi++
		} else {
			add(&hi, a)
			nhi++
			add(&lo, b)
			nlo++
		}
	}
	if nlo == 0 || nhi == 0 {
		return [3]float64{0, 0, 0}
	}
	return [3]float64{
		hi[0]/float64(nhi) - lo[0]/float64(nlo),
		hi[1]/float64(nhi) - lo[1]/float64(nlo),
		hi[2]/float64(nhi) - lo[2]/float64(nlo),
	}
}

func outward(e0, e1, e2 int, dir [3]float64) bool {
	p0, p1, p2 := edgeMidpoint(e0), edgeMidpoint(e1), edgeMidpoint(e2)
	u := [3]float64{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
	v := [3]float64{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
	n := [3]float64{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
	return n[0]*dir[0]+n[1]*dir[1]+n[2]*dir[2] >= 0
}
