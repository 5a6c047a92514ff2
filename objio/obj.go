// Package objio reads and writes the Wavefront OBJ subset named by
// spec.md §6: v/vn per vertex, f i//i j//j k//k triangle faces, 1-based.
package objio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/isomesh/isomesh/linalg"
	"github.com/isomesh/isomesh/mesh"
)

// Write emits mesh m to path in the OBJ subset: one v/vn per vertex, one
// f v//n v//n v//n per face, 1-based indices. Grounded on
// original_source/src/obj.hpp's save().
func Write(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return WriteTo(f, m)
}

// WriteTo writes m's OBJ representation to w.
func WriteTo(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(bw, "v %g %g %g\n", v.Coord.X, v.Coord.Y, v.Coord.Z); err != nil {
			return err
		}
	}
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal.X, v.Normal.Y, v.Normal.Z); err != nil {
			return err
		}
	}
	for _, face := range m.Faces {
		idx := face.Indices()
		if _, err := fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n",
			idx[0]+1, idx[0]+1, idx[1]+1, idx[1]+1, idx[2]+1, idx[2]+1); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses path into a Mesh. Quad faces (4 v//n tokens) are split into
// two triangles (0,1,2) and (1,2,3), per spec.md §6; any other line token
// is ignored.
func Read(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrom(f)
}

// ReadFrom parses OBJ content from r into a Mesh.
func ReadFrom(r io.Reader) (*mesh.Mesh, error) {
	m := mesh.New()
	sc := bufio.NewScanner(r)
	vn := 0 // vn lines are matched to vertices by order, not by adjacency to
	// their v line: the writer emits all v lines before any vn line.
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return nil, err
			}
			m.AddVertex(mesh.Vertex{Coord: p})
		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, err
			}
			if err := setNormal(m, vn, n); err != nil {
				return nil, err
			}
			vn++
		case "f":
			verts, err := parseFace(fields[1:])
			if err != nil {
				return nil, err
			}
			switch len(verts) {
			case 3:
				m.AddFace(verts[0], verts[1], verts[2])
			case 4:
				m.AddFace(verts[0], verts[1], verts[2])
				m.AddFace(verts[1], verts[2], verts[3])
			default:
				return nil, fmt.Errorf("obj: face with %d vertices not supported", len(verts))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}
	return m, nil
}

// setNormal assigns the nth vn line's value to the nth vertex, matching
// the writer's own layout (all v lines, then all vn lines in the same
// order).
func setNormal(m *mesh.Mesh, idx int, n linalg.Vec3) error {
	if idx < 0 || idx >= len(m.Vertices) {
		return fmt.Errorf("obj: vn line %d has no matching vertex", idx)
	}
	m.Vertices[idx].Normal = n
	return nil
}

func parseVec3(fields []string) (linalg.Vec3, error) {
	if len(fields) < 3 {
		return linalg.Vec3{}, fmt.Errorf("obj: expected 3 components, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return linalg.Vec3{}, fmt.Errorf("obj: parsing %q: %w", fields[0], err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return linalg.Vec3{}, fmt.Errorf("obj: parsing %q: %w", fields[1], err)
	}
	z, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return linalg.Vec3{}, fmt.Errorf("obj: parsing %q: %w", fields[2], err)
	}
	return linalg.Vec3{X: x, Y: y, Z: z}, nil
}

func parseFace(fields []string) ([]int, error) {
	out := make([]int, 0, len(fields))
	for _, tok := range fields {
		vpart := strings.SplitN(tok, "/", 2)[0]
		v, err := strconv.Atoi(vpart)
		if err != nil {
			return nil, fmt.Errorf("obj: parsing face token %q: %w", tok, err)
		}
		out = append(out, v-1)
	}
	return out, nil
}
