// Package api exposes byte-in/byte-out pipeline entrypoints for
// embedding isomesh into a host process (a CLI, a wasm build, a test
// harness) without that host needing to know about the on-disk config
// or logging setup.
//
// Grounded on VoxelsPlace-VOPL/go/api/api.go's shape: small functions
// that take and return raw bytes so a caller across a process or
// language boundary never touches this module's internal types.
package api

import (
	"bytes"
	"fmt"
	"os"

	"github.com/isomesh/isomesh/gltfio"
	"github.com/isomesh/isomesh/mc"
	"github.com/isomesh/isomesh/mesh"
	"github.com/isomesh/isomesh/objio"
	"github.com/isomesh/isomesh/qem"
	"github.com/isomesh/isomesh/voxel"
)

// ExtractOptions configures a single ExtractOBJ/ExtractGLB call.
type ExtractOptions struct {
	Isovalue      float64
	SimplifyRatio float64 // 0 disables simplification
	Parallel      bool
}

// ExtractOBJ runs Marching Cubes (and, if opts.SimplifyRatio > 0, QEM
// simplification) over a grid built from a directory of grayscale slice
// images, returning the result as OBJ bytes.
func ExtractOBJ(sliceDir string, opts ExtractOptions) ([]byte, error) {
	m, err := extractMesh(sliceDir, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := objio.WriteTo(&buf, m); err != nil {
		return nil, fmt.Errorf("encoding OBJ: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractGLB is ExtractOBJ's binary-glTF counterpart. gltf's binary
// encoder only writes to a named file, so this stages the result
// through a temporary file rather than guessing at an in-memory writer.
func ExtractGLB(sliceDir string, opts ExtractOptions) ([]byte, error) {
	m, err := extractMesh(sliceDir, opts)
	if err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp("", "isomesh-*.glb")
	if err != nil {
		return nil, fmt.Errorf("staging GLB output: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := gltfio.Write(tmpPath, m); err != nil {
		return nil, err
	}
	return os.ReadFile(tmpPath)
}

func extractMesh(sliceDir string, opts ExtractOptions) (*mesh.Mesh, error) {
	g, err := voxel.LoadSliceStack(sliceDir)
	if err != nil {
		return nil, err
	}
	var m *mesh.Mesh
	if opts.Parallel {
		m, err = mc.ExtractParallel(g, opts.Isovalue)
	} else {
		m, err = mc.Extract(g, opts.Isovalue)
	}
	if err != nil {
		return nil, err
	}
	if opts.SimplifyRatio > 0 {
		if err := qem.Simplify(m, opts.SimplifyRatio); err != nil {
			return nil, err
		}
	}
	return m, nil
}
