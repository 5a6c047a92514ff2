// Package meshcache stores a compressed, content-addressed copy of an
// already extracted-and-simplified mesh on disk, keyed on a fingerprint
// of the inputs that produced it, so a repeated pipeline run over the
// same volume/isovalue/ratio can skip both Marching Cubes and QEM.
//
// Grounded on VoxelsPlace-VOPL/go/vopl/pack.go's own binary
// header-plus-compressed-payload container shape and its use of
// xxhash for content fingerprints and klauspost/compress for the
// payload codec, adapted from a multi-entry pack format to a
// single-mesh cache entry.
package meshcache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/isomesh/isomesh/errs"
	"github.com/isomesh/isomesh/mesh"
	"github.com/isomesh/isomesh/voxel"
)

const cacheMagic = "ISMC"
const cacheVersion = 1

// Cache is a directory-backed store of compressed mesh entries.
type Cache struct {
	Dir string
}

// New returns a Cache rooted at dir, creating it if necessary.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}
	return &Cache{Dir: dir}, nil
}

// Key fingerprints the inputs that determine a pipeline's mesh output:
// the raw grid samples plus the isovalue and simplification ratio used
// to produce it. Grids that differ in shape or content, or runs with a
// different isovalue/ratio, hash to different keys.
func Key(gridFingerprint uint64, isovalue, ratio float64) string {
	h := xxhash.New()
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], gridFingerprint)
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(isovalue))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(ratio))
	_, _ = h.Write(buf[:])
	return fmt.Sprintf("%016x", h.Sum64())
}

// GridFingerprint hashes a grid's shape and samples so Key can
// distinguish runs over different volumes.
func GridFingerprint(g *voxel.Grid) uint64 {
	h := xxhash.New()
	var dims [12]byte
	binary.LittleEndian.PutUint32(dims[0:4], uint32(g.Nx))
	binary.LittleEndian.PutUint32(dims[4:8], uint32(g.Ny))
	binary.LittleEndian.PutUint32(dims[8:12], uint32(g.Nz))
	_, _ = h.Write(dims[:])
	buf := make([]byte, 4*len(g.Data))
	for i, v := range g.Data {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	_, _ = h.Write(buf)
	return h.Sum64()
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key+".ismc")
}

// Has reports whether an entry for key already exists on disk.
func (c *Cache) Has(key string) bool {
	_, err := os.Stat(c.path(key))
	return err == nil
}

// Put compresses and writes m under key.
func (c *Cache) Put(key string, m *mesh.Mesh) error {
	raw := marshal(m)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(raw, nil)

	var out bytes.Buffer
	out.WriteString(cacheMagic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(cacheVersion))
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(raw)))
	_ = binary.Write(&out, binary.LittleEndian, xxhash.Sum64(raw))
	_, _ = out.Write(compressed)

	if err := os.WriteFile(c.path(key), out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Get reads and decompresses the mesh stored under key, returning
// (nil, nil) if no such entry exists.
func (c *Cache) Get(key string) (*mesh.Mesh, error) {
	data, err := os.ReadFile(c.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	if len(data) < 4+1+4+8 || string(data[:4]) != cacheMagic {
		return nil, fmt.Errorf("%w: cache entry %s has a corrupt header", errs.ErrInvalidInput, key)
	}
	r := bytes.NewReader(data[4:])
	var ver uint8
	var rawLen uint32
	var wantSum uint64
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return nil, err
	}
	if ver != cacheVersion {
		return nil, fmt.Errorf("%w: unsupported cache entry version %d", errs.ErrInvalidInput, ver)
	}
	if err := binary.Read(r, binary.LittleEndian, &rawLen); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &wantSum); err != nil {
		return nil, err
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(rest, make([]byte, 0, rawLen))
	if err != nil {
		return nil, fmt.Errorf("decompressing cache entry %s: %w", key, err)
	}
	if xxhash.Sum64(raw) != wantSum {
		return nil, fmt.Errorf("%w: cache entry %s failed checksum", errs.ErrInconsistentMesh, key)
	}
	return unmarshal(raw)
}

// marshal encodes a mesh as a flat binary blob: vertex count, then each
// vertex's (val, coord, normal) as float64s, then face count, then each
// face's three indices as uint32s.
func marshal(m *mesh.Mesh) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(m.Vertices)))
	for _, v := range m.Vertices {
		_ = binary.Write(&buf, binary.LittleEndian, v.Val)
		_ = binary.Write(&buf, binary.LittleEndian, v.Coord.X)
		_ = binary.Write(&buf, binary.LittleEndian, v.Coord.Y)
		_ = binary.Write(&buf, binary.LittleEndian, v.Coord.Z)
		_ = binary.Write(&buf, binary.LittleEndian, v.Normal.X)
		_ = binary.Write(&buf, binary.LittleEndian, v.Normal.Y)
		_ = binary.Write(&buf, binary.LittleEndian, v.Normal.Z)
	}
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(m.Faces)))
	for _, f := range m.Faces {
		_ = binary.Write(&buf, binary.LittleEndian, uint32(f.A))
		_ = binary.Write(&buf, binary.LittleEndian, uint32(f.B))
		_ = binary.Write(&buf, binary.LittleEndian, uint32(f.C))
	}
	return buf.Bytes()
}

func unmarshal(data []byte) (*mesh.Mesh, error) {
	r := bytes.NewReader(data)
	var nv uint32
	if err := binary.Read(r, binary.LittleEndian, &nv); err != nil {
		return nil, err
	}
	m := mesh.New()
	m.Vertices = make([]mesh.Vertex, nv)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		fields := []*float64{&v.Val, &v.Coord.X, &v.Coord.Y, &v.Coord.Z, &v.Normal.X, &v.Normal.Y, &v.Normal.Z}
		for _, f := range fields {
			if err := binary.Read(r, binary.LittleEndian, f); err != nil {
				return nil, fmt.Errorf("%w: truncated vertex record", errs.ErrInconsistentMesh)
			}
		}
	}
	var nf uint32
	if err := binary.Read(r, binary.LittleEndian, &nf); err != nil {
		return nil, err
	}
	m.Faces = make([]mesh.Face, nf)
	for i := range m.Faces {
		var a, b, c uint32
		if err := binary.Read(r, binary.LittleEndian, &a); err != nil {
			return nil, fmt.Errorf("%w: truncated face record", errs.ErrInconsistentMesh)
		}
		_ = binary.Read(r, binary.LittleEndian, &b)
		_ = binary.Read(r, binary.LittleEndian, &c)
		m.Faces[i] = mesh.Face{A: int(a), B: int(b), C: int(c)}
	}
	return m, nil
}
