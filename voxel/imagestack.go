package voxel

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
)

// LoadSliceStack builds a Grid from a directory of same-sized grayscale PNG
// images, one per Z slice, ordered by filename. This is the stand-in for
// the out-of-scope TIFF loader named by spec.md §1/§6: TIFF decoding has no
// ecosystem library anywhere in the retrieved example corpus, so the
// boundary contract (an Nx*Ny*Nz float32 array in [0,1]) is satisfied here
// with the standard library's image/png instead of a fabricated dependency.
func LoadSliceStack(dir string) (*Grid, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading slice directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".png" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: no .png slices found", dir)
	}

	var grid *Grid
	for z, name := range names {
		img, err := decodePNG(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("decoding slice %s: %w", name, err)
		}
		bounds := img.Bounds()
		nx, ny := bounds.Dx(), bounds.Dy()
		if grid == nil {
			grid = NewGrid(nx, ny, len(names))
		} else if grid.Nx != nx || grid.Ny != ny {
			return nil, fmt.Errorf("slice %s has shape (%d,%d), expected (%d,%d)", name, nx, ny, grid.Nx, grid.Ny)
		}
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				gray := grayAt(img, bounds.Min.X+x, bounds.Min.Y+y)
				grid.Set(x, y, z, gray)
			}
		}
	}
	return grid, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func grayAt(img image.Image, x, y int) float32 {
	r, g, b, _ := img.At(x, y).RGBA()
	// Rec. 601 luma; r,g,b are 16-bit, normalize to [0,1].
	lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	return float32(lum / 65535.0)
}
