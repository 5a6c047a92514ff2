package api

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeSphereSlices(t *testing.T, dir string, n int, radius float64) {
	t.Helper()
	c := float64(n-1) / 2
	for z := 0; z < n; z++ {
		img := image.NewGray(image.Rect(0, 0, n, n))
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				d := math.Sqrt((float64(x)-c)*(float64(x)-c) + (float64(y)-c)*(float64(y)-c) + (float64(z)-c)*(float64(z)-c))
				v := 0.5 - (d-radius)/radius
				if v < 0 {
					v = 0
				}
				if v > 1 {
					v = 1
				}
				img.SetGray(x, y, color.Gray{Y: uint8(v * 255)})
			}
		}
		name := fmt.Sprintf("slice_%03d.png", z)
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
}

func TestExtractOBJProducesTriangles(t *testing.T) {
	dir := t.TempDir()
	writeSphereSlices(t, dir, 10, 3)

	data, err := ExtractOBJ(dir, ExtractOptions{Isovalue: 0.5, SimplifyRatio: 0.5, Parallel: true})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("f ")) {
		t.Fatal("expected at least one OBJ face line")
	}
	if !bytes.Contains(data, []byte("v ")) {
		t.Fatal("expected at least one OBJ vertex line")
	}
}

func TestExtractGLBProducesGlbHeader(t *testing.T) {
	dir := t.TempDir()
	writeSphereSlices(t, dir, 10, 3)

	data, err := ExtractGLB(dir, ExtractOptions{Isovalue: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || string(data[:4]) != "glTF" {
		t.Fatalf("expected a glTF binary header, got %q", data[:min(4, len(data))])
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
