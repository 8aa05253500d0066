package imageio

import (
	"fmt"
	"os"

	"golang.org/x/image/bmp"

	"github.com/taigrr/lumen/pkg/render"
)

// WriteBMP encodes film's current averaged display-space image as a BMP
// file, the format the interactive viewer's `b` snapshot key and the batch
// renderer's final output both produce, per spec.md §6. golang.org/x/image
// is already part of the teacher's dependency stack (pulled in for its
// rasterizer's texture decoding) and has no io/fs dependency the core needs
// to avoid.
func WriteBMP(path string, film *render.Film) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer f.Close()
	if err := bmp.Encode(f, film.ToImage()); err != nil {
		return fmt.Errorf("encode bmp %q: %w", path, err)
	}
	return nil
}
