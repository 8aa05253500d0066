package render

import (
	"image"
	stdcolor "image/color"
	"image/png"
	"os"

	"github.com/taigrr/lumen/pkg/color"
)

// Film is the HDR accumulator written to by the path tracer: each pixel sums
// the radiance of every sample cast at it plus a running sample count, so
// adding samples (across render passes, or merged from separate .rtdata
// files) never needs to rescale existing data.
type Film struct {
	Width, Height int
	Sum           []color.Color
	Samples       []int
}

// NewFilm allocates a blank accumulator.
func NewFilm(width, height int) *Film {
	return &Film{
		Width: width, Height: height,
		Sum:     make([]color.Color, width*height),
		Samples: make([]int, width*height),
	}
}

// Accumulate adds one sample's radiance to pixel (x,y).
func (f *Film) Accumulate(x, y int, c color.Color) {
	idx := y*f.Width + x
	f.Sum[idx] = f.Sum[idx].Add(c)
	f.Samples[idx]++
}

// Average returns the mean radiance at (x,y), or black if it has no samples.
func (f *Film) Average(x, y int) color.Color {
	idx := y*f.Width + x
	n := f.Samples[idx]
	if n == 0 {
		return color.Black
	}
	return f.Sum[idx].Div(float64(n))
}

// Merge adds another Film's accumulated sums and sample counts into f,
// pixel by pixel, backing the `lumen merge` subcommand's combination of
// several .rtdata partial renders into one.
func (f *Film) Merge(other *Film) error {
	if other.Width != f.Width || other.Height != f.Height {
		return errDimensionMismatch
	}
	for i := range f.Sum {
		f.Sum[i] = f.Sum[i].Add(other.Sum[i])
		f.Samples[i] += other.Samples[i]
	}
	return nil
}

var errDimensionMismatch = filmError("film dimensions do not match")

type filmError string

func (e filmError) Error() string { return string(e) }

// ToImage converts the accumulated HDR data to a display-space image.Image
// via Color.ToDisplay, the same linear-to-sRGB bridge the terminal preview
// uses.
func (f *Film) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b := f.Average(x, y).ToDisplay()
			img.SetRGBA(x, y, stdcolor.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// WritePNG encodes the current accumulator state as a PNG file. The CLI's
// render and view commands write BMP and .rtdata output instead.
func (f *Film) WritePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, f.ToImage())
}
