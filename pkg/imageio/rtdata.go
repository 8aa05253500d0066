// Package imageio implements the two on-disk formats the renderer's outer
// surface produces: the `.rtdata` raw-accumulator text format (so partial
// renders can be merged without losing precision to a display-space
// roundtrip) and BMP snapshot encoding. Both are declared out of the core's
// scope by spec.md §1, but the `merge` operation it names needs a concrete
// format to operate on.
package imageio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/lumen/pkg/color"
	"github.com/taigrr/lumen/pkg/render"
)

// FormatError reports a malformed .rtdata file with the offending line,
// matching the parse-error taxonomy spec.md §7 requires: a human-readable
// message naming the offending line, never a silently-assumed default.
type FormatError struct {
	Path string
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// WriteRTData writes film's accumulated radiance sums (not the averaged
// display-space image) to path in the row-major `width:<W> height:<H>
// number_of_rays:<N>` text format, one `r g b` triple per pixel at index
// i+j*W. Every pixel in a single render pass carries the same sample count
// (Render always casts SamplesPerPixel samples everywhere), so raysPerPixel
// is recorded once in the header rather than per pixel.
func WriteRTData(path string, film *render.Film, raysPerPixel int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "width:%d height:%d number_of_rays:%d\n", film.Width, film.Height, raysPerPixel); err != nil {
		return err
	}
	for j := 0; j < film.Height; j++ {
		for i := 0; i < film.Width; i++ {
			c := film.Sum[i+j*film.Width]
			if _, err := fmt.Fprintf(w, "%g %g %g\n", c.R, c.G, c.B); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

// ReadRTData reads a .rtdata file back into a Film whose Sum holds the raw
// accumulated radiance and whose Samples are all set to the header's
// number_of_rays, so the result can be fed straight into Film.Merge or
// averaged via Film.Average/ToImage.
func ReadRTData(path string) (*render.Film, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	if !scanner.Scan() {
		return nil, &FormatError{Path: path, Line: 1, Msg: "missing header line"}
	}
	width, height, rays, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, &FormatError{Path: path, Line: 1, Msg: err.Error()}
	}

	film := render.NewFilm(width, height)
	lineNo := 1
	for i := 0; i < width*height; i++ {
		if !scanner.Scan() {
			return nil, &FormatError{Path: path, Line: lineNo + 1, Msg: fmt.Sprintf("expected %d pixel lines, got %d", width*height, i)}
		}
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			return nil, &FormatError{Path: path, Line: lineNo, Msg: "expected 3 components \"r g b\""}
		}
		r, err1 := strconv.ParseFloat(fields[0], 64)
		g, err2 := strconv.ParseFloat(fields[1], 64)
		b, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, &FormatError{Path: path, Line: lineNo, Msg: "malformed pixel component"}
		}
		film.Sum[i] = color.RGB(r, g, b)
		film.Samples[i] = rays
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return film, nil
}

func parseHeader(line string) (width, height, rays int, err error) {
	fields := strings.Fields(line)
	got := map[string]string{}
	for _, f := range fields {
		i := strings.IndexByte(f, ':')
		if i < 0 {
			return 0, 0, 0, fmt.Errorf("malformed header field %q", f)
		}
		got[f[:i]] = f[i+1:]
	}
	width, err = requireInt(got, "width")
	if err != nil {
		return 0, 0, 0, err
	}
	height, err = requireInt(got, "height")
	if err != nil {
		return 0, 0, 0, err
	}
	rays, err = requireInt(got, "number_of_rays")
	if err != nil {
		return 0, 0, 0, err
	}
	return width, height, rays, nil
}

func requireInt(m map[string]string, key string) (int, error) {
	s, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing %s:<int> in header", key)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %v", key, err)
	}
	return v, nil
}

// MergeRTData loads every file in paths and sums them into one Film, the
// backing operation for the `lumen merge` subcommand. All files must share
// the same resolution.
func MergeRTData(paths []string) (*render.Film, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("merge needs at least one .rtdata file")
	}
	total, err := ReadRTData(paths[0])
	if err != nil {
		return nil, err
	}
	for _, p := range paths[1:] {
		film, err := ReadRTData(p)
		if err != nil {
			return nil, err
		}
		if err := total.Merge(film); err != nil {
			return nil, fmt.Errorf("merge %q: %w", p, err)
		}
	}
	return total, nil
}
