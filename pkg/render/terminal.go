package render

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
)

// Framebuffer is the half-block terminal canvas a Film is flattened into
// before each redraw, kept at 2x vertical resolution (two image rows per
// terminal row) exactly as the teacher's rasterizer preview did.
type Framebuffer struct {
	Width, Height int
	Pixels        []color.RGBA
}

// NewFramebuffer allocates a blank framebuffer. Height should be 2x the
// desired terminal row count.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{Width: width, Height: height, Pixels: make([]color.RGBA, width*height)}
}

func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// FillFromFilm copies a Film's current average into the framebuffer via
// Color.ToDisplay, one texel per image pixel.
func (fb *Framebuffer) FillFromFilm(f *Film) {
	for y := 0; y < fb.Height && y < f.Height; y++ {
		for x := 0; x < fb.Width && x < f.Width; x++ {
			r, g, b := f.Average(x, y).ToDisplay()
			fb.SetPixel(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
}

// Draw converts the framebuffer to terminal cells: each row of cells packs
// two framebuffer rows into one upper-half-block glyph with foreground set
// to the top pixel and background set to the bottom pixel.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY, botY := row*2, row*2+1
		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: fb.GetPixel(col, topY),
					Bg: fb.GetPixel(col, botY),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// ViewerStats tracks the interactive viewer's HUD readouts: the sample count,
// smoothed through a critically-damped spring (the same harmonica idiom the
// teacher used for camera deceleration) so it glides between the resyncs
// instead of jumping, and the wall-clock time elapsed since creation, which is
// not smoothed.
type ViewerStats struct {
	Samples        float64
	samplesSpring  harmonica.Spring
	samplesVel     float64
	targetSamples  float64
	Elapsed        time.Duration
	start          time.Time
}

// NewViewerStats creates a stats tracker ticking at the given refresh rate.
func NewViewerStats(fps int) *ViewerStats {
	return &ViewerStats{
		samplesSpring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		start:         time.Now(),
	}
}

// SetTargetSamples records the true current sample count; Update glides
// Samples toward it instead of jumping.
func (v *ViewerStats) SetTargetSamples(n int) { v.targetSamples = float64(n) }

// Update advances the smoothed sample readout and the elapsed-time readout
// by one frame.
func (v *ViewerStats) Update() {
	v.Samples, v.samplesVel = v.samplesSpring.Update(v.Samples, v.samplesVel, v.targetSamples)
	v.Elapsed = time.Since(v.start)
}

// ViewerAction is what the interactive loop's key handler decided to do in
// response to a keypress, per spec §6's Space/Enter/b/r/Esc control scheme.
type ViewerAction int

const (
	ActionNone ViewerAction = iota
	ActionContinue            // Space/Enter: render more samples
	ActionSnapshotBMP         // b
	ActionSnapshotRTData      // r
	ActionQuit                // Esc
)

// RunView drives the `-time` interactive preview loop: on every
// resyncEvery-th sample it redraws the terminal from film, and dispatches
// keypresses to onAction. The loop ends on ActionQuit, whenever onAction
// returns false, when the event stream closes, or when ctx is done.
func RunView(ctx context.Context, film *Film, resyncEvery int, onAction func(ViewerAction) bool) error {
	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fb := NewFramebuffer(width, height*2)
	stats := NewViewerStats(30)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	events := term.Events()
	samplesSinceSync := 0
	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		case ev, ok := <-events:
			if !ok {
				cleanup()
				return nil
			}
			if key, isKey := ev.(uv.KeyPressEvent); isKey {
				action := ActionNone
				switch {
				case key.MatchString("space"), key.MatchString("enter"):
					action = ActionContinue
				case key.MatchString("b"):
					action = ActionSnapshotBMP
				case key.MatchString("r"):
					action = ActionSnapshotRTData
				case key.MatchString("escape"), key.MatchString("ctrl+c"):
					action = ActionQuit
				}
				if action == ActionNone {
					continue
				}
				if !onAction(action) || action == ActionQuit {
					cleanup()
					return nil
				}
				samplesSinceSync++
				if samplesSinceSync >= resyncEvery {
					samplesSinceSync = 0
					fb.FillFromFilm(film)
					if len(film.Samples) > 0 {
						stats.SetTargetSamples(film.Samples[0])
					}
					stats.Update()
					term.Erase()
					label := fmt.Sprintf(" %.0f samples  %s ", stats.Samples, stats.Elapsed.Round(time.Second))
					fmt.Fprintf(os.Stdout, "\x1b[1;%dH%s", max1(width-len(label), 1), label)
				}
			}
		}
	}
}

func max1(a, b int) int {
	if a > b {
		return a
	}
	return b
}
