package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taigrr/lumen/pkg/imageio"
	"github.com/taigrr/lumen/pkg/pathtrace"
	"github.com/taigrr/lumen/pkg/render"
	"github.com/taigrr/lumen/pkg/sceneio"
)

// newViewCmd implements the `-time` interactive viewer loop from spec.md §6:
// one sample per pixel is cast per Space/Enter keypress, accumulating into
// the same Film shown on screen; `b`/`r` snapshot the current accumulator
// without advancing it, Esc exits, and the terminal resyncs every ten
// samples via render.RunView.
func newViewCmd() *cobra.Command {
	var (
		maxBounces int
		workers    int
		seed       int64
		lens       bool
		out        string
	)

	cmd := &cobra.Command{
		Use:   "view <scene-file>",
		Short: "Interactively render a scene file in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := sceneio.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("parse scene: %w", err)
			}

			tracer := pathtrace.DefaultTracer(maxBounces)
			film := render.NewFilm(parsed.Camera.Width, parsed.Camera.Height)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var pass uint64
			onAction := func(action render.ViewerAction) bool {
				switch action {
				case render.ActionContinue:
					err := pathtrace.Render(ctx, pathtrace.RenderOptions{
						Scene:           parsed.Scene,
						Camera:          parsed.Camera,
						Tracer:          tracer,
						Seed:            uint64(seed) + pass,
						SamplesPerPixel: 1,
						Workers:         workers,
						Lens:            lens,
					}, film)
					if err != nil {
						slog.Error("render pass failed", "error", err)
						return false
					}
					pass++
					return true
				case render.ActionSnapshotBMP:
					if err := imageio.WriteBMP(out+".bmp", film); err != nil {
						slog.Error("bmp snapshot failed", "error", err)
					}
					return true
				case render.ActionSnapshotRTData:
					rays := 0
					if len(film.Samples) > 0 {
						rays = film.Samples[0]
					}
					if err := imageio.WriteRTData(out+".rtdata", film, rays); err != nil {
						slog.Error("rtdata snapshot failed", "error", err)
					}
					return true
				default:
					return true
				}
			}

			return render.RunView(ctx, film, 10, onAction)
		},
	}

	cmd.Flags().IntVar(&maxBounces, "max-bounces", 5, "maximum path length")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "row-parallel worker goroutines")
	cmd.Flags().Int64Var(&seed, "seed", 1, "base RNG seed")
	cmd.Flags().BoolVar(&lens, "lens", false, "use the thin-lens depth-of-field ray generator")
	cmd.Flags().StringVarP(&out, "out", "o", "image", "snapshot file prefix for the b/r keys")

	return cmd
}
