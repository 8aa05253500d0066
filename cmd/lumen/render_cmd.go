package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/lumen/pkg/imageio"
	"github.com/taigrr/lumen/pkg/pathtrace"
	"github.com/taigrr/lumen/pkg/render"
	"github.com/taigrr/lumen/pkg/sceneio"
)

// newRenderCmd implements the batch-render half of spec.md §6's CLI: cast a
// fixed number of samples per pixel over the whole image and write both a
// BMP and an .rtdata snapshot, exiting nonzero on any error per spec's exit
// code convention.
func newRenderCmd() *cobra.Command {
	var (
		maxBounces int
		rays       int
		workers    int
		seed       int64
		out        string
		lens       bool
		roulette   bool
	)

	cmd := &cobra.Command{
		Use:   "render <scene-file>",
		Short: "Render a scene file to image.bmp and image.rtdata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := sceneio.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("parse scene: %w", err)
			}

			tracer := pathtrace.DefaultTracer(maxBounces)
			tracer.RussianRoulette = roulette

			film := render.NewFilm(parsed.Camera.Width, parsed.Camera.Height)

			started := time.Now()
			err = pathtrace.Render(cmd.Context(), pathtrace.RenderOptions{
				Scene:           parsed.Scene,
				Camera:          parsed.Camera,
				Tracer:          tracer,
				Seed:            uint64(seed),
				SamplesPerPixel: rays,
				Workers:         workers,
				Lens:            lens,
			}, film)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			slog.Info("render finished", "elapsed", time.Since(started).Round(time.Millisecond))

			bmpPath := strings.TrimSuffix(out, ".bmp") + ".bmp"
			rtPath := strings.TrimSuffix(out, ".bmp") + ".rtdata"
			if err := imageio.WriteBMP(bmpPath, film); err != nil {
				return err
			}
			if err := imageio.WriteRTData(rtPath, film, rays); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "wrote %s and %s\n", bmpPath, rtPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxBounces, "max-bounces", 5, "maximum path length")
	cmd.Flags().IntVar(&rays, "rays", 64, "samples per pixel")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "row-parallel worker goroutines")
	cmd.Flags().Int64Var(&seed, "seed", 1, "base RNG seed")
	cmd.Flags().StringVarP(&out, "out", "o", "image.bmp", "output file (a trailing .bmp is stripped; writes both .bmp and .rtdata)")
	cmd.Flags().BoolVar(&lens, "lens", false, "use the thin-lens depth-of-field ray generator")
	cmd.Flags().BoolVar(&roulette, "russian-roulette", false, "enable Russian roulette path termination")

	return cmd
}
