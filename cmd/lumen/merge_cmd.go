package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taigrr/lumen/pkg/imageio"
)

// newMergeCmd implements the `merge` utility spec.md §6 names: combine
// several .rtdata partial renders by pixelwise sum and emit a BMP.
func newMergeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "merge <rtdata-file>...",
		Short: "Merge .rtdata partial renders into one BMP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			film, err := imageio.MergeRTData(args)
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			if err := imageio.WriteBMP(out, film); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "merged.bmp", "output BMP path")
	return cmd
}
