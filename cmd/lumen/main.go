// lumen - Physically based Monte Carlo path tracer.
//
// lumen renders scene description files (see pkg/sceneio for the grammar)
// either as a one-shot batch render or as an interactive terminal preview
// that redraws as samples accumulate.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lumen",
		Short:         "Physically based Monte Carlo path tracer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd())
	root.AddCommand(newViewCmd())
	root.AddCommand(newMergeCmd())
	return root
}
