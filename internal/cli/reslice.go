package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mprsync/pkg/geometry"
	"mprsync/pkg/mpr"
)

func newResliceCmd(g *globals) *cobra.Command {
	var (
		inputDir  string
		outputDir string
		at        []float64
	)

	cmd := &cobra.Command{
		Use:   "reslice",
		Short: "Write the three orthogonal views through a point",
		Long: `Reslice writes the axial, coronal and sagittal views through the volume
centre, or through the point given with --at.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.cfg
			if inputDir == "" {
				inputDir = cfg.Volume.InputDir
			}
			if outputDir == "" {
				outputDir = cfg.Reslice.OutputDir
			}
			if len(at) != 0 && len(at) != 3 {
				return fmt.Errorf("--at needs 3 components, got %d", len(at))
			}

			p, err := newPipeline(cfg, inputDir, false)
			if err != nil {
				return err
			}
			if len(at) == 3 {
				pos := geometry.Point3{X: at[0], Y: at[1], Z: at[2]}
				if _, err := p.ctrl.Apply(mpr.TranslateEvent(mpr.Axial, pos)); err != nil {
					return err
				}
			}

			paths, err := p.reslicer.SaveViews(outputDir, "view", cfg.Reslice.Quality)
			if err != nil {
				return err
			}
			p.describe(cmd.OutOrStdout())
			for _, path := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory of slice images (default: config volume.inputDir, else phantom)")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory (default: config reslice.outputDir)")
	cmd.Flags().Float64SliceVar(&at, "at", nil, "crosshair position x,y,z in mm")
	return cmd
}
