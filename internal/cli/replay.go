package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mprsync/internal/logger"
	"mprsync/pkg/session"
)

func newReplayCmd(g *globals) *cobra.Command {
	var (
		scriptPath string
		inputDir   string
		outputDir  string
		clamp      bool
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a scripted interaction and write the final views",
		Long: `Replay loads a volume (a directory of numbered slice images, or the
built-in phantom), applies every event of a YAML interaction script to the
synchronized views and writes the final axial, coronal and sagittal images.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.cfg
			if inputDir == "" {
				inputDir = cfg.Volume.InputDir
			}
			if outputDir == "" {
				outputDir = cfg.Reslice.OutputDir
			}

			script, err := session.Load(scriptPath)
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg, inputDir, clamp)
			if err != nil {
				return err
			}

			res, err := session.NewReplayer(p.ctrl, session.WithLogger(logger.Log)).Run(cmd.Context(), script)
			if err != nil {
				return fmt.Errorf("replay failed: %w", err)
			}
			if err := p.ctrl.Verify(cfg.Engine.OrthogonalityTolerance); err != nil {
				return fmt.Errorf("state inconsistent after replay: %w", err)
			}

			paths, err := p.reslicer.SaveViews(outputDir, "final", cfg.Reslice.Quality)
			if err != nil {
				return err
			}
			logger.Log.Info("views written", zap.Strings("files", paths))

			cross := p.ctrl.Crosshair()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Replayed %d updates from %s\n", res.Applied, scriptPath)
			fmt.Fprintf(out, "Crosshair: (%.3f, %.3f, %.3f)\n", cross.Position.X, cross.Position.Y, cross.Position.Z)
			fmt.Fprintf(out, "Rotation: %.3f degrees\n", cross.RotationAngle)
			p.describe(out)
			for _, path := range paths {
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "interaction script (YAML)")
	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory of slice images (default: config volume.inputDir, else phantom)")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory (default: config reslice.outputDir)")
	cmd.Flags().BoolVar(&clamp, "clamp", false, "keep the crosshair inside the volume bounds")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}
