// Package cli implements the mprsync command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mprsync/internal/logger"
	"mprsync/pkg/config"
)

// globals holds the persistent flags and the configuration they resolve to
type globals struct {
	configPath string
	debug      bool
	logFile    string

	cfg *config.Config
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "mprsync",
		Short: "Multi-planar reformatting crosshair synchronization",
		Long: `mprsync keeps the axial, coronal and sagittal reformatted views of a
volume locked to one shared crosshair while it is translated, rotated and
stepped through slices. It replays scripted interactions and writes the
resulting reformatted images.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "mprsync.yaml", "config file")
	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&g.logFile, "log-file", "", "write a rotated JSON log to this file")

	rootCmd.AddCommand(newReplayCmd(g), newResliceCmd(g), newConfigCmd(g))
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func (g *globals) init() error {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return err
	}
	if g.debug {
		cfg.Logging.Level = "debug"
	}
	if g.logFile != "" {
		cfg.Logging.LogFile = g.logFile
	}
	g.cfg = cfg

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	return nil
}
