package cli

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"mprsync/internal/logger"
	"mprsync/internal/models"
	"mprsync/pkg/config"
	"mprsync/pkg/interpolation"
	"mprsync/pkg/mpr"
	"mprsync/pkg/visualization"
	"mprsync/pkg/volume"
)

// pipeline is a loaded volume wired to an engine and a reslicer
type pipeline struct {
	vol      *models.Volume
	ctrl     *mpr.Controller
	reslicer *visualization.Reslicer
}

// overlayLog is an mpr.Display that logs overlay refreshes
type overlayLog struct {
	log *zap.Logger
}

func (d overlayLog) Refresh(o mpr.Overlay, azimuth float64) {
	d.log.Debug("overlay refreshed",
		zap.Any("crosshair", o.Crosshair),
		zap.Any("handle", o.Handle),
		zap.Float64s("lineAngles", o.LineAngles[:]),
		zap.Float64("azimuth", azimuth))
}

// loadVolume reads inputDir, or builds the phantom when it is empty
func loadVolume(cfg *config.Config, inputDir string) (*models.Volume, error) {
	spacing := models.Vec3{X: cfg.Volume.Spacing[0], Y: cfg.Volume.Spacing[1], Z: cfg.Volume.Spacing[2]}
	if inputDir == "" {
		logger.Log.Info("using phantom volume", zap.Int("size", cfg.Volume.PhantomSize))
		return volume.Phantom(cfg.Volume.PhantomSize, spacing)
	}
	return volume.NewLoader(spacing, logger.Log).Load(inputDir)
}

func newPipeline(cfg *config.Config, inputDir string, clamp bool) (*pipeline, error) {
	vol, err := loadVolume(cfg, inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load volume: %w", err)
	}
	frame, err := volume.FrameOf(vol)
	if err != nil {
		return nil, err
	}

	method, err := interpolation.ParseMethod(cfg.Reslice.Interpolation)
	if err != nil {
		return nil, err
	}
	wl, err := visualization.AutoWindow(cfg.Reslice.Window, vol.Data, cfg.Reslice.Percentile)
	if err != nil {
		return nil, err
	}
	reslicer, err := visualization.NewReslicer(vol, cfg.Reslice.Width, cfg.Reslice.Height, method,
		visualization.WithWindowLevel(wl),
		visualization.WithPixelSize(cfg.Reslice.PixelSize),
		visualization.WithLogger(logger.Log))
	if err != nil {
		return nil, err
	}

	state := mpr.NewState(frame, mpr.Options{ReorthonormalizeEvery: cfg.Engine.ReorthonormalizeEvery})
	ctrl := mpr.NewController(state,
		mpr.WithLogger(logger.Log),
		mpr.WithReformatter(reslicer),
		mpr.WithDisplay(overlayLog{log: logger.Log}),
		mpr.WithClamp(clamp || cfg.Engine.ClampToBounds))

	logger.Log.Info("engine ready",
		zap.Any("center", frame.Center),
		zap.Float64s("bounds", frame.Bounds[:]),
		zap.Stringer("interpolation", method),
		zap.String("window", cfg.Reslice.Window),
		zap.Float64("pixelSize", reslicer.PixelSize()))

	reslicer.ReformatAll(ctrl.Planes())
	return &pipeline{vol: vol, ctrl: ctrl, reslicer: reslicer}, nil
}

// describe prints the display settings of p
func (p *pipeline) describe(w io.Writer) {
	wl := p.reslicer.WindowLevel()
	fmt.Fprintf(w, "Window: %.3f Level: %.3f\n", wl.Window, wl.Level)
	fmt.Fprintf(w, "Pixel: %.3f mm\n", p.reslicer.PixelSize())
}
