package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"mprsync/internal/models"
	"mprsync/pkg/geometry"
	"mprsync/pkg/interpolation"
	"mprsync/pkg/mpr"
)

// WindowLevel maps scalar values onto the display range.
// Values at Level-Window/2 render black, at Level+Window/2 white.
type WindowLevel struct {
	Window float64
	Level  float64
}

// RangeWindow spans the full scalar range of data
func RangeWindow(data []float64) WindowLevel {
	if len(data) == 0 {
		return WindowLevel{Window: 1, Level: 0.5}
	}
	lo, hi := floats.Min(data), floats.Max(data)
	return WindowLevel{Window: hi - lo, Level: (lo + hi) / 2}
}

// PercentileWindow spans the [p, 1-p] quantiles of data, which ignores
// isolated outliers. p is clamped to [0, 0.5).
func PercentileWindow(data []float64, p float64) WindowLevel {
	if len(data) == 0 {
		return WindowLevel{Window: 1, Level: 0.5}
	}
	p = math.Max(0, math.Min(p, 0.499))
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	lo := stat.Quantile(p, stat.Empirical, sorted, nil)
	hi := stat.Quantile(1-p, stat.Empirical, sorted, nil)
	return WindowLevel{Window: hi - lo, Level: (lo + hi) / 2}
}

// AutoWindow picks a window from data by mode: "range" spans the full
// scalar range, "percentile" clips fraction p at each end.
func AutoWindow(mode string, data []float64, p float64) (WindowLevel, error) {
	switch strings.ToLower(mode) {
	case "range", "":
		return RangeWindow(data), nil
	case "percentile":
		return PercentileWindow(data, p), nil
	}
	return WindowLevel{}, fmt.Errorf("unknown window mode %q (must be range or percentile)", mode)
}

// Gray maps a scalar to a 16-bit intensity
func (wl WindowLevel) Gray(v float64) uint16 {
	if wl.Window <= 0 {
		if v < wl.Level {
			return 0
		}
		return math.MaxUint16
	}
	t := (v - (wl.Level - wl.Window/2)) / wl.Window
	return uint16(math.Round(math.Max(0, math.Min(1, t)) * math.MaxUint16))
}

// Reslicer resamples a volume along plane transforms. It implements
// mpr.Reformatter and keeps the most recent image per view.
type Reslicer struct {
	vol     *models.Volume
	sampler *interpolation.Sampler

	width  int
	height int
	// pixel is the in-plane pixel size in mm
	pixel float64
	wl    WindowLevel

	log *zap.Logger

	mu     sync.Mutex
	images [3]*image.Gray16
}

// ReslicerOption configures a Reslicer
type ReslicerOption func(*Reslicer)

// WithWindowLevel overrides the default full-range window
func WithWindowLevel(wl WindowLevel) ReslicerOption {
	return func(r *Reslicer) { r.wl = wl }
}

// WithPixelSize sets the in-plane pixel size in mm
func WithPixelSize(mm float64) ReslicerOption {
	return func(r *Reslicer) {
		if mm > 0 {
			r.pixel = mm
		}
	}
}

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) ReslicerOption {
	return func(r *Reslicer) { r.log = l }
}

// NewReslicer creates a reslicer producing width x height images.
// The pixel size defaults to the finest voxel spacing.
func NewReslicer(vol *models.Volume, width, height int, method interpolation.Method, opts ...ReslicerOption) (*Reslicer, error) {
	if vol == nil || vol.Empty() {
		return nil, fmt.Errorf("volume is empty")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("output size must be positive, got %dx%d", width, height)
	}
	if vol.VoxelSize.X <= 0 || vol.VoxelSize.Y <= 0 || vol.VoxelSize.Z <= 0 {
		return nil, fmt.Errorf("voxel size must be positive, got %+v", vol.VoxelSize)
	}

	r := &Reslicer{
		vol:     vol,
		sampler: interpolation.NewSampler(vol, method),
		width:   width,
		height:  height,
		pixel:   math.Min(vol.VoxelSize.X, math.Min(vol.VoxelSize.Y, vol.VoxelSize.Z)),
		wl:      RangeWindow(vol.Data),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// WindowLevel returns the active window
func (r *Reslicer) WindowLevel() WindowLevel { return r.wl }

// PixelSize returns the in-plane pixel size in mm
func (r *Reslicer) PixelSize() float64 { return r.pixel }

// Reslice samples the plane through plane's origin spanned by its first two
// rotation columns. The plane origin lands on the image centre and the
// in-plane Y axis points up.
func (r *Reslicer) Reslice(plane geometry.Affine4) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, r.width, r.height))

	origin := plane.Translation()
	ax, ay := plane.Axis(0), plane.Axis(1)
	cu, cv := float64(r.width-1)/2, float64(r.height-1)/2

	for row := 0; row < r.height; row++ {
		v := (cv - float64(row)) * r.pixel
		for col := 0; col < r.width; col++ {
			u := (float64(col) - cu) * r.pixel
			p := r3.Add(r3.Add(origin, r3.Scale(u, ax)), r3.Scale(v, ay))
			x, y, z := r.toVoxel(p)
			img.SetGray16(col, row, color.Gray16{Y: r.wl.Gray(r.sampler.Sample(x, y, z))})
		}
	}
	return img
}

// toVoxel converts a world point in mm to continuous voxel coordinates
func (r *Reslicer) toVoxel(p geometry.Point3) (x, y, z float64) {
	o, s := r.vol.Origin, r.vol.VoxelSize
	return (p.X - o.X) / s.X, (p.Y - o.Y) / s.Y, (p.Z - o.Z) / s.Z
}

// Reformat reslices one view and stores the result
func (r *Reslicer) Reformat(v mpr.View, plane geometry.Affine4) {
	img := r.Reslice(plane)

	r.mu.Lock()
	r.images[v] = img
	r.mu.Unlock()

	r.log.Debug("view reformatted",
		zap.Stringer("view", v),
		zap.Float64("x", plane[0][3]),
		zap.Float64("y", plane[1][3]),
		zap.Float64("z", plane[2][3]))
}

// ReformatAll reslices the three views in parallel
func (r *Reslicer) ReformatAll(planes [3]geometry.Affine4) {
	var wg sync.WaitGroup
	for _, v := range mpr.Views {
		wg.Add(1)
		go func(v mpr.View) {
			defer wg.Done()
			r.Reformat(v, planes[v])
		}(v)
	}
	wg.Wait()
}

// Image returns the latest image for a view, or nil before the first reformat
func (r *Reslicer) Image(v mpr.View) *image.Gray16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.images[v]
}

// SaveSlice saves an image as a JPEG
func SaveSlice(img image.Image, filename string, quality int) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if quality <= 0 || quality > 100 {
		quality = 90
	}
	return jpeg.Encode(file, img, &jpeg.Options{Quality: quality})
}

// SaveViews writes the latest image of every view to outputDir as
// <prefix>_<view>.jpg and returns the written paths
func (r *Reslicer) SaveViews(outputDir, prefix string, quality int) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	var paths []string
	for _, v := range mpr.Views {
		img := r.Image(v)
		if img == nil {
			continue
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("%s_%s.jpg", prefix, v))
		if err := SaveSlice(img, filename, quality); err != nil {
			return paths, fmt.Errorf("failed to save %s view: %w", v, err)
		}
		paths = append(paths, filename)
	}
	return paths, nil
}
