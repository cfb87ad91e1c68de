// Package volume builds scalar volumes for the reformatting collaborators:
// stacks of numbered 2D slice images, or a synthetic phantom.
package volume

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"mprsync/internal/models"
)

// Loader reads a directory of slice images into a volume
type Loader struct {
	// Spacing is the voxel size in mm; Z is the inter-slice gap
	Spacing models.Vec3

	log *zap.Logger
}

// NewLoader creates a loader with the given voxel spacing
func NewLoader(spacing models.Vec3, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{Spacing: spacing, log: log}
}

// Load reads and stacks every slice image in dir
func (l *Loader) Load(dir string) (*models.Volume, error) {
	slices, err := l.LoadSlices(dir)
	if err != nil {
		return nil, err
	}
	vol, err := Stack(slices, l.Spacing)
	if err != nil {
		return nil, err
	}

	l.log.Info("volume loaded",
		zap.String("dir", dir),
		zap.Int("width", vol.Width),
		zap.Int("height", vol.Height),
		zap.Int("depth", vol.Depth),
		zap.Float64("mean", stat.Mean(vol.Data, nil)),
		zap.Float64("stddev", stat.StdDev(vol.Data, nil)))
	return vol, nil
}

// LoadSlices reads the JPEG and PNG images in dir, ordered by the number
// embedded in each filename
func (l *Loader) LoadSlices(dir string) ([]models.Slice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var imageFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			imageFiles = append(imageFiles, entry.Name())
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no slice images found in %s", dir)
	}

	// Filenames carry the slice order
	sort.SliceStable(imageFiles, func(i, j int) bool {
		return extractNumber(imageFiles[i]) < extractNumber(imageFiles[j])
	})

	slices := make([]models.Slice, 0, len(imageFiles))
	for i, filename := range imageFiles {
		img, err := loadImage(filepath.Join(dir, filename))
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", filename, err)
		}
		slices = append(slices, models.Slice{
			Image:     img,
			Index:     i,
			Filename:  filename,
			Thickness: l.Spacing.Z,
			Position:  float64(i) * l.Spacing.Z,
		})
		l.log.Debug("slice loaded", zap.String("file", filename), zap.Int("index", i))
	}
	return slices, nil
}

// Stack copies equally sized slices into a volume, slice i at z = i
func Stack(slices []models.Slice, spacing models.Vec3) (*models.Volume, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("no slices to stack")
	}
	if spacing.X <= 0 || spacing.Y <= 0 || spacing.Z <= 0 {
		return nil, fmt.Errorf("spacing must be positive, got %+v", spacing)
	}

	bounds := slices[0].Image.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	size := width * height

	vol := &models.Volume{
		Data:      make([]float64, size*len(slices)),
		Width:     width,
		Height:    height,
		Depth:     len(slices),
		VoxelSize: spacing,
	}
	for z, s := range slices {
		b := s.Image.Bounds()
		if b.Dx() != width || b.Dy() != height {
			return nil, fmt.Errorf("slice %s is %dx%d, expected %dx%d", s.Filename, b.Dx(), b.Dy(), width, height)
		}
		copy(vol.Data[z*size:(z+1)*size], imageToFloat(s.Image))
	}
	return vol, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

// loadImage decodes a JPEG or PNG file
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// imageToFloat converts a single image to float array in [0,1]
func imageToFloat(img image.Image) []float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			result[y*width+x] = float64(r) / 65535.0
		}
	}

	return result
}
