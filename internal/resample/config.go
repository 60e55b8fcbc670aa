// Package resample builds frustum-aligned voxel grids from a base voxel
// dataset and a render configuration.
package resample

import (
	"fmt"
	gomath "math"
	"path/filepath"

	"github.com/Faultbox/frustumvox/internal/dataset"
	"github.com/Faultbox/frustumvox/pkg/frustum"
)

// Camera constants shared by every view.
const (
	// EyeZ is the camera height above the orbit plane.
	EyeZ = 0.6
	// FocalScale is the horizontal focal scale, 35mm focal length over a
	// 32mm sensor half width.
	FocalScale = 35.0 / 16
	// DefaultScale is used when the render configuration has no scale.
	DefaultScale = 1.0
)

// Config is the frustum voxel configuration of one view: it resamples the
// grids of a base configuration into the frustum of one camera.
type Config struct {
	base      dataset.Voxels
	render    dataset.Views
	viewIndex int
	shape     frustum.Shape
	dataDir   string

	params frustum.Params
}

// NewConfig derives the camera of a view and returns its configuration.
// Outputs are written under dataDir.
func NewConfig(base dataset.Voxels, render dataset.Views, viewIndex int, shape frustum.Shape, dataDir string) (*Config, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	angle, err := render.ViewAngle(viewIndex)
	if err != nil {
		return nil, err
	}
	h, w := render.ImageShape()
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("invalid image shape %dx%d", h, w)
	}

	return &Config{
		base:      base,
		render:    render,
		viewIndex: viewIndex,
		shape:     shape,
		dataDir:   dataDir,
		params:    CameraParams(angle, h, w, scaleOf(render)),
	}, nil
}

func scaleOf(render dataset.Views) float64 {
	if s, ok := render.Scale(); ok {
		return s
	}
	return DefaultScale
}

// CameraParams returns the frustum of a view. The near and far planes sit
// symmetrically around the camera's distance to the origin, scale apart.
func CameraParams(angleDeg float64, height, width int, scale float64) frustum.Params {
	d := gomath.Sqrt(EyeZ*EyeZ + 1)
	near := d - 0.5*scale
	fx := FocalScale
	return frustum.Params{
		FX:           fx,
		FY:           fx * float64(height) / float64(width),
		Near:         near,
		Far:          near + scale,
		EyeZ:         EyeZ,
		Theta:        angleDeg * gomath.Pi / 180,
		LinearZWorld: true,
	}
}

// Params returns the camera parameters of the view.
func (c *Config) Params() frustum.Params {
	return c.params
}

// Shape returns the output grid shape.
func (c *Config) Shape() frustum.Shape {
	return c.shape
}

// ViewIndex returns the view this configuration resamples into.
func (c *Config) ViewIndex() int {
	return c.viewIndex
}

// VoxelID identifies the resampled voxels, e.g. "b32_r0_8_32-32-32".
func (c *Config) VoxelID() string {
	return fmt.Sprintf("%s_%s%d_%s", c.base.VoxelID(), c.render.ConfigID(), c.viewIndex, c.shape)
}

// RootDir returns the output directory of the view.
func (c *Config) RootDir() string {
	sub := fmt.Sprintf("%s_%s_%s", c.base.VoxelID(), c.render.ConfigID(), c.shape)
	return filepath.Join(c.dataDir, "rotated", sub, fmt.Sprintf("v%02d", c.viewIndex))
}

// BinvoxPath returns the output file of one example.
func (c *Config) BinvoxPath(category, exampleID string) string {
	return filepath.Join(c.RootDir(), category, exampleID+".binvox")
}

// Transformer precomputes the index mapping of the view.
func (c *Config) Transformer() (*Transformer, error) {
	return NewTransformer(c.shape, c.params, c.base.VoxelDim())
}
