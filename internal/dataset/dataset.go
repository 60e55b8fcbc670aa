// Package dataset provides the voxel and render configurations that
// frustum resampling reads from.
package dataset

import (
	"errors"

	"github.com/Faultbox/frustumvox/pkg/voxel"
)

// Dataset errors.
var (
	ErrExampleNotFound = errors.New("example not found")
	ErrDimMismatch     = errors.New("voxel grid does not match configured dimension")
	ErrViewIndex       = errors.New("view index out of range")
	ErrClosed          = errors.New("dataset closed")
)

// Source is an open, read-only set of examples for one category.
type Source interface {
	// Keys returns the example ids in a stable order.
	Keys() []string
	// Load returns the voxel grid of one example.
	Load(exampleID string) (voxel.Gatherer, error)
	Close() error
}

// Voxels is a base voxel configuration: a fixed cubic resolution and a
// store of per-example grids.
type Voxels interface {
	VoxelID() string
	VoxelDim() int
	Open(category string) (Source, error)
}

// Views is a render configuration: the camera orbit angle of each view
// and the image aspect used for the vertical focal scale.
type Views interface {
	ConfigID() string
	// ImageShape returns the image height and width in pixels.
	ImageShape() (height, width int)
	// Scale returns the object scale and whether one is configured.
	Scale() (float64, bool)
	// ViewAngle returns the orbit angle of a view in degrees.
	ViewAngle(viewIndex int) (float64, error)
}
