package dataset

import (
	"errors"
	"fmt"
)

// Render is a render configuration with explicit or evenly spaced views.
type Render struct {
	ID     string
	Height int
	Width  int

	// ObjectScale is the object bounding scale; zero means unset.
	ObjectScale float64

	// Angles lists the orbit angle of each view in degrees. When empty,
	// NumViews views are spaced evenly around the full circle.
	Angles   []float64
	NumViews int
}

// Validate checks the configuration.
func (r *Render) Validate() error {
	if r.ID == "" {
		return errors.New("render config id is empty")
	}
	if r.Height <= 0 || r.Width <= 0 {
		return fmt.Errorf("invalid image shape %dx%d", r.Height, r.Width)
	}
	if r.ObjectScale < 0 {
		return fmt.Errorf("invalid object scale %g", r.ObjectScale)
	}
	if len(r.Angles) == 0 && r.NumViews <= 0 {
		return errors.New("render config needs view angles or a view count")
	}
	return nil
}

// ConfigID returns the configuration id.
func (r *Render) ConfigID() string {
	return r.ID
}

// ImageShape returns the image height and width.
func (r *Render) ImageShape() (int, int) {
	return r.Height, r.Width
}

// Scale returns the object scale and whether it is set.
func (r *Render) Scale() (float64, bool) {
	return r.ObjectScale, r.ObjectScale > 0
}

// Views returns the number of views.
func (r *Render) Views() int {
	if len(r.Angles) > 0 {
		return len(r.Angles)
	}
	return r.NumViews
}

// ViewAngle returns the orbit angle of a view in degrees.
func (r *Render) ViewAngle(viewIndex int) (float64, error) {
	if viewIndex < 0 || viewIndex >= r.Views() {
		return 0, fmt.Errorf("%w: %d of %d", ErrViewIndex, viewIndex, r.Views())
	}
	if len(r.Angles) > 0 {
		return r.Angles[viewIndex], nil
	}
	return float64(viewIndex) * 360 / float64(r.NumViews), nil
}
