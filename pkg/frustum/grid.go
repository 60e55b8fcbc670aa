// Package frustum maps the cells of a regular frustum-aligned grid to world
// coordinates for a camera orbiting the origin.
package frustum

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/Faultbox/frustumvox/pkg/math"
)

// Grid errors.
var (
	ErrInvalidShape      = errors.New("invalid grid shape")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrSingularTransform = errors.New("singular transform")
)

// Shape is the number of cells along each axis of a frustum grid.
// X and Y follow the image plane, Z follows depth away from the camera.
type Shape struct {
	NX, NY, NZ int
}

// String returns the shape as "nx-ny-nz".
func (s Shape) String() string {
	return fmt.Sprintf("%d-%d-%d", s.NX, s.NY, s.NZ)
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	if s.NX <= 0 || s.NY <= 0 || s.NZ <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidShape, s)
	}
	return nil
}

// Len returns the number of cells.
func (s Shape) Len() int {
	return s.NX * s.NY * s.NZ
}

// Index returns the flat cell index of (ix, iy, iz). X varies slowest and
// Z fastest, which is also the column order of GridWorldCoords.
func (s Shape) Index(ix, iy, iz int) int {
	return (ix*s.NY+iy)*s.NZ + iz
}

// Params describes the camera used to build a frustum grid.
type Params struct {
	FX, FY    float64 // focal scales
	Near, Far float64 // clip distances
	EyeZ      float64 // camera height
	Theta     float64 // orbit angle in radians

	// LinearZWorld spaces depth samples evenly in world units instead of
	// evenly in normalized device coordinates.
	LinearZWorld bool
}

// Projection returns the frustum transform for the parameters.
func (p Params) Projection() math.Mat4 {
	return math.Frustum(p.FX, p.FY, p.Near, p.Far)
}

// Pose returns the orbit camera pose for the parameters.
func (p Params) Pose() Pose {
	return CameraPose(p.EyeZ, p.Theta)
}

// NDCAxis returns the normalized device coordinates of n cell centers,
// 2*(i+0.5)/n - 1 for i in [0, n).
func NDCAxis(n int) []float64 {
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = 2*(float64(i)+0.5)/float64(n) - 1
	}
	return axis
}

// WorldDepths returns the camera-space distances of nz depth cell centers
// spaced evenly between near and far.
func WorldDepths(nz int, near, far float64) []float64 {
	depths := make([]float64, nz)
	for i := range depths {
		depths[i] = near + (float64(i)+0.5)/float64(nz)*(far-near)
	}
	return depths
}

// DepthAxis returns the NDC z value of each of the nz depth cells.
//
// With linear set, the cells are evenly spaced in world depth and each one
// is pushed through the projection to find its (non-uniform) NDC z.
// Otherwise the cells are evenly spaced in NDC.
func DepthAxis(nz int, near, far float64, linear bool) []float64 {
	if !linear {
		return NDCAxis(nz)
	}
	proj := math.Frustum(1, 1, near, far)
	axis := WorldDepths(nz, near, far)
	for i, d := range axis {
		// The camera looks down -z.
		zh := proj.MulVec4(math.Vec4{0, 0, -d, 1})
		axis[i] = zh[2] / zh[3]
	}
	return axis
}

// NDCGrid returns the homogeneous NDC coordinates of every cell center as
// a 4xN matrix, one column per cell in Shape.Index order.
func NDCGrid(shape Shape, near, far float64, linearZWorld bool) (*mat.Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	x := NDCAxis(shape.NX)
	y := NDCAxis(shape.NY)
	// NDC has a bottom-left origin while grid rows run top to bottom.
	for i := range y {
		y[i] = -y[i]
	}
	z := DepthAxis(shape.NZ, near, far, linearZWorld)

	ndc := mat.NewDense(4, shape.Len(), nil)
	col := 0
	for _, xv := range x {
		for _, yv := range y {
			for _, zv := range z {
				ndc.Set(0, col, xv)
				ndc.Set(1, col, yv)
				ndc.Set(2, col, zv)
				ndc.Set(3, col, 1)
				col++
			}
		}
	}
	return ndc, nil
}

// ViewCoords returns the camera-space homogeneous coordinates of every grid
// cell by solving Projection * p = ndc.
func ViewCoords(shape Shape, p Params) (*mat.Dense, error) {
	if err := math.ValidateFrustum(p.FX, p.FY, p.Near, p.Far); err != nil {
		return nil, err
	}
	ndc, err := NDCGrid(shape, p.Near, p.Far, p.LinearZWorld)
	if err != nil {
		return nil, err
	}
	return solve(p.Projection(), ndc, "frustum")
}

// GridWorldCoords returns the world-space homogeneous coordinates of every
// grid cell as a 4x(nx*ny*nz) matrix. It inverts the projection and then
// the view transform of the orbit camera. The result still needs
// Dehomogenize.
func GridWorldCoords(shape Shape, p Params) (*mat.Dense, error) {
	view, err := p.Pose().ViewTransform()
	if err != nil {
		return nil, err
	}
	xyzh, err := ViewCoords(shape, p)
	if err != nil {
		return nil, err
	}
	return solve(view, xyzh, "view")
}

// Dehomogenize divides the first three rows of a 4xN matrix by the fourth.
func Dehomogenize(xyzh mat.Matrix) (*mat.Dense, error) {
	rows, cols := xyzh.Dims()
	if rows != 4 {
		return nil, fmt.Errorf("%w: xyzh must have leading dimension 4, got %d", ErrShapeMismatch, rows)
	}
	xyz := mat.NewDense(3, cols, nil)
	for c := 0; c < cols; c++ {
		w := xyzh.At(3, c)
		for r := 0; r < 3; r++ {
			xyz.Set(r, c, xyzh.At(r, c)/w)
		}
	}
	return xyz, nil
}

// solve returns x such that m * x = b.
func solve(m math.Mat4, b mat.Matrix, name string) (*mat.Dense, error) {
	var x mat.Dense
	if err := x.Solve(m.Dense(), b); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSingularTransform, name, err)
	}
	return &x, nil
}
