package resample

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/frustumvox/pkg/frustum"
	"github.com/Faultbox/frustumvox/pkg/voxel"
)

// Transformer maps every cell of a frustum grid to the source voxel it
// samples. It is immutable once built and safe for concurrent use.
type Transformer struct {
	shape    frustum.Shape
	voxelDim int

	// Source indices per destination cell, in frustum.Shape.Index order.
	// Cells outside the source volume hold 0.
	i, j, k []int
	inside  []bool
	nInside int
}

// NewTransformer computes the world position of every cell of shape and
// converts it to an index of a voxelDim^3 grid spanning the unit cube
// centered on the origin.
func NewTransformer(shape frustum.Shape, params frustum.Params, voxelDim int) (*Transformer, error) {
	if voxelDim <= 0 {
		return nil, fmt.Errorf("invalid voxel dim %d", voxelDim)
	}
	xyzh, err := frustum.GridWorldCoords(shape, params)
	if err != nil {
		return nil, fmt.Errorf("grid world coords: %w", err)
	}
	world, err := frustum.Dehomogenize(xyzh)
	if err != nil {
		return nil, err
	}

	n := shape.Len()
	t := &Transformer{
		shape:    shape,
		voxelDim: voxelDim,
		i:        make([]int, n),
		j:        make([]int, n),
		k:        make([]int, n),
		inside:   make([]bool, n),
	}
	axes := [3][]int{t.i, t.j, t.k}
	dim := float64(voxelDim)

	for c := 0; c < n; c++ {
		var idx [3]int
		in := true
		for r := 0; r < 3; r++ {
			v := gomath.Floor((world.At(r, c) + 0.5) * dim)
			// NaN fails both comparisons.
			if !(v >= 0 && v < dim) {
				in = false
				break
			}
			idx[r] = int(v)
		}
		if !in {
			// Index 0 keeps the gather in range; the cell is zeroed later.
			continue
		}
		for r := 0; r < 3; r++ {
			axes[r][c] = idx[r]
		}
		t.inside[c] = true
		t.nInside++
	}
	return t, nil
}

// Shape returns the destination grid shape.
func (t *Transformer) Shape() frustum.Shape {
	return t.shape
}

// VoxelDim returns the source grid resolution.
func (t *Transformer) VoxelDim() int {
	return t.voxelDim
}

// InsideCount returns the number of cells that sample the source volume.
func (t *Transformer) InsideCount() int {
	return t.nInside
}

// Index returns the source voxel sampled by cell (ix, iy, iz) and whether
// that voxel is inside the source volume.
func (t *Transformer) Index(ix, iy, iz int) ([3]int, bool) {
	c := t.shape.Index(ix, iy, iz)
	return [3]int{t.i[c], t.j[c], t.k[c]}, t.inside[c]
}

// Apply samples src at every cell. Cells outside the source volume are
// always empty, whatever src returns for their clamped index.
func (t *Transformer) Apply(src voxel.Gatherer) (*voxel.Dense, error) {
	values, err := src.Gather(t.i, t.j, t.k)
	if err != nil {
		return nil, fmt.Errorf("gather: %w", err)
	}
	if len(values) != len(t.inside) {
		return nil, fmt.Errorf("%w: gather returned %d values for %d cells", frustum.ErrShapeMismatch, len(values), len(t.inside))
	}

	out := make([]bool, len(values))
	for c, v := range values {
		out[c] = v && t.inside[c]
	}
	return voxel.FromData(voxel.Dims{t.shape.NX, t.shape.NY, t.shape.NZ}, out)
}
