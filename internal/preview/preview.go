// Package preview renders voxel grids as projection heat maps.
package preview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Faultbox/frustumvox/pkg/voxel"
)

// ErrInvalidAxis is returned for an axis outside 0..2.
var ErrInvalidAxis = errors.New("invalid projection axis")

// Projection is the number of occupied voxels along one axis of a grid.
// It implements plotter.GridXYZ. Columns follow the first remaining axis
// and rows the second; row 0 of the grid is drawn at the top.
type Projection struct {
	Axis       int
	cols, rows int
	counts     []int // counts[c*rows+r]
	max        int
}

// Project sums occupancy along axis (0 for x, 1 for y, 2 for z).
func Project(g *voxel.Dense, axis int) (*Projection, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAxis, axis)
	}
	dims := g.Dims()
	u, v := otherAxes(axis)

	p := &Projection{
		Axis:   axis,
		cols:   dims[u],
		rows:   dims[v],
		counts: make([]int, dims[u]*dims[v]),
	}
	var idx [3]int
	for idx[0] = 0; idx[0] < dims[0]; idx[0]++ {
		for idx[1] = 0; idx[1] < dims[1]; idx[1]++ {
			for idx[2] = 0; idx[2] < dims[2]; idx[2]++ {
				if !g.At(idx[0], idx[1], idx[2]) {
					continue
				}
				n := idx[u]*p.rows + idx[v]
				p.counts[n]++
				if p.counts[n] > p.max {
					p.max = p.counts[n]
				}
			}
		}
	}
	return p, nil
}

var axisNames = [3]string{"x", "y", "z"}

func otherAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// Count returns the occupied voxels behind pixel (c, r), r counted from
// the top.
func (p *Projection) Count(c, r int) int {
	return p.counts[c*p.rows+r]
}

// Max returns the largest count.
func (p *Projection) Max() int {
	return p.max
}

func (p *Projection) Dims() (c, r int) { return p.cols, p.rows }
func (p *Projection) X(c int) float64  { return float64(c) }
func (p *Projection) Y(r int) float64  { return float64(r) }

// Z flips rows so that grid row 0 lands at the top of the plot.
func (p *Projection) Z(c, r int) float64 {
	return float64(p.Count(c, p.rows-1-r))
}

// Plot builds a heat map plot of the projection.
func (p *Projection) Plot(title string) *plot.Plot {
	pl := plot.New()
	pl.Title.Text = title
	u, v := otherAxes(p.Axis)
	pl.X.Label.Text = axisNames[u]
	pl.Y.Label.Text = axisNames[v]

	hm := plotter.NewHeatMap(p, palette.Heat(16, 1))
	// A constant projection has no range to map onto the palette.
	hm.Min, hm.Max = 0, float64(p.max)
	if p.max == 0 {
		hm.Max = 1
	}
	pl.Add(hm)
	return pl
}

// SavePNG renders the projection of g along axis to path. The image
// format follows the file extension.
func SavePNG(g *voxel.Dense, axis int, title, path string) error {
	p, err := Project(g, axis)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := p.Plot(title).Save(4*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
