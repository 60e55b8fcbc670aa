// Package voxel provides dense occupancy grids.
package voxel

import (
	"errors"
	"fmt"
)

// Grid errors.
var (
	ErrOutOfRange      = errors.New("voxel index out of range")
	ErrLengthMismatch  = errors.New("index sequences differ in length")
	ErrInvalidDims     = errors.New("invalid voxel grid dimensions")
	ErrDataSizeInvalid = errors.New("voxel data size does not match dimensions")
)

// Gatherer samples occupancy at explicit index triples. i, j and k must
// have the same length; the result has one value per triple.
type Gatherer interface {
	Gather(i, j, k []int) ([]bool, error)
}

// Dims is the number of voxels along each axis.
type Dims [3]int

// Len returns the number of voxels.
func (d Dims) Len() int {
	return d[0] * d[1] * d[2]
}

// Cube returns cubic dimensions of size n.
func Cube(n int) Dims {
	return Dims{n, n, n}
}

// Dense is a dense occupancy grid stored with the last axis varying
// fastest: data[(i*d1+j)*d2+k].
type Dense struct {
	dims Dims
	data []bool
}

// NewDense returns an empty grid with the given dimensions.
func NewDense(dims Dims) (*Dense, error) {
	if dims[0] <= 0 || dims[1] <= 0 || dims[2] <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDims, dims)
	}
	return &Dense{dims: dims, data: make([]bool, dims.Len())}, nil
}

// FromData wraps data laid out like Dense. The slice is not copied.
func FromData(dims Dims, data []bool) (*Dense, error) {
	if dims[0] <= 0 || dims[1] <= 0 || dims[2] <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDims, dims)
	}
	if len(data) != dims.Len() {
		return nil, fmt.Errorf("%w: got %d values for %v", ErrDataSizeInvalid, len(data), dims)
	}
	return &Dense{dims: dims, data: data}, nil
}

// Dims returns the grid dimensions.
func (g *Dense) Dims() Dims {
	return g.dims
}

// Data returns the underlying occupancy values.
func (g *Dense) Data() []bool {
	return g.data
}

// Contains reports whether (i, j, k) is inside the grid.
func (g *Dense) Contains(i, j, k int) bool {
	return i >= 0 && j >= 0 && k >= 0 && i < g.dims[0] && j < g.dims[1] && k < g.dims[2]
}

func (g *Dense) offset(i, j, k int) int {
	return (i*g.dims[1]+j)*g.dims[2] + k
}

// At returns the occupancy at (i, j, k), false when out of range.
func (g *Dense) At(i, j, k int) bool {
	if !g.Contains(i, j, k) {
		return false
	}
	return g.data[g.offset(i, j, k)]
}

// Set sets the occupancy at (i, j, k). Out of range writes are ignored.
func (g *Dense) Set(i, j, k int, v bool) {
	if !g.Contains(i, j, k) {
		return
	}
	g.data[g.offset(i, j, k)] = v
}

// Gather implements Gatherer. Any out-of-range triple is an error.
func (g *Dense) Gather(i, j, k []int) ([]bool, error) {
	if len(i) != len(j) || len(i) != len(k) {
		return nil, fmt.Errorf("%w: %d, %d, %d", ErrLengthMismatch, len(i), len(j), len(k))
	}
	out := make([]bool, len(i))
	for n := range i {
		if !g.Contains(i[n], j[n], k[n]) {
			return nil, fmt.Errorf("%w: (%d, %d, %d) in %v", ErrOutOfRange, i[n], j[n], k[n], g.dims)
		}
		out[n] = g.data[g.offset(i[n], j[n], k[n])]
	}
	return out, nil
}

// Count returns the number of occupied voxels.
func (g *Dense) Count() int {
	n := 0
	for _, v := range g.data {
		if v {
			n++
		}
	}
	return n
}

// Equal reports whether two grids have the same dimensions and values.
func (g *Dense) Equal(other *Dense) bool {
	if other == nil || g.dims != other.dims {
		return false
	}
	for n := range g.data {
		if g.data[n] != other.data[n] {
			return false
		}
	}
	return true
}
