// Package formats provides readers and writers for voxel file formats.
//
// Binvox files are read and written in binvox.go. Grids are held as
// voxel.Dense with the last axis varying fastest; the codec converts to and
// from the on-disk axis order.
package formats
