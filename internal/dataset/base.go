package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Faultbox/frustumvox/pkg/formats"
	"github.com/Faultbox/frustumvox/pkg/voxel"
)

const binvoxExt = ".binvox"

// Base is a directory of binvox grids laid out as
// <root>/<category>/<example>.binvox.
type Base struct {
	id   string
	dim  int
	root string
}

// NewBase returns a base voxel configuration rooted at dir.
func NewBase(id string, dim int, root string) (*Base, error) {
	if id == "" {
		return nil, errors.New("base voxel id is empty")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid voxel dim %d", dim)
	}
	return &Base{id: id, dim: dim, root: root}, nil
}

// VoxelID returns the configuration id.
func (b *Base) VoxelID() string {
	return b.id
}

// VoxelDim returns the resolution of every grid along each axis.
func (b *Base) VoxelDim() int {
	return b.dim
}

// RootDir returns the directory holding the category folders.
func (b *Base) RootDir() string {
	return b.root
}

// BinvoxPath returns the file of one example.
func (b *Base) BinvoxPath(category, exampleID string) string {
	return filepath.Join(b.root, category, exampleID+binvoxExt)
}

// Categories returns the category folders under the root, sorted.
func (b *Base) Categories() ([]string, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	var cats []string
	for _, e := range entries {
		if e.IsDir() {
			cats = append(cats, e.Name())
		}
	}
	return cats, nil
}

// Open lists the examples of a category.
func (b *Base) Open(category string) (Source, error) {
	dir := filepath.Join(b.root, category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("opening category %s: %w", category, err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), binvoxExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), binvoxExt))
	}
	sort.Strings(keys)

	return &DirSource{base: b, category: category, keys: keys}, nil
}

// DirSource is an open category of a Base.
type DirSource struct {
	base     *Base
	category string
	keys     []string

	mu     sync.RWMutex
	closed bool
}

// Keys returns the example ids sorted by name.
func (s *DirSource) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Contains reports whether the category holds the example.
func (s *DirSource) Contains(exampleID string) bool {
	i := sort.SearchStrings(s.keys, exampleID)
	return i < len(s.keys) && s.keys[i] == exampleID
}

// Load parses the example's binvox file and checks its resolution.
func (s *DirSource) Load(exampleID string) (voxel.Gatherer, error) {
	return s.LoadDense(exampleID)
}

// LoadDense is Load returning the concrete grid.
func (s *DirSource) LoadDense(exampleID string) (*voxel.Dense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if !s.Contains(exampleID) {
		return nil, fmt.Errorf("%w: %s/%s", ErrExampleNotFound, s.category, exampleID)
	}

	bv, err := formats.ParseBinvoxFile(s.base.BinvoxPath(s.category, exampleID))
	if err != nil {
		return nil, fmt.Errorf("loading %s/%s: %w", s.category, exampleID, err)
	}
	if bv.Grid.Dims() != voxel.Cube(s.base.dim) {
		return nil, fmt.Errorf("%w: %s/%s is %v, want %d", ErrDimMismatch, s.category, exampleID, bv.Grid.Dims(), s.base.dim)
	}
	return bv.Grid, nil
}

// Close releases the source. Further loads fail with ErrClosed.
func (s *DirSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
