package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/frustumvox/pkg/formats"
	"github.com/Faultbox/frustumvox/pkg/voxel"
)

func writeGrid(t *testing.T, path string, dim int, occupied ...[3]int) {
	t.Helper()
	grid, err := voxel.NewDense(voxel.Cube(dim))
	require.NoError(t, err)
	for _, p := range occupied {
		grid.Set(p[0], p[1], p[2], true)
	}
	require.NoError(t, formats.SaveBinvoxFile(path, formats.NewBinvox(grid)))
}

func TestBaseOpen(t *testing.T) {
	root := t.TempDir()
	base, err := NewBase("b32", 4, root)
	require.NoError(t, err)

	writeGrid(t, base.BinvoxPath("chairs", "c2"), 4, [3]int{1, 2, 3})
	writeGrid(t, base.BinvoxPath("chairs", "c1"), 4)
	require.NoError(t, os.WriteFile(filepath.Join(root, "chairs", "notes.txt"), []byte("x"), 0644))

	src, err := base.Open("chairs")
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, []string{"c1", "c2"}, src.Keys())

	writeGrid(t, base.BinvoxPath("aircraft", "a1"), 4)
	cats, err := base.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"aircraft", "chairs"}, cats)

	g, err := src.Load("c2")
	require.NoError(t, err)
	got, err := g.Gather([]int{1, 0}, []int{2, 0}, []int{3, 0})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, got)
}

func TestBaseOpenMissingCategory(t *testing.T) {
	base, _ := NewBase("b32", 4, t.TempDir())
	if _, err := base.Open("nope"); err == nil {
		t.Error("expected error opening missing category")
	}
}

func TestDirSourceErrors(t *testing.T) {
	root := t.TempDir()
	base, _ := NewBase("b32", 4, root)
	writeGrid(t, base.BinvoxPath("cat", "small"), 2)
	writeGrid(t, base.BinvoxPath("cat", "ok"), 4)

	src, err := base.Open("cat")
	require.NoError(t, err)

	if _, err := src.Load("missing"); !errors.Is(err, ErrExampleNotFound) {
		t.Errorf("expected ErrExampleNotFound, got %v", err)
	}
	if _, err := src.Load("small"); !errors.Is(err, ErrDimMismatch) {
		t.Errorf("expected ErrDimMismatch, got %v", err)
	}

	require.NoError(t, src.Close())
	if _, err := src.Load("ok"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestNewBaseInvalid(t *testing.T) {
	if _, err := NewBase("", 32, "."); err == nil {
		t.Error("expected error for empty id")
	}
	if _, err := NewBase("b", 0, "."); err == nil {
		t.Error("expected error for zero dim")
	}
}

func TestRenderViewAngle(t *testing.T) {
	tests := []struct {
		name   string
		render Render
		index  int
		want   float64
	}{
		{"explicit", Render{Angles: []float64{10, 95.5}}, 1, 95.5},
		{"even first", Render{NumViews: 24}, 0, 0},
		{"even spacing", Render{NumViews: 24}, 5, 75},
		{"explicit wins", Render{Angles: []float64{42}, NumViews: 8}, 0, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.render.ViewAngle(tt.index)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	r := Render{NumViews: 4}
	for _, i := range []int{-1, 4} {
		if _, err := r.ViewAngle(i); !errors.Is(err, ErrViewIndex) {
			t.Errorf("index %d: expected ErrViewIndex, got %v", i, err)
		}
	}
}

func TestRenderValidate(t *testing.T) {
	ok := Render{ID: "r", Height: 192, Width: 256, NumViews: 24}
	assert.NoError(t, ok.Validate())

	bad := []Render{
		{Height: 1, Width: 1, NumViews: 1},
		{ID: "r", Height: 0, Width: 1, NumViews: 1},
		{ID: "r", Height: 1, Width: 1},
		{ID: "r", Height: 1, Width: 1, NumViews: 1, ObjectScale: -1},
	}
	for _, r := range bad {
		assert.Error(t, r.Validate(), "%+v", r)
	}
}

func TestRenderScale(t *testing.T) {
	r := Render{}
	if _, ok := r.Scale(); ok {
		t.Error("zero scale should be unset")
	}
	r.ObjectScale = 1.2
	s, ok := r.Scale()
	if !ok || s != 1.2 {
		t.Errorf("Scale() = %v, %v; want 1.2, true", s, ok)
	}
}
