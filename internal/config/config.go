// Package config handles frustumvox configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Faultbox/frustumvox/internal/dataset"
	"github.com/Faultbox/frustumvox/pkg/frustum"
)

// Config holds all settings of a frustumvox run.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Base    BaseConfig    `yaml:"base"`
	Render  RenderConfig  `yaml:"render"`
	Frustum FrustumConfig `yaml:"frustum"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds the data root.
type DataConfig struct {
	Dir string `yaml:"dir"` // Outputs go under <dir>/rotated
}

// BaseConfig describes the base voxel dataset.
type BaseConfig struct {
	ID   string `yaml:"id"`
	Dim  int    `yaml:"dim"`
	Root string `yaml:"root,omitempty"` // Defaults to <data.dir>/voxels/<id>
}

// RenderConfig describes the rendered views.
type RenderConfig struct {
	ID         string    `yaml:"id"`
	Height     int       `yaml:"height"`
	Width      int       `yaml:"width"`
	Scale      float64   `yaml:"scale"`                 // 0 means unset
	ViewAngles []float64 `yaml:"view_angles,omitempty"` // Degrees; overrides num_views
	NumViews   int       `yaml:"num_views"`
}

// FrustumConfig holds the output grid.
type FrustumConfig struct {
	Shape [3]int `yaml:"shape"`
	Views []int  `yaml:"views,omitempty"` // Empty means every view
}

// BatchConfig holds batch processing settings.
type BatchConfig struct {
	Overwrite     bool `yaml:"overwrite"`
	Workers       int  `yaml:"workers"`
	ProgressEvery int  `yaml:"progress_every"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file,omitempty"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir: "data",
		},
		Base: BaseConfig{
			ID:  "b32",
			Dim: 32,
		},
		Render: RenderConfig{
			ID:       "r0",
			Height:   192,
			Width:    256,
			NumViews: 24,
		},
		Frustum: FrustumConfig{
			Shape: [3]int{32, 32, 32},
		},
		Batch: BatchConfig{
			Workers:       1,
			ProgressEvery: 100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// BaseRoot returns the base dataset directory.
func (c *Config) BaseRoot() string {
	if c.Base.Root != "" {
		return c.Base.Root
	}
	return filepath.Join(c.Data.Dir, "voxels", c.Base.ID)
}

// BaseDataset returns the configured base voxel dataset.
func (c *Config) BaseDataset() (*dataset.Base, error) {
	return dataset.NewBase(c.Base.ID, c.Base.Dim, c.BaseRoot())
}

// RenderDataset returns the configured render views.
func (c *Config) RenderDataset() (*dataset.Render, error) {
	r := &dataset.Render{
		ID:          c.Render.ID,
		Height:      c.Render.Height,
		Width:       c.Render.Width,
		ObjectScale: c.Render.Scale,
		Angles:      c.Render.ViewAngles,
		NumViews:    c.Render.NumViews,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Shape returns the output grid shape.
func (c *Config) Shape() frustum.Shape {
	s := c.Frustum.Shape
	return frustum.Shape{NX: s[0], NY: s[1], NZ: s[2]}
}

// ViewIndices returns the views to process out of numViews.
func (c *Config) ViewIndices(numViews int) []int {
	if len(c.Frustum.Views) > 0 {
		return c.Frustum.Views
	}
	views := make([]int, numViews)
	for i := range views {
		views[i] = i
	}
	return views
}

// Validate checks the settings a run depends on.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return errors.New("data.dir is empty")
	}
	if _, err := c.BaseDataset(); err != nil {
		return fmt.Errorf("base: %w", err)
	}
	r, err := c.RenderDataset()
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := c.Shape().Validate(); err != nil {
		return fmt.Errorf("frustum: %w", err)
	}
	for _, v := range c.Frustum.Views {
		if v < 0 || v >= r.Views() {
			return fmt.Errorf("frustum: %w: %d of %d", dataset.ErrViewIndex, v, r.Views())
		}
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch: invalid worker count %d", c.Batch.Workers)
	}
	return nil
}
