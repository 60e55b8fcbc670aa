package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Faultbox/frustumvox/internal/dataset"
	"github.com/Faultbox/frustumvox/pkg/frustum"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Base.ID != "b32" || cfg.Base.Dim != 32 {
		t.Errorf("expected base b32/32, got %s/%d", cfg.Base.ID, cfg.Base.Dim)
	}
	if cfg.Render.Height != 192 || cfg.Render.Width != 256 {
		t.Errorf("expected image 192x256, got %dx%d", cfg.Render.Height, cfg.Render.Width)
	}
	if cfg.Render.NumViews != 24 {
		t.Errorf("expected 24 views, got %d", cfg.Render.NumViews)
	}
	if cfg.Shape() != (frustum.Shape{NX: 32, NY: 32, NZ: 32}) {
		t.Errorf("unexpected default shape %v", cfg.Shape())
	}
	if cfg.Batch.Overwrite {
		t.Error("expected overwrite to be false by default")
	}
	if cfg.Batch.Workers != 1 {
		t.Errorf("expected 1 worker, got %d", cfg.Batch.Workers)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, fileName)

	yamlContent := `
data:
  dir: /srv/shapes

base:
  id: b64
  dim: 64
  root: /srv/voxels

render:
  id: r1
  height: 128
  width: 128
  scale: 1.2
  view_angles: [0, 45, 90]

frustum:
  shape: [16, 16, 24]
  views: [0, 2]

batch:
  overwrite: true
  workers: 8
  progress_every: 10

logging:
  level: "debug"
  log_file: "frustumvox.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Data.Dir != "/srv/shapes" {
		t.Errorf("expected data dir /srv/shapes, got %s", cfg.Data.Dir)
	}
	if cfg.BaseRoot() != "/srv/voxels" {
		t.Errorf("expected base root /srv/voxels, got %s", cfg.BaseRoot())
	}
	if cfg.Base.Dim != 64 {
		t.Errorf("expected dim 64, got %d", cfg.Base.Dim)
	}
	if cfg.Render.Scale != 1.2 {
		t.Errorf("expected scale 1.2, got %f", cfg.Render.Scale)
	}
	if !reflect.DeepEqual(cfg.Render.ViewAngles, []float64{0, 45, 90}) {
		t.Errorf("unexpected view angles %v", cfg.Render.ViewAngles)
	}
	if cfg.Shape() != (frustum.Shape{NX: 16, NY: 16, NZ: 24}) {
		t.Errorf("unexpected shape %v", cfg.Shape())
	}
	if !reflect.DeepEqual(cfg.ViewIndices(3), []int{0, 2}) {
		t.Errorf("unexpected views %v", cfg.ViewIndices(3))
	}
	if !cfg.Batch.Overwrite || cfg.Batch.Workers != 8 || cfg.Batch.ProgressEvery != 10 {
		t.Errorf("unexpected batch config %+v", cfg.Batch)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}

	r, err := cfg.RenderDataset()
	if err != nil {
		t.Fatalf("render dataset: %v", err)
	}
	if angle, _ := r.ViewAngle(2); angle != 90 {
		t.Errorf("expected view 2 at 90 degrees, got %v", angle)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
base:
  dim: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/frustumvox.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestBaseRootDefault(t *testing.T) {
	cfg := Default()
	cfg.Data.Dir = "/data"
	if got := cfg.BaseRoot(); got != filepath.Join("/data", "voxels", "b32") {
		t.Errorf("unexpected base root %s", got)
	}
}

func TestViewIndicesAll(t *testing.T) {
	cfg := Default()
	if got := cfg.ViewIndices(4); !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
		t.Errorf("expected every view, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		target error
	}{
		{"empty data dir", func(c *Config) { c.Data.Dir = "" }, nil},
		{"zero dim", func(c *Config) { c.Base.Dim = 0 }, nil},
		{"no views", func(c *Config) { c.Render.NumViews = 0 }, nil},
		{"bad shape", func(c *Config) { c.Frustum.Shape = [3]int{4, 0, 4} }, frustum.ErrInvalidShape},
		{"view out of range", func(c *Config) { c.Frustum.Views = []int{24} }, dataset.ErrViewIndex},
		{"negative workers", func(c *Config) { c.Batch.Workers = -1 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, fileName)
	if err := os.WriteFile(configPath, []byte("base:\n  dim: 16\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find frustumvox.yaml in current directory")
	}
}

func TestParseShape(t *testing.T) {
	got, err := ParseShape("32-24-16")
	if err != nil {
		t.Fatalf("ParseShape: %v", err)
	}
	if got != [3]int{32, 24, 16} {
		t.Errorf("unexpected shape %v", got)
	}

	for _, s := range []string{"", "32", "32-32", "32-32-32-32", "a-b-c", "32-0-32", "-1-2-3"} {
		if _, err := ParseShape(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "data dir flag",
			setup: func() { *flagDataDir = "/mnt/data" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Data.Dir != "/mnt/data" {
					t.Errorf("expected data dir /mnt/data, got %s", cfg.Data.Dir)
				}
			},
			teardown: func() { *flagDataDir = "" },
		},
		{
			name:  "workers flag",
			setup: func() { *flagWorkers = 6 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Batch.Workers != 6 {
					t.Errorf("expected 6 workers, got %d", cfg.Batch.Workers)
				}
			},
			teardown: func() { *flagWorkers = 0 },
		},
		{
			name:  "shape flag",
			setup: func() { *flagShape = "8-6-4" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Frustum.Shape != [3]int{8, 6, 4} {
					t.Errorf("expected shape 8-6-4, got %v", cfg.Frustum.Shape)
				}
			},
			teardown: func() { *flagShape = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags: %v", err)
			}
			tt.verify(t, cfg)
		})
	}

	*flagShape = "bad"
	defer func() { *flagShape = "" }()
	if err := applyFlags(Default()); err == nil {
		t.Error("expected error for invalid shape flag")
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, fileName)

	yamlContent := `
data:
  dir: /from/file
batch:
  workers: 2
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWorkers = 12
	defer func() {
		*flagConfig = ""
		*flagWorkers = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Workers from the flag, data dir from the file
	if cfg.Batch.Workers != 12 {
		t.Errorf("expected 12 workers from flag, got %d", cfg.Batch.Workers)
	}
	if cfg.Data.Dir != "/from/file" {
		t.Errorf("expected data dir from file, got %s", cfg.Data.Dir)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", fileName)

	cfg := Default()
	cfg.Render.ViewAngles = []float64{10, 20}
	cfg.Batch.Overwrite = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("saved config differs:\n got %+v\nwant %+v", loaded, cfg)
	}
}
