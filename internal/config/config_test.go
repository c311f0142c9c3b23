package config

import (
	"os"
	"path/filepath"
	"testing"

	"snowfall/internal/voxel"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() returned error: %v", err)
	}
}

func TestValidateRejectsInvalidConfigurations(t *testing.T) {
	tests := map[string]func(c *Config){
		"zero workers":          func(c *Config) { c.Workers = 0 },
		"unknown pager":         func(c *Config) { c.Grid.Pager = "s3" },
		"disk pager no path":    func(c *Config) { c.Grid.Pager = "disk"; c.Grid.Path = "" },
		"zero octaves":          func(c *Config) { c.Terrain.Octaves = 0 },
		"zero attempts":         func(c *Config) { c.Roads.Attempts = 0 },
		"zero post spacing":     func(c *Config) { c.Roads.PostSpacing = 0 },
		"heuristic above one":   func(c *Config) { c.Roads.HeuristicScale = 1.5 },
		"non-monotonic climb":   func(c *Config) { c.Roads.ClimbPenalties = []float64{4, 3, 40} },
		"climb below descent":   func(c *Config) { c.Roads.DescentPenalties = []float64{5, 6, 7} },
		"road block not listed": func(c *Config) { c.Roads.Blocks = []WeightedBlock{{ID: "marble", Weight: 1}} },
		"bad hex color":         func(c *Config) { c.Blocks[0].Color = "green" },
		"empty catalog":         func(c *Config) { c.Blocks = nil },
		"duplicate block id":    func(c *Config) { c.Blocks = append(c.Blocks, c.Blocks[0]) },
		"zero min walk cost":    func(c *Config) { c.Roads.MinWalkCost = 0 },
		"walk cost below floor": func(c *Config) { c.Blocks[0].WalkCost = 0.1 },
		"inverted cluster count": func(c *Config) {
			c.Cluster.Count = [2]int{10, 2}
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("Validate() = nil, want error")
			}
		})
	}
}

func TestLoadReadsYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(`
output_dir: ""
workers: 2
grid:
  pager: sqlite
  path: /tmp/world.db
roads:
  climb_penalties: [3, 9, 27]
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q, want out", cfg.OutputDir)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.Grid.Pager != "sqlite" {
		t.Errorf("Grid.Pager = %q, want sqlite", cfg.Grid.Pager)
	}
	if got := cfg.Roads.ClimbPenalties[2]; got != 27 {
		t.Errorf("ClimbPenalties[2] = %v, want 27", got)
	}
	if cfg.Roads.PostSpacing != 12 {
		t.Errorf("PostSpacing = %d, want default 12", cfg.Roads.PostSpacing)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if cfg.Cluster.MaxAttempts != 128 {
		t.Fatalf("Cluster.MaxAttempts = %d, want 128", cfg.Cluster.MaxAttempts)
	}
}

func TestLoadPropagatesReadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Fatalf("Load() = nil, want error")
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Blocks) != len(DefaultBlocks()) {
		t.Fatalf("loaded %d blocks, want %d", len(cfg.Blocks), len(DefaultBlocks()))
	}
}

func TestCatalogConvertsBlocks(t *testing.T) {
	cfg := Default()
	blocks, err := cfg.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	byID := make(map[string]voxel.Block, len(blocks))
	for _, b := range blocks {
		byID[b.ID] = b
	}
	stone := byID["stone"]
	if stone.Shader != voxel.RGB(0x7A, 0x7A, 0x7A) || !stone.Occupied {
		t.Fatalf("stone = %+v", stone)
	}
	if got := byID["grass"].WalkCost; got != voxel.DefaultWalkCost {
		t.Fatalf("grass walk cost = %v, want default", got)
	}
	if got := byID["road_gravel"].WalkCost; got != 0.5 {
		t.Fatalf("road walk cost = %v, want 0.5", got)
	}
}
