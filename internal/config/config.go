package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OutputDir string            `yaml:"output_dir"`
	Workers   int               `yaml:"workers"`
	Grid      GridConfig        `yaml:"grid"`
	Terrain   TerrainConfig     `yaml:"terrain"`
	Roads     RoadConfig        `yaml:"roads"`
	Cluster   ClusterConfig     `yaml:"cluster"`
	Blocks    []BlockDefinition `yaml:"blocks"`
}

// GridConfig selects where world chunks are paged to.
type GridConfig struct {
	Pager string `yaml:"pager"`
	Path  string `yaml:"path"`
}

// TerrainConfig drives the octave height field used to fill the world grid.
type TerrainConfig struct {
	Seed        int64   `yaml:"seed"`
	Frequency   float64 `yaml:"frequency"`
	Amplitude   float64 `yaml:"amplitude"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
	BaseHeight  int     `yaml:"base_height"`
	SeaLevel    int     `yaml:"sea_level"`
}

type RoadConfig struct {
	Attempts          int             `yaml:"attempts"`
	PostSpacing       int             `yaml:"post_spacing"`
	ClearHeight       int             `yaml:"clear_height"`
	HaloRadius        int             `yaml:"halo_radius"`
	MaxIterations     int             `yaml:"max_iterations"`
	HeuristicScale    float64         `yaml:"heuristic_scale"`
	MinWalkCost       float64         `yaml:"min_walk_cost"`
	MildSlopeDiscount float64         `yaml:"mild_slope_discount"`
	ClimbPenalties    []float64       `yaml:"climb_penalties,flow"`
	DescentPenalties  []float64       `yaml:"descent_penalties,flow"`
	Blocks            []WeightedBlock `yaml:"blocks"`
}

type WeightedBlock struct {
	ID     string `yaml:"id"`
	Weight uint32 `yaml:"weight"`
}

// ClusterConfig holds the cluster placement defaults used when a cluster
// pass does not override them through its params.
type ClusterConfig struct {
	MaxAttempts     int     `yaml:"max_attempts"`
	ClosestDistance float64 `yaml:"closest_distance"`
	Count           [2]int  `yaml:"count,flow"`
	Range           int     `yaml:"range"`
}

// Load reads a YAML config over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	switch c.Grid.Pager {
	case "memory":
	case "disk", "sqlite":
		if c.Grid.Path == "" {
			return fmt.Errorf("grid.path must be set for the %s pager", c.Grid.Pager)
		}
	default:
		return fmt.Errorf("grid.pager must be one of 'memory', 'disk' or 'sqlite'")
	}
	if err := c.Terrain.validate(); err != nil {
		return err
	}
	if err := validateBlocks(c.Blocks); err != nil {
		return err
	}
	if err := c.Roads.validate(c.Blocks); err != nil {
		return err
	}
	return c.Cluster.validate()
}

func (t TerrainConfig) validate() error {
	if t.Octaves <= 0 {
		return fmt.Errorf("terrain.octaves must be positive")
	}
	if t.Frequency <= 0 {
		return fmt.Errorf("terrain.frequency must be positive")
	}
	if t.Amplitude < 0 {
		return fmt.Errorf("terrain.amplitude cannot be negative")
	}
	if t.Lacunarity <= 0 || t.Persistence <= 0 {
		return fmt.Errorf("terrain.lacunarity and terrain.persistence must be positive")
	}
	return nil
}

func (r RoadConfig) validate(blocks []BlockDefinition) error {
	if r.Attempts <= 0 {
		return fmt.Errorf("roads.attempts must be positive")
	}
	if r.PostSpacing <= 0 {
		return fmt.Errorf("roads.post_spacing must be positive")
	}
	if r.ClearHeight < 0 || r.HaloRadius < 0 {
		return fmt.Errorf("roads.clear_height and roads.halo_radius cannot be negative")
	}
	if r.MaxIterations <= 0 {
		return fmt.Errorf("roads.max_iterations must be positive")
	}
	if r.HeuristicScale <= 0 || r.HeuristicScale > 1 {
		return fmt.Errorf("roads.heuristic_scale must be in (0, 1]")
	}
	if r.MinWalkCost <= 0 {
		return fmt.Errorf("roads.min_walk_cost must be positive")
	}
	if r.MildSlopeDiscount <= 0 || r.MildSlopeDiscount > 1 {
		return fmt.Errorf("roads.mild_slope_discount must be in (0, 1]")
	}
	if err := validateTiers("roads.climb_penalties", r.ClimbPenalties); err != nil {
		return err
	}
	if err := validateTiers("roads.descent_penalties", r.DescentPenalties); err != nil {
		return err
	}
	for i := 0; i < len(r.ClimbPenalties) && i < len(r.DescentPenalties); i++ {
		if r.ClimbPenalties[i] < r.DescentPenalties[i] {
			return fmt.Errorf("roads.climb_penalties[%d] cannot be below roads.descent_penalties[%d]", i, i)
		}
	}

	if len(r.Blocks) == 0 {
		return fmt.Errorf("roads.blocks cannot be empty")
	}
	known := make(map[string]BlockDefinition, len(blocks))
	for _, b := range blocks {
		known[b.ID] = b
	}
	var total uint32
	for i, wb := range r.Blocks {
		def, ok := known[wb.ID]
		if !ok {
			return fmt.Errorf("roads.blocks[%d].id %q is not in the block catalog", i, wb.ID)
		}
		if float64(def.walkCost()) < r.MinWalkCost {
			return fmt.Errorf("roads.blocks[%d] walk cost is below roads.min_walk_cost", i)
		}
		total += wb.Weight
	}
	if total == 0 {
		return fmt.Errorf("roads.blocks weights cannot all be zero")
	}
	for i, b := range blocks {
		if float64(b.walkCost()) < r.MinWalkCost {
			return fmt.Errorf("blocks[%d].walk_cost is below roads.min_walk_cost", i)
		}
	}
	return nil
}

// validateTiers requires at least one tier, every tier above flat ground and
// strictly increasing costs for steeper deltas.
func validateTiers(name string, tiers []float64) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%s cannot be empty", name)
	}
	prev := 1.0
	for i, t := range tiers {
		if t <= prev {
			return fmt.Errorf("%s[%d] must be greater than %g", name, i, prev)
		}
		prev = t
	}
	return nil
}

func (c ClusterConfig) validate() error {
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("cluster.max_attempts must be positive")
	}
	if c.ClosestDistance < 0 {
		return fmt.Errorf("cluster.closest_distance cannot be negative")
	}
	if c.Count[0] < 0 || c.Count[0] > c.Count[1] {
		return fmt.Errorf("cluster.count must be a non-negative [min, max] range")
	}
	if c.Range <= 0 {
		return fmt.Errorf("cluster.range must be positive")
	}
	return nil
}

func validateBlocks(blocks []BlockDefinition) error {
	if len(blocks) == 0 {
		return fmt.Errorf("blocks cannot be empty")
	}
	seen := make(map[string]bool, len(blocks))
	for i, block := range blocks {
		if block.ID == "" {
			return fmt.Errorf("blocks[%d].id must be set", i)
		}
		if block.ID == "empty" {
			return fmt.Errorf("blocks[%d].id 'empty' is reserved", i)
		}
		if seen[block.ID] {
			return fmt.Errorf("blocks[%d].id %q is duplicated", i, block.ID)
		}
		seen[block.ID] = true
		if !isValidHexColor(block.Color) {
			return fmt.Errorf("blocks[%d].color must be a hex RGB value", i)
		}
		if block.WalkCost < 0 {
			return fmt.Errorf("blocks[%d].walk_cost cannot be negative", i)
		}
	}
	return nil
}

func isValidHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, ch := range s[1:] {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}
