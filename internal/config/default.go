package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default returns a configuration that generates every registered model and
// a small world without any config file.
func Default() Config {
	return Config{
		OutputDir: "out",
		Workers:   4,
		Grid: GridConfig{
			Pager: "memory",
		},
		Terrain: TerrainConfig{
			Seed:        1337,
			Frequency:   0.01,
			Amplitude:   24,
			Octaves:     4,
			Persistence: 0.5,
			Lacunarity:  2.0,
			BaseHeight:  8,
			SeaLevel:    4,
		},
		Roads: RoadConfig{
			Attempts:          3,
			PostSpacing:       12,
			ClearHeight:       6,
			HaloRadius:        2,
			MaxIterations:     1000000,
			HeuristicScale:    1,
			MinWalkCost:       0.5,
			MildSlopeDiscount: 0.9,
			ClimbPenalties:    []float64{4, 12, 40},
			DescentPenalties:  []float64{2, 5, 12},
			Blocks: []WeightedBlock{
				{ID: "road_gravel", Weight: 60},
				{ID: "road_dirt", Weight: 30},
				{ID: "road_cobble", Weight: 10},
			},
		},
		Cluster: ClusterConfig{
			MaxAttempts:     128,
			ClosestDistance: 12,
			Count:           [2]int{12, 24},
			Range:           48,
		},
		Blocks: DefaultBlocks(),
	}
}

// WriteDefault writes the default configuration to the provided path.
func WriteDefault(path string) error {
	cfg := Default()

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
