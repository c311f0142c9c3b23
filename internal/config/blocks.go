package config

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"snowfall/internal/voxel"
)

type BlockDefinition struct {
	ID       string  `yaml:"id"`
	Color    string  `yaml:"color"`
	Occupied bool    `yaml:"occupied,omitempty"`
	WalkCost float32 `yaml:"walk_cost,omitempty"`
}

func (d BlockDefinition) walkCost() float32 {
	if d.WalkCost == 0 {
		return voxel.DefaultWalkCost
	}
	return d.WalkCost
}

// Block converts the definition into a palette block.
func (d BlockDefinition) Block() (voxel.Block, error) {
	c, err := colorful.Hex(d.Color)
	if err != nil {
		return voxel.Block{}, fmt.Errorf("block %q: %w", d.ID, err)
	}
	r, g, b := c.RGB255()
	block := voxel.Color(d.ID, r, g, b)
	block.Occupied = d.Occupied
	block.WalkCost = d.walkCost()
	return block, nil
}

// Catalog converts every block definition, failing on the first bad colour.
func (c *Config) Catalog() ([]voxel.Block, error) {
	blocks := make([]voxel.Block, 0, len(c.Blocks))
	for _, def := range c.Blocks {
		b, err := def.Block()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// DefaultBlocks returns the block catalog used by world terrain and road
// carving.
func DefaultBlocks() []BlockDefinition {
	return []BlockDefinition{
		{ID: "grass", Color: "#3C7A1E"},
		{ID: "dirt", Color: "#6B4A2B"},
		{ID: "stone", Color: "#7A7A7A", Occupied: true},
		{ID: "sand", Color: "#C2B280"},
		{ID: "water", Color: "#2A5D8F", Occupied: true, WalkCost: 4},
		{ID: "snow", Color: "#EDF2F4"},
		{ID: "road_gravel", Color: "#8A8070", WalkCost: 0.5},
		{ID: "road_dirt", Color: "#6E5A3C", WalkCost: 0.6},
		{ID: "road_cobble", Color: "#5E5E5A", WalkCost: 0.5},
	}
}
