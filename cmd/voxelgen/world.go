package main

import (
	"context"
	"fmt"
	"log"

	"snowfall/internal/config"
	"snowfall/internal/generators"
	"snowfall/internal/grid"
	"snowfall/internal/voxel"
)

func openPager(cfg config.GridConfig) (grid.Pager, error) {
	switch cfg.Pager {
	case "memory":
		return grid.NewMemoryPager(), nil
	case "disk":
		return grid.NewDiskPager(cfg.Path)
	case "sqlite":
		return grid.OpenSQLitePager(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown pager %q", cfg.Pager)
	}
}

// fillWorld materialises every chunk within radius of the origin that the
// terrain height range can touch, then flushes the dirty ones to the pager.
func fillWorld(ctx context.Context, cfg *config.Config, radius int) error {
	pager, err := openPager(cfg.Grid)
	if err != nil {
		return err
	}
	defer func() {
		if err := pager.Close(); err != nil {
			log.Printf("close pager: %v", err)
		}
	}()

	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	world := grid.New(grid.WithPager(pager), grid.WithGenerator(generators.WorldTerrain(cfg.Terrain)))
	for _, b := range catalog {
		world.RegisterBlock(b)
	}

	terrain := cfg.Terrain
	lowZ := min(terrain.BaseHeight-int(terrain.Amplitude)-4, terrain.SeaLevel)
	highZ := max(terrain.BaseHeight+int(terrain.Amplitude)+1, terrain.SeaLevel)
	lowChunk, _ := grid.Split(voxel.Coord{Z: lowZ})
	highChunk, _ := grid.Split(voxel.Coord{Z: highZ})

	kinds := make(map[grid.ChunkKind]int)
	for x := -radius; x <= radius; x++ {
		for y := -radius; y <= radius; y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for z := lowChunk.Z; z <= highChunk.Z; z++ {
				kind, err := world.Load(grid.ChunkCoord{X: x, Y: y, Z: z})
				if err != nil {
					return err
				}
				kinds[kind]++
			}
		}
	}

	written, err := world.Flush()
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	log.Printf("world: %d chunks resident (%d full, %d sparse, %d empty), %d written to %s pager",
		world.Resident(), kinds[grid.ChunkFull], kinds[grid.ChunkSparse], kinds[grid.ChunkEmpty], written, cfg.Grid.Pager)
	return nil
}
