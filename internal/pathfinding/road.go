package pathfinding

import (
	"context"
	"fmt"
	"math"

	"snowfall/internal/config"
	"snowfall/internal/rng"
	"snowfall/internal/voxel"
)

// RoadPlan carries everything needed to route and carve one road.
type RoadPlan struct {
	Cost        CostModel
	Attempts    int
	PostSpacing int
	ClearHeight int
	HaloRadius  int
	// HalfWidth is how many columns either side of the centre line are
	// painted.
	HalfWidth int
	MinRadius float64
	MaxRadius float64
	Blocks    []rng.Weighted[voxel.Block]
}

// RoadPlanFromConfig resolves the configured road block ids against the
// block catalog.
func RoadPlanFromConfig(cfg *config.Config) (RoadPlan, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return RoadPlan{}, err
	}
	byID := make(map[string]voxel.Block, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b
	}
	plan := RoadPlan{
		Cost:        CostModelFromConfig(cfg.Roads),
		Attempts:    cfg.Roads.Attempts,
		PostSpacing: cfg.Roads.PostSpacing,
		ClearHeight: cfg.Roads.ClearHeight,
		HaloRadius:  cfg.Roads.HaloRadius,
		HalfWidth:   1,
		MinRadius:   64,
		MaxRadius:   200,
	}
	for _, wb := range cfg.Roads.Blocks {
		b, ok := byID[wb.ID]
		if !ok {
			return RoadPlan{}, fmt.Errorf("road block %q not in catalog", wb.ID)
		}
		plan.Blocks = append(plan.Blocks, rng.W(wb.Weight, b))
	}
	return plan, nil
}

// Endpoints picks two columns on roughly opposite sides of center.
func (p RoadPlan) Endpoints(g *rng.RNG, center voxel.Coord) (voxel.Column, voxel.Column) {
	r1 := g.Float64Range(p.MinRadius, p.MaxRadius)
	r2 := g.Float64Range(p.MinRadius, p.MaxRadius)
	a := g.Radians()
	b := a + math.Pi + g.Float64Range(-math.Pi/8, math.Pi/8)
	return polar(center, r1, a), polar(center, r2, b)
}

func polar(center voxel.Coord, r, angle float64) voxel.Column {
	return voxel.Column{
		X: center.X + int(math.Round(r*math.Cos(angle))),
		Y: center.Y + int(math.Round(r*math.Sin(angle))),
	}
}

// Plan draws endpoint pairs until a path is found or the attempts run out.
func (p RoadPlan) Plan(ctx context.Context, t Terrain, center voxel.Coord, g *rng.RNG) (Path, bool) {
	for attempt := 0; attempt < p.Attempts; attempt++ {
		start, goal := p.Endpoints(g, center)
		if path, ok := FindPath(ctx, t, start, goal, p.Cost); ok {
			return path, true
		}
	}
	return Path{}, false
}

// Build routes a road across the terrain around center and carves it. It
// reports false, leaving the terrain untouched, when no route was found.
func (p RoadPlan) Build(ctx context.Context, terrain *voxel.Set, center voxel.Coord, g *rng.RNG) bool {
	path, ok := p.Plan(ctx, terrain, center, g)
	if !ok {
		return false
	}
	p.Carve(terrain, Posts(path.Nodes, p.PostSpacing), g)
	return true
}

// Posts keeps every spacing-th node plus the last one.
func Posts(nodes []voxel.Coord, spacing int) []voxel.Coord {
	if len(nodes) == 0 {
		return nil
	}
	spacing = max(spacing, 1)
	posts := make([]voxel.Coord, 0, len(nodes)/spacing+2)
	for i := 0; i < len(nodes); i += spacing {
		posts = append(posts, nodes[i])
	}
	if last := nodes[len(nodes)-1]; posts[len(posts)-1] != last {
		posts = append(posts, last)
	}
	return posts
}

// Carve rasterises a line between consecutive posts, paints the road bed
// along it, clears the space above and then marks a halo around it as
// occupied.
func (p RoadPlan) Carve(terrain *voxel.Set, posts []voxel.Coord, g *rng.RNG) {
	var line []voxel.Coord
	for i := 0; i+1 < len(posts); i++ {
		seg := voxel.Line(posts[i], posts[i+1])
		if i > 0 {
			seg = seg[1:]
		}
		line = append(line, seg...)
	}
	if len(posts) == 1 {
		line = posts
	}

	painted := make(map[voxel.Column]bool)
	for _, v := range line {
		for dy := -p.HalfWidth; dy <= p.HalfWidth; dy++ {
			for dx := -p.HalfWidth; dx <= p.HalfWidth; dx++ {
				col := voxel.Column{X: v.X + dx, Y: v.Y + dy}
				if painted[col] {
					continue
				}
				painted[col] = true
				p.paintColumn(terrain, col, v.Z, g)
			}
		}
	}

	marked := make(map[voxel.Column]bool)
	for _, v := range line {
		for dy := -p.HaloRadius; dy <= p.HaloRadius; dy++ {
			for dx := -p.HaloRadius; dx <= p.HaloRadius; dx++ {
				col := voxel.Column{X: v.X + dx, Y: v.Y + dy}
				if marked[col] {
					continue
				}
				marked[col] = true
				markOccupied(terrain, col)
			}
		}
	}
}

// paintColumn sets the bed block at z, fills any gap down to the existing
// surface and clears ClearHeight voxels above.
func (p RoadPlan) paintColumn(terrain *voxel.Set, col voxel.Column, z int, g *rng.RNG) {
	if len(p.Blocks) == 0 {
		return
	}
	block := rng.SelectWeighted(g, p.Blocks)
	surface, ok := terrain.HeightAt(col.X, col.Y)
	if !ok {
		return
	}
	for fz := surface + 1; fz < z; fz++ {
		terrain.SetBlock(voxel.Coord{X: col.X, Y: col.Y, Z: fz}, block)
	}
	terrain.SetBlock(voxel.Coord{X: col.X, Y: col.Y, Z: z}, block)
	for cz := z + 1; cz <= z+p.ClearHeight; cz++ {
		terrain.ClearVoxel(voxel.Coord{X: col.X, Y: col.Y, Z: cz})
	}
}

func markOccupied(terrain *voxel.Set, col voxel.Column) {
	z, ok := terrain.HeightAt(col.X, col.Y)
	if !ok {
		return
	}
	pos := voxel.Coord{X: col.X, Y: col.Y, Z: z}
	if terrain.Get(pos).Occupied {
		return
	}
	terrain.ModifyVoxel(pos, func(b voxel.Block) voxel.Block {
		return b.Variant(func(v *voxel.Block) { v.Occupied = true })
	})
}
