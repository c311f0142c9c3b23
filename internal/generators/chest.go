package generators

import (
	"math"

	"snowfall/internal/rng"
	"snowfall/internal/scene"
	"snowfall/internal/voxel"
)

type rgb [3]uint8

func (c rgb) block(id string) voxel.Block {
	return voxel.Color(id, c[0], c[1], c[2])
}

func (c rgb) scale(f float64) rgb {
	var out rgb
	for i, v := range c {
		out[i] = uint8(math.Round(float64(v) * f))
	}
	return out
}

var (
	chestWoods = [][2]rgb{
		{{60, 50, 20}, {53, 43, 16}},
		{{40, 30, 10}, {35, 28, 14}},
		{{25, 21, 10}, {21, 16, 8}},
	}
	chestHandles = []rgb{{5, 5, 4}, {123, 123, 30}, {50, 50, 50}, {70, 66, 30}}
)

// chest is a small wooden chest with a tapered lid, trim bands and a front
// handle.
func chest(ctx scene.Context, _ *scene.Scene) *voxel.Set {
	const depth = 3
	g := ctx.RNG()
	width := g.IntRange(3, 5)

	wood := rng.Select(g, chestWoods)
	set := voxel.NewSet()
	set.RegisterBlock(wood[0].block("wood1"))
	set.RegisterBlock(wood[1].block("wood2"))
	trim := rng.Select(g, wood[:]).scale(g.Float64Range(0.25, 0.65))
	set.RegisterBlock(trim.block("trim"))
	set.RegisterBlock(rng.Select(g, chestHandles).block("handle"))

	for dx := -width; dx <= width; dx++ {
		for dy := -depth; dy <= depth; dy++ {
			for dz := 0; dz < 6; dz++ {
				k := 2*depth - dz
				if absInt(dy) > k {
					continue
				}
				id := rng.Select(g, []string{"wood1", "wood2"})
				if absInt(dx) == width && (absInt(dy) == depth || absInt(dy) == k || dz == 5) {
					id = "trim"
				}
				if dz == 0 || dz == 3 {
					id = "trim"
				}
				set.SetVoxel(voxel.Coord{X: dx, Y: dy, Z: dz}, id)
			}
		}
	}

	// Handle plate on the front face, two voxels tall.
	for _, z := range []int{2, 3} {
		for dx := -1; dx <= 1; dx++ {
			set.SetVoxel(voxel.Coord{X: dx, Y: -depth, Z: z}, "handle")
		}
	}
	return set
}

// chestCluster lays flat ground, scatters chests over it and rings the
// clearing with pine trees.
func chestCluster(ctx scene.Context, s *scene.Scene) *scene.Group {
	const trees = 64
	g := ctx.RNG()

	installTerrain(s, Generate(ctx.Fork("flat_ground", g.Seed8()).WithParams(nil), s))

	group := scene.NewGroup()
	group.Merge(forkCluster(ctx, s, g, scene.Params{
		"count":            []int{40, 50},
		"range":            40,
		"closest_distance": 12.0,
		"generators":       []scene.GeneratorWeight{{Weight: 10, ID: "chest"}},
	}))

	for i := 0; i < trees; i++ {
		angle := float64(i)*2*math.Pi/trees + float64(g.Sign())*g.Float64Range(0, 0.05)
		r := g.Float64Range(70, 120)
		pos := voxel.Coord{
			X: ctx.Center.X + int(math.Round(r*math.Cos(angle))),
			Y: ctx.Center.Y + int(math.Round(r*math.Sin(angle))),
			Z: 1,
		}
		child := ctx.Fork("pine_tree", g.Seed8()).WithCenter(pos).WithParams(nil)
		group.Push(child, Generate(child, s))
	}
	return group
}
